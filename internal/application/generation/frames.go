package generation

// StreamFrame 流式响应中的单个帧
// 一次流式请求产出有序帧序列：零或多个 delta 帧，
// 随后恰好一个终止帧（done 或 error），终止帧后不再有任何帧
type StreamFrame struct {
	Delta string `json:"delta,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// IsTerminal 是否为终止帧
func (f StreamFrame) IsTerminal() bool {
	return f.Done || f.Error != ""
}

// DeltaFrame 构造增量文本帧
func DeltaFrame(text string) StreamFrame {
	return StreamFrame{Delta: text}
}

// DoneFrame 构造正常结束帧
func DoneFrame() StreamFrame {
	return StreamFrame{Done: true}
}

// ErrorFrame 构造错误终止帧
func ErrorFrame(message string) StreamFrame {
	return StreamFrame{Error: message}
}
