// Package mode 定义内容模式注册表
// 四种模式在进程启动时固定，之后只读
package mode

import (
	"bytes"
	"encoding/json"
)

// Mode 内容模式标识
type Mode string

// 支持的模式
const (
	ModeNarrative   Mode = "narrative"
	ModeDialogue    Mode = "dialogue"
	ModeCaseStudy   Mode = "case-study"
	ModeInteractive Mode = "interactive"
)

// Defaults 模式的默认个性化取值，客户端可用于预填表单
type Defaults struct {
	Tone       string `json:"tone,omitempty"`
	Length     string `json:"length,omitempty"`
	Characters int    `json:"characters,omitempty"`
	Choices    int    `json:"choices,omitempty"`
}

// Definition 模式元数据
type Definition struct {
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Defaults    *Defaults `json:"defaults,omitempty"`
}

// entry 保持定义顺序的注册项
type entry struct {
	id  Mode
	def Definition
}

// 注册表按定义顺序排列，/modes 按此顺序输出
var registry = []entry{
	{ModeNarrative, Definition{
		Label:       "Narrative",
		Description: "Single storyline with characters and scenes",
		Defaults:    &Defaults{Tone: "warm", Length: "medium"},
	}},
	{ModeDialogue, Definition{
		Label:       "Dialogue",
		Description: "A conversational play between characters",
		Defaults:    &Defaults{Characters: 2, Length: "medium"},
	}},
	{ModeCaseStudy, Definition{
		Label:       "Case Study",
		Description: "Real-world scenario breakdown",
		Defaults:    &Defaults{Length: "detailed"},
	}},
	{ModeInteractive, Definition{
		Label:       "Interactive",
		Description: "Choose-your-own-adventure style",
		Defaults:    &Defaults{Choices: 3},
	}},
}

// Valid 模式是否在注册表中
func (m Mode) Valid() bool {
	_, ok := Get(m)
	return ok
}

// String 实现 fmt.Stringer
func (m Mode) String() string {
	return string(m)
}

// Get 查询模式元数据
func Get(m Mode) (Definition, bool) {
	for _, e := range registry {
		if e.id == m {
			return e.def, true
		}
	}
	return Definition{}, false
}

// IDs 返回定义顺序的模式标识列表
func IDs() []Mode {
	ids := make([]Mode, 0, len(registry))
	for _, e := range registry {
		ids = append(ids, e.id)
	}
	return ids
}

// List 定义顺序的模式映射，序列化后键序与注册顺序一致
type List struct{}

// All 返回完整注册表，作为 /modes 响应体
func All() List {
	return List{}
}

// MarshalJSON 按注册顺序输出对象键
// encoding/json 对 map 会按键排序，这里手工编码以保持定义顺序
func (List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range registry {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.id))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.def)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
