package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"aidanna-learn-api/internal/domain/mode"
	apperrors "aidanna-learn-api/pkg/errors"
	"aidanna-learn-api/pkg/logger"
	"aidanna-learn-api/pkg/metrics"
)

// ChatModelProvider 上游 ChatModel 的获取端口
// 生产实现是 infrastructure/llm 的工厂，测试中可替换为假实现
type ChatModelProvider interface {
	// Configured 上游凭证是否已配置
	Configured() bool
	// ChatModel 返回可并发使用的 ChatModel
	ChatModel(ctx context.Context) (model.BaseChatModel, error)
}

// CompletionResult 一次同步补全的结果
type CompletionResult struct {
	ID       string         `json:"id"`
	Mode     mode.Mode      `json:"mode"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Completer 补全网关接口，HTTP 层依赖此接口以便注入假网关
type Completer interface {
	Configured() bool
	CompleteSync(ctx context.Context, in *Input) (*CompletionResult, error)
	CompleteStream(ctx context.Context, in *Input) <-chan StreamFrame
}

// Gateway 补全网关
// 持有进程级唯一的上游客户端入口，构造一次后只读
type Gateway struct {
	provider  ChatModelProvider
	modelName string
}

// NewGateway 创建补全网关
func NewGateway(provider ChatModelProvider, modelName string) *Gateway {
	return &Gateway{
		provider:  provider,
		modelName: modelName,
	}
}

// Configured 上游是否可用
func (g *Gateway) Configured() bool {
	return g.provider != nil && g.provider.Configured()
}

// CompleteSync 同步补全
// 任何上游失败统一归一化为 UpstreamError；凭证缺失快速失败
func (g *Gateway) CompleteSync(ctx context.Context, in *Input) (*CompletionResult, error) {
	if !g.Configured() {
		return nil, apperrors.ErrUpstreamNotConfigured
	}

	chatModel, err := g.provider.ChatModel(ctx)
	if err != nil {
		return nil, apperrors.ErrUpstreamError.WithDetail(err.Error()).WithError(err)
	}

	msg, err := chatModel.Generate(ctx, buildMessages(in), buildOptions(in)...)
	if err != nil {
		return nil, apperrors.ErrUpstreamError.WithDetail(err.Error()).WithError(err)
	}
	if msg == nil {
		return nil, apperrors.ErrUpstreamError.WithDetail("empty llm response")
	}

	content := extractText(msg)
	if content == "" {
		return nil, apperrors.ErrUpstreamError.WithDetail("empty llm response")
	}

	metadata := map[string]any{
		"model": g.modelName,
	}
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		u := msg.ResponseMeta.Usage
		metadata["prompt_tokens"] = u.PromptTokens
		metadata["completion_tokens"] = u.CompletionTokens
		metadata["total_tokens"] = u.TotalTokens
		metrics.LLMTokensUsed.WithLabelValues(g.modelName, "prompt").Add(float64(u.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(g.modelName, "completion").Add(float64(u.CompletionTokens))
	}

	// eino 消息不携带上游响应 ID，这里合成以保证 ID 恒非空
	return &CompletionResult{
		ID:       "gen-" + uuid.NewString(),
		Mode:     in.Mode,
		Content:  content,
		Metadata: metadata,
	}, nil
}

// CompleteStream 流式补全
// 返回有限的帧序列通道：delta*，然后恰好一个 done 或 error 帧
// 消费方断开（ctx 取消）时迭代立即停止并释放上游资源，不产生 error 帧
func (g *Gateway) CompleteStream(ctx context.Context, in *Input) <-chan StreamFrame {
	frames := make(chan StreamFrame, 16)

	go func() {
		defer close(frames)

		if !g.Configured() {
			emit(ctx, frames, ErrorFrame(apperrors.ErrUpstreamNotConfigured.Message))
			return
		}

		chatModel, err := g.provider.ChatModel(ctx)
		if err != nil {
			emit(ctx, frames, ErrorFrame(err.Error()))
			return
		}

		reader, err := chatModel.Stream(ctx, buildMessages(in), buildOptions(in)...)
		if err != nil {
			emit(ctx, frames, ErrorFrame(err.Error()))
			return
		}
		defer reader.Close()

		for {
			msg, recvErr := reader.Recv()
			if errors.Is(recvErr, io.EOF) {
				emit(ctx, frames, DoneFrame())
				return
			}
			if recvErr != nil {
				if ctx.Err() != nil {
					// 客户端断开不是错误，静默收尾
					logger.Debug(ctx, "stream consumer disconnected", "mode", in.Mode)
					return
				}
				emit(ctx, frames, ErrorFrame(recvErr.Error()))
				return
			}

			if msg != nil && msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
				u := msg.ResponseMeta.Usage
				metrics.LLMTokensUsed.WithLabelValues(g.modelName, "prompt").Add(float64(u.PromptTokens))
				metrics.LLMTokensUsed.WithLabelValues(g.modelName, "completion").Add(float64(u.CompletionTokens))
			}

			// 空片段不产生帧
			if fragment := extractDelta(msg); fragment != "" {
				if !emit(ctx, frames, DeltaFrame(fragment)) {
					return
				}
			}
		}
	}()

	return frames
}

// emit 投递一帧；消费方已断开时返回 false
func emit(ctx context.Context, frames chan<- StreamFrame, f StreamFrame) bool {
	select {
	case frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildMessages 组装两条消息的上游请求
func buildMessages(in *Input) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(in.SystemInstruction),
		schema.UserMessage(in.Prompt),
	}
}

// buildOptions 组装模型调用选项
func buildOptions(in *Input) []model.Option {
	return []model.Option{
		model.WithTemperature(in.Temperature),
		model.WithMaxTokens(in.MaxTokens),
	}
}

// extractDelta 从单个增量事件中防御性提取文本片段
// 上游事件形状随 SDK 版本漂移，按序尝试已知形状：
//  1. 增量 Content 字段
//  2. MultiContent 文本分片（完整消息形状）
//  3. 兜底：整个事件的 JSON 序列化，保证上游字节不被静默丢弃
//
// 纯用量/心跳事件（无任何内容载荷）视为空片段，由调用方抑制
func extractDelta(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Content != "" {
		return msg.Content
	}
	if text := textFromMultiContent(msg.MultiContent); text != "" {
		return text
	}
	if len(msg.MultiContent) == 0 && len(msg.ToolCalls) == 0 {
		return ""
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Sprintf("%+v", msg)
	}
	return string(raw)
}

// extractText 从完整响应消息中提取文本，策略同 extractDelta
func extractText(msg *schema.Message) string {
	return extractDelta(msg)
}

// textFromMultiContent 拼接 MultiContent 中的文本分片
func textFromMultiContent(parts []schema.ChatMessagePart) string {
	if len(parts) == 0 {
		return ""
	}
	var out string
	for _, p := range parts {
		if p.Type == schema.ChatMessagePartTypeText {
			out += p.Text
		}
	}
	return out
}
