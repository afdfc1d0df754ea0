package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidanna-learn-api/internal/domain/mode"
	apperrors "aidanna-learn-api/pkg/errors"
)

// fakeChatModel 以固定脚本回放上游行为
type fakeChatModel struct {
	generateMsg *schema.Message
	generateErr error

	streamMsgs []*schema.Message
	streamErr  error // Stream 调用本身失败
	recvErr    error // 回放完 streamMsgs 后注入的读取错误；nil 表示正常 EOF
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return f.generateMsg, f.generateErr
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	sr, sw := schema.Pipe[*schema.Message](len(f.streamMsgs) + 1)
	go func() {
		defer sw.Close()
		for _, msg := range f.streamMsgs {
			if closed := sw.Send(msg, nil); closed {
				return
			}
		}
		if f.recvErr != nil {
			sw.Send(nil, f.recvErr)
		}
	}()
	return sr, nil
}

// fakeProvider 测试用 ChatModelProvider
type fakeProvider struct {
	chatModel  model.BaseChatModel
	configured bool
	err        error
}

func (p *fakeProvider) Configured() bool { return p.configured }

func (p *fakeProvider) ChatModel(_ context.Context) (model.BaseChatModel, error) {
	return p.chatModel, p.err
}

func testInput() *Input {
	return &Input{
		Mode:              mode.ModeNarrative,
		SystemInstruction: "instruction",
		Prompt:            "prompt",
		Temperature:       0.8,
		MaxTokens:         800,
	}
}

func collectFrames(ch <-chan StreamFrame) []StreamFrame {
	var out []StreamFrame
	for f := range ch {
		out = append(out, f)
	}
	return out
}

func TestCompleteStreamDeltasThenDone(t *testing.T) {
	cm := &fakeChatModel{
		streamMsgs: []*schema.Message{
			schema.AssistantMessage("Once ", nil),
			schema.AssistantMessage("upon ", nil),
			schema.AssistantMessage("a time", nil),
		},
	}
	gw := NewGateway(&fakeProvider{chatModel: cm, configured: true}, "test-model")

	frames := collectFrames(gw.CompleteStream(context.Background(), testInput()))

	require.Len(t, frames, 4)
	assert.Equal(t, "Once ", frames[0].Delta)
	assert.Equal(t, "upon ", frames[1].Delta)
	assert.Equal(t, "a time", frames[2].Delta)
	assert.True(t, frames[3].Done)
	assert.Empty(t, frames[3].Error)
}

func TestCompleteStreamErrorAfterFragment(t *testing.T) {
	cm := &fakeChatModel{
		streamMsgs: []*schema.Message{schema.AssistantMessage("partial", nil)},
		recvErr:    errors.New("upstream reset"),
	}
	gw := NewGateway(&fakeProvider{chatModel: cm, configured: true}, "test-model")

	frames := collectFrames(gw.CompleteStream(context.Background(), testInput()))

	require.Len(t, frames, 2)
	assert.Equal(t, "partial", frames[0].Delta)
	assert.Equal(t, "upstream reset", frames[1].Error)
	assert.False(t, frames[1].Done)
}

func TestCompleteStreamOpenFailureSingleErrorFrame(t *testing.T) {
	cm := &fakeChatModel{streamErr: errors.New("dial timeout")}
	gw := NewGateway(&fakeProvider{chatModel: cm, configured: true}, "test-model")

	frames := collectFrames(gw.CompleteStream(context.Background(), testInput()))

	require.Len(t, frames, 1)
	assert.Equal(t, "dial timeout", frames[0].Error)
}

func TestCompleteStreamNotConfigured(t *testing.T) {
	gw := NewGateway(&fakeProvider{configured: false}, "test-model")

	frames := collectFrames(gw.CompleteStream(context.Background(), testInput()))

	require.Len(t, frames, 1)
	assert.Contains(t, frames[0].Error, "not configured")
	assert.False(t, frames[0].Done)
}

func TestCompleteStreamUsageOnlyEventSuppressed(t *testing.T) {
	usageMsg := &schema.Message{
		Role: schema.Assistant,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 12, CompletionTokens: 30, TotalTokens: 42},
		},
	}
	cm := &fakeChatModel{
		streamMsgs: []*schema.Message{
			schema.AssistantMessage("hello", nil),
			usageMsg,
		},
	}
	gw := NewGateway(&fakeProvider{chatModel: cm, configured: true}, "test-model")

	frames := collectFrames(gw.CompleteStream(context.Background(), testInput()))

	require.Len(t, frames, 2)
	assert.Equal(t, "hello", frames[0].Delta)
	assert.True(t, frames[1].Done)
}

func TestCompleteSync(t *testing.T) {
	cm := &fakeChatModel{
		generateMsg: &schema.Message{
			Role:    schema.Assistant,
			Content: "a complete story",
			ResponseMeta: &schema.ResponseMeta{
				Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 50, TotalTokens: 60},
			},
		},
	}
	gw := NewGateway(&fakeProvider{chatModel: cm, configured: true}, "test-model")

	res, err := gw.CompleteSync(context.Background(), testInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.ID, "gen-"))
	assert.Equal(t, mode.ModeNarrative, res.Mode)
	assert.Equal(t, "a complete story", res.Content)
	assert.Equal(t, "test-model", res.Metadata["model"])
	assert.Equal(t, 60, res.Metadata["total_tokens"])
}

func TestCompleteSyncNotConfigured(t *testing.T) {
	gw := NewGateway(&fakeProvider{configured: false}, "test-model")

	res, err := gw.CompleteSync(context.Background(), testInput())
	assert.Nil(t, res)

	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeUpstreamNotConfigured, appErr.Code)
}

func TestCompleteSyncUpstreamFailure(t *testing.T) {
	cm := &fakeChatModel{generateErr: errors.New("rate limited")}
	gw := NewGateway(&fakeProvider{chatModel: cm, configured: true}, "test-model")

	_, err := gw.CompleteSync(context.Background(), testInput())
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeUpstreamError, appErr.Code)
	assert.Contains(t, appErr.ClientMessage(), "rate limited")
}

func TestCompleteSyncEmptyResponse(t *testing.T) {
	cm := &fakeChatModel{generateMsg: &schema.Message{Role: schema.Assistant}}
	gw := NewGateway(&fakeProvider{chatModel: cm, configured: true}, "test-model")

	_, err := gw.CompleteSync(context.Background(), testInput())
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeUpstreamError, appErr.Code)
}

func TestExtractDeltaShapes(t *testing.T) {
	t.Run("content field", func(t *testing.T) {
		assert.Equal(t, "chunk", extractDelta(schema.AssistantMessage("chunk", nil)))
	})

	t.Run("multi content text parts", func(t *testing.T) {
		msg := &schema.Message{
			Role: schema.Assistant,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: "part one "},
				{Type: schema.ChatMessagePartTypeImageURL},
				{Type: schema.ChatMessagePartTypeText, Text: "part two"},
			},
		}
		assert.Equal(t, "part one part two", extractDelta(msg))
	})

	t.Run("unrecognized shape falls back to json", func(t *testing.T) {
		msg := &schema.Message{
			Role:      schema.Assistant,
			ToolCalls: []schema.ToolCall{{ID: "call-7"}},
		}
		out := extractDelta(msg)
		assert.Contains(t, out, "call-7")
	})

	t.Run("bare event yields empty", func(t *testing.T) {
		assert.Empty(t, extractDelta(nil))
		assert.Empty(t, extractDelta(&schema.Message{Role: schema.Assistant}))
	})
}
