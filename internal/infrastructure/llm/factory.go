// Package llm 提供上游 ChatModel 客户端工厂
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"aidanna-learn-api/internal/config"
	apperrors "aidanna-learn-api/pkg/errors"
)

// Factory 管理进程级唯一的 Eino ChatModel 实例
// 凭证缺失时处于 disabled 状态：进程照常启动，
// 每次取用都快速失败，而不是在初始化阶段崩溃
type Factory struct {
	config *config.LLMConfig

	mu        sync.RWMutex
	chatModel model.BaseChatModel
}

// NewFactory 创建 LLM 工厂
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config: &cfg.LLM,
	}
}

// Configured 上游凭证是否已配置
func (f *Factory) Configured() bool {
	return f != nil && f.config.Configured()
}

// ChatModel 返回共享的 ChatModel，首次取用时惰性构建
func (f *Factory) ChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !f.Configured() {
		return nil, apperrors.ErrUpstreamNotConfigured
	}

	f.mu.RLock()
	m := f.chatModel
	f.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if f.chatModel != nil {
		return f.chatModel, nil
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  f.config.APIKey,
		BaseURL: f.config.BaseURL,
		Model:   f.config.Model,
		Timeout: f.config.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model: %w", err)
	}

	f.chatModel = chatModel
	return chatModel, nil
}
