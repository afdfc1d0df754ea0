package generation

import (
	"fmt"
	"strings"

	"aidanna-learn-api/internal/domain/mode"

	apperrors "aidanna-learn-api/pkg/errors"
)

// 校验边界与默认值
const (
	DefaultPrompt      = "Please teach me something interesting in an engaging way."
	DefaultTemperature = float32(0.8)
	DefaultMaxTokens   = 800

	MinTemperature = float32(0.0)
	MaxTemperature = float32(2.0)
	MinMaxTokens   = 64
	MaxMaxTokens   = 2000
	MinCharacters  = 1
	MaxCharacters  = 10
	MinChoices     = 1
	MaxChoices     = 6

	// MaxFreeformLen 自由文本字段长度上限；超长直接拒绝，绝不静默截断
	MaxFreeformLen = 2000
)

// Personalization 可选个性化字段，缺失字段不产生对应子句
type Personalization struct {
	Tone              string `json:"tone,omitempty"`
	Characters        *int   `json:"characters,omitempty"`
	Setting           string `json:"setting,omitempty"`
	Length            string `json:"length,omitempty"`
	Choices           *int   `json:"choices,omitempty"`
	ExtraInstructions string `json:"extra_instructions,omitempty"`
}

// GenerateRequest 入站生成请求
// UserID 按源契约接收但不使用
type GenerateRequest struct {
	Mode            string           `json:"mode"`
	Prompt          string           `json:"prompt"`
	Personalization *Personalization `json:"personalization,omitempty"`
	Temperature     *float32         `json:"temperature,omitempty"`
	MaxTokens       *int             `json:"max_tokens,omitempty"`
	UserID          string           `json:"user_id,omitempty"`
}

// Input 校验通过后交给编译器与网关的归一化输入
type Input struct {
	Mode              mode.Mode
	SystemInstruction string
	Prompt            string
	Temperature       float32
	MaxTokens         int
}

// Validate 执行 schema 校验，返回首个违反约束的字段错误
// 校验失败时网关绝不会被调用
func (r *GenerateRequest) Validate() *apperrors.AppError {
	m := mode.Mode(strings.TrimSpace(r.Mode))
	if !m.Valid() {
		return apperrors.ErrUnsupportedMode.WithDetail(fmt.Sprintf("unsupported mode: %q", r.Mode))
	}

	if r.Temperature != nil {
		if *r.Temperature < MinTemperature || *r.Temperature > MaxTemperature {
			return apperrors.ErrOutOfRange.WithDetail(fmt.Sprintf(
				"temperature %.2f out of range [%.1f, %.1f]", *r.Temperature, MinTemperature, MaxTemperature))
		}
	}
	if r.MaxTokens != nil {
		if *r.MaxTokens < MinMaxTokens || *r.MaxTokens > MaxMaxTokens {
			return apperrors.ErrOutOfRange.WithDetail(fmt.Sprintf(
				"max_tokens %d out of range [%d, %d]", *r.MaxTokens, MinMaxTokens, MaxMaxTokens))
		}
	}

	if p := r.Personalization; p != nil {
		if p.Characters != nil && (*p.Characters < MinCharacters || *p.Characters > MaxCharacters) {
			return apperrors.ErrOutOfRange.WithDetail(fmt.Sprintf(
				"personalization.characters %d out of range [%d, %d]", *p.Characters, MinCharacters, MaxCharacters))
		}
		if p.Choices != nil && (*p.Choices < MinChoices || *p.Choices > MaxChoices) {
			return apperrors.ErrOutOfRange.WithDetail(fmt.Sprintf(
				"personalization.choices %d out of range [%d, %d]", *p.Choices, MinChoices, MaxChoices))
		}
		for field, val := range map[string]string{
			"personalization.tone":               p.Tone,
			"personalization.setting":            p.Setting,
			"personalization.length":             p.Length,
			"personalization.extra_instructions": p.ExtraInstructions,
		} {
			if len(val) > MaxFreeformLen {
				return apperrors.ErrFieldTooLong.WithDetail(fmt.Sprintf(
					"%s exceeds %d characters", field, MaxFreeformLen))
			}
		}
	}

	if len(r.Prompt) > MaxFreeformLen {
		return apperrors.ErrFieldTooLong.WithDetail(fmt.Sprintf(
			"prompt exceeds %d characters", MaxFreeformLen))
	}

	return nil
}

// Resolve 校验并归一化请求：填充默认值、编译系统指令
func (r *GenerateRequest) Resolve(includeClosingNote bool) (*Input, *apperrors.AppError) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	m := mode.Mode(strings.TrimSpace(r.Mode))

	prompt := strings.TrimSpace(r.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	temperature := DefaultTemperature
	if r.Temperature != nil {
		temperature = *r.Temperature
	}

	maxTokens := DefaultMaxTokens
	if r.MaxTokens != nil {
		maxTokens = *r.MaxTokens
	}

	return &Input{
		Mode:              m,
		SystemInstruction: Compile(m, r.Personalization, includeClosingNote),
		Prompt:            prompt,
		Temperature:       temperature,
		MaxTokens:         maxTokens,
	}, nil
}
