// Package generation 实现提示词编译、请求校验与补全网关
package generation

import (
	"fmt"
	"strings"

	"aidanna-learn-api/internal/domain/mode"
)

// 各模式的基础系统指令模板
var baseTemplates = map[mode.Mode]string{
	mode.ModeNarrative:   "You are Aidanna, a warm learning companion who creates captivating narrative stories to teach concepts. Build a single storyline with vivid characters and scenes, and let the lesson unfold through the plot.",
	mode.ModeDialogue:    "You are Aidanna, a creative learning companion who teaches through dialogue between characters. Write a conversational play in which the speakers explore the topic from different angles.",
	mode.ModeCaseStudy:   "You are Aidanna, an insightful learning companion. Produce real-world case studies with analysis and takeaways, grounded in plausible detail.",
	mode.ModeInteractive: "You are Aidanna, an interactive learning companion. Present scenarios with clear choices and consequences, and pause at decision points so the learner can pick a path.",
}

// ClosingNote 收尾指令，是否追加由配置开关决定
const ClosingNote = "Be concise but clear, and make sure the core concept is easy to remember."

// Compile 将模式与个性化字段编译为系统指令
// 纯函数：相同输入产出完全相同的字符串
// 未知模式回退到 narrative 模板——校验器必须先行拒绝未知模式，
// 这里的回退是面向调用方缺陷的宽容处理，不向上传播错误
func Compile(m mode.Mode, p *Personalization, includeClosingNote bool) string {
	base, ok := baseTemplates[m]
	if !ok {
		base = baseTemplates[mode.ModeNarrative]
	}

	var b strings.Builder
	b.WriteString(base)

	// 个性化子句按固定顺序追加：
	// tone, setting, characters, length, choices, extra_instructions
	if p != nil {
		if tone := strings.TrimSpace(p.Tone); tone != "" {
			fmt.Fprintf(&b, " Use a %s tone.", tone)
		}
		if setting := strings.TrimSpace(p.Setting); setting != "" {
			fmt.Fprintf(&b, " Set the story in %s.", setting)
		}
		if p.Characters != nil {
			fmt.Fprintf(&b, " Include %d characters.", *p.Characters)
		}
		if length := strings.TrimSpace(p.Length); length != "" {
			fmt.Fprintf(&b, " The desired length is %s.", length)
		}
		if p.Choices != nil {
			fmt.Fprintf(&b, " Offer %d choices at each decision point.", *p.Choices)
		}
		if extra := strings.TrimSpace(p.ExtraInstructions); extra != "" {
			fmt.Fprintf(&b, " Additional instructions: %s", extra)
		}
	}

	if includeClosingNote {
		b.WriteString(" ")
		b.WriteString(ClosingNote)
	}

	return b.String()
}

// BaseTemplate 返回某模式的基础模板，仅供测试与调试
func BaseTemplate(m mode.Mode) (string, bool) {
	t, ok := baseTemplates[m]
	return t, ok
}
