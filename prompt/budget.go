package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/BaSui01/schemaforge/llm/tokenizer"
	"github.com/BaSui01/schemaforge/types"
)

// DefaultTokenCeiling 是内容部分的默认 token 上限，
// 为提示词骨架与模型输出留出充足余量。
const DefaultTokenCeiling = 6000

// Budgeter 把抓取的页面内容裁剪进 token 上限，按优先级保留：
// (1) 标题上下文 (2) 抓取器标记的高价值段落（FAQ、结构化列表）
// (3) 正文开头，其余截断。
//
// 确定性：相同输入必得相同输出。永不报错：最坏情况返回按上限
// 截断的正文。
type Budgeter struct {
	tok     tokenizer.Tokenizer
	ceiling int
}

// NewBudgeter 创建预算器。ceiling <= 0 时用 DefaultTokenCeiling；
// tok 为 nil 时用估算器。
func NewBudgeter(tok tokenizer.Tokenizer, ceiling int) *Budgeter {
	if tok == nil {
		tok = tokenizer.NewEstimatorTokenizer()
	}
	if ceiling <= 0 {
		ceiling = DefaultTokenCeiling
	}
	return &Budgeter{tok: tok, ceiling: ceiling}
}

// Budget 返回裁剪后的内容文本。
func (b *Budgeter) Budget(analysis types.ContentAnalysis) string {
	parts := b.prioritize(analysis)

	var sb strings.Builder
	used := 0
	for _, part := range parts {
		if part == "" {
			continue
		}
		cost := b.count(part)
		remaining := b.ceiling - used
		if remaining <= 0 {
			break
		}
		if cost <= remaining {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(part)
			used += cost
			continue
		}
		// 放不下整段：截断到剩余预算后停止。
		truncated := b.truncateToFit(part, remaining)
		if truncated != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(truncated)
		}
		break
	}
	return sb.String()
}

// prioritize 按优先级排列候选段落。
func (b *Budgeter) prioritize(analysis types.ContentAnalysis) []string {
	var parts []string

	if analysis.Title != "" {
		parts = append(parts, analysis.Title)
	}

	for _, faq := range analysis.Metadata.FAQs {
		parts = append(parts, "Q: "+faq.Question+"\nA: "+faq.Answer)
	}
	for _, sec := range analysis.Metadata.Sections {
		if !sec.HighValue {
			continue
		}
		if sec.Heading != "" {
			parts = append(parts, sec.Heading+"\n"+sec.Text)
		} else {
			parts = append(parts, sec.Text)
		}
	}

	if analysis.Content != "" {
		parts = append(parts, analysis.Content)
	}
	return parts
}

// count 返回文本的 token 数；计数器故障时退化为字符估算，
// 保证预算器永不报错。
func (b *Budgeter) count(text string) int {
	n, err := b.tok.CountTokens(text)
	if err != nil {
		return utf8.RuneCountInString(text)/4 + 1
	}
	return n
}

// truncateToFit 把文本截短到 budget 个 token 以内。
// 从比例估算的切点开始，超出时按 10% 步长确定性收缩。
func (b *Budgeter) truncateToFit(text string, budget int) string {
	if budget <= 0 {
		return ""
	}

	runes := []rune(text)
	total := b.count(text)
	if total <= budget {
		return text
	}

	cut := len(runes) * budget / total
	for cut > 0 {
		candidate := string(runes[:cut])
		if b.count(candidate) <= budget {
			return candidate
		}
		next := cut * 9 / 10
		if next >= cut {
			next = cut - 1
		}
		cut = next
	}
	return ""
}
