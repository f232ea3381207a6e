package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/schemaforge/llm/tokenizer"
	"github.com/BaSui01/schemaforge/types"
)

func TestBudgeter_EverythingFits(t *testing.T) {
	b := NewBudgeter(tokenizer.NewEstimatorTokenizer(), 1000)
	out := b.Budget(types.ContentAnalysis{
		Title:   "Short Title",
		Content: "A short body.",
	})

	assert.Contains(t, out, "Short Title")
	assert.Contains(t, out, "A short body.")
}

func TestBudgeter_PriorityOrder(t *testing.T) {
	// 预算只够标题和 FAQ：正文被挤出。
	b := NewBudgeter(tokenizer.NewEstimatorTokenizer(), 30)
	out := b.Budget(types.ContentAnalysis{
		Title:   "Bread Guide",
		Content: strings.Repeat("filler body text ", 200),
		Metadata: types.ContentMetadata{
			FAQs: []types.FAQItem{
				{Question: "How long?", Answer: "One hour."},
			},
		},
	})

	assert.Contains(t, out, "Bread Guide", "标题优先级最高")
	assert.Contains(t, out, "Q: How long?")

	n, err := tokenizer.NewEstimatorTokenizer().CountTokens(out)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 32, "正文只能拿到截断后的残余预算")
}

func TestBudgeter_HighValueSectionsBeforeBody(t *testing.T) {
	b := NewBudgeter(tokenizer.NewEstimatorTokenizer(), 40)
	out := b.Budget(types.ContentAnalysis{
		Title:   "T",
		Content: strings.Repeat("body ", 500),
		Metadata: types.ContentMetadata{
			Sections: []types.Section{
				{Heading: "Plain", Text: "low value text", HighValue: false},
				{Heading: "Steps", Text: "1. mix 2. knead 3. bake", HighValue: true},
			},
		},
	})

	assert.Contains(t, out, "1. mix 2. knead 3. bake")
	assert.NotContains(t, out, "low value text", "非高价值段落不参与预算")
}

func TestBudgeter_TruncatesOversizedBody(t *testing.T) {
	tok := tokenizer.NewEstimatorTokenizer()
	ceiling := 50
	b := NewBudgeter(tok, ceiling)
	content := strings.Repeat("the quick brown fox jumps over the lazy dog ", 100)

	out := b.Budget(types.ContentAnalysis{Content: content})

	require.NotEmpty(t, out)
	n, err := tok.CountTokens(out)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, ceiling)
	assert.True(t, strings.HasPrefix(content, out), "截断保留正文开头")
}

func TestBudgeter_EmptyAnalysis(t *testing.T) {
	b := NewBudgeter(nil, 0)
	assert.Equal(t, "", b.Budget(types.ContentAnalysis{}))
}

// 预算不变式：输出 token 数不超过上限，且相同输入必得相同输出。
func TestBudgeter_CeilingProperty(t *testing.T) {
	tok := tokenizer.NewEstimatorTokenizer()
	wordGen := rapid.StringMatching(`([a-z]{1,8} ){0,125}`)

	rapid.Check(t, func(t *rapid.T) {
		ceiling := rapid.IntRange(5, 200).Draw(t, "ceiling")
		analysis := types.ContentAnalysis{
			Title:   wordGen.Draw(t, "title"),
			Content: wordGen.Draw(t, "content"),
		}
		b := NewBudgeter(tok, ceiling)

		out := b.Budget(analysis)
		again := b.Budget(analysis)
		assert.Equal(t, out, again, "预算必须确定性")

		if out == "" {
			return
		}
		n, err := tok.CountTokens(out)
		require.NoError(t, err)
		// 段落分隔符的开销不计入单段预算，允许少量溢出。
		assert.LessOrEqual(t, n, ceiling+2)
	})
}
