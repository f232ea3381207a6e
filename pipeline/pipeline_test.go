package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/schemaforge/config"
	"github.com/BaSui01/schemaforge/llm"
	"github.com/BaSui01/schemaforge/schema"
	"github.com/BaSui01/schemaforge/types"
)

// stubProvider 按脚本逐次返回响应或错误。
type stubProvider struct {
	responses []stubResponse
	calls     int
	lastReq   *llm.GenerateRequest
}

type stubResponse struct {
	text string
	err  error
}

func (s *stubProvider) Generate(_ context.Context, req *llm.GenerateRequest) (string, error) {
	s.lastReq = req
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	r := s.responses[idx]
	return r.text, r.err
}

func (s *stubProvider) HealthCheck(context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (s *stubProvider) Available() bool { return true }
func (s *stubProvider) Name() string    { return "stub" }

// fastRetryConfig 把重试延迟压到毫秒级，避免测试真实等待。
func fastRetryConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Retry.Standard.InitialDelay = config.Duration(time.Millisecond)
	cfg.Retry.Standard.MaxDelay = config.Duration(5 * time.Millisecond)
	cfg.Retry.Overload.Delays = []config.Duration{
		config.Duration(time.Millisecond),
		config.Duration(time.Millisecond),
		config.Duration(time.Millisecond),
		config.Duration(time.Millisecond),
		config.Duration(time.Millisecond),
	}
	return cfg
}

func blogAnalysis() types.ContentAnalysis {
	return types.ContentAnalysis{
		URL:         "https://example.com/blog/ten-tips",
		Title:       "Ten Tips for Better Bread",
		Description: "Practical advice for home bakers.",
		Content:     "Proofing, kneading, and baking explained.",
		Metadata: types.ContentMetadata{
			Author:        "Jane Doe",
			DatePublished: "2024-03-01T09:00:00Z",
			DateModified:  "2024-03-05T10:00:00Z",
			Images:        []string{"https://example.com/hero.jpg"},
			Business: &types.BusinessInfo{
				Name:    "Example Bakery",
				URL:     "https://example.com",
				LogoURL: "https://example.com/logo.png",
			},
			WordCount: 450,
			Language:  "en",
		},
	}
}

// 博客文章的完整闭环：模型给出部分属性，管线补全到合规。
func TestGenerate_BlogPostCompliant(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{{
		text: "```json\n" +
			`{"schemas":[{"@type":"BlogPosting","headline":"Ten Tips for Better Bread","description":"Practical advice for home bakers."}]}` +
			"\n```",
	}}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.NoError(t, err)
	require.Len(t, result.Schemas, 1)

	s := result.Schemas[0]
	assert.Equal(t, "BlogPosting", s.Type())
	assert.Equal(t, "https://schema.org", s["@context"])
	assert.Equal(t, "Jane Doe", s["author"].(map[string]any)["name"])
	assert.Equal(t, "2024-03-01T09:00:00Z", s["datePublished"])
	assert.Equal(t, "Example Bakery", s["publisher"].(map[string]any)["name"])

	require.Len(t, result.Validations, 1)
	assert.True(t, result.Validations[0].IsCompliant)
	assert.Empty(t, result.Violations)
	assert.NotEmpty(t, result.TraceID)
	assert.Equal(t, 1, stub.calls)

	// 提示词契约到达了 Provider
	assert.Contains(t, stub.lastReq.System, "Never invent")
	assert.Contains(t, stub.lastReq.User, "URL: https://example.com/blog/ten-tips")
}

// 用户指定模式下模型多给了类型：记录违规但照样交付。
func TestGenerate_ModeViolationKept(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{{
		text: `{"schemas":[{"@type":"FAQPage","mainEntity":[{"@type":"Question","name":"Q?","acceptedAnswer":{"@type":"Answer","text":"A."}}]},{"@type":"WebPage","name":"Extra","url":"https://example.com"}]}`,
	}}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{
		RequestedTypes: []string{"FAQPage"},
	})
	require.NoError(t, err)

	assert.Len(t, result.Schemas, 2, "违规 schema 不被过滤")
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "WebPage", result.Violations[0].SchemaType)
}

// 合法响应但 schemas 为空：EmptyResult，不重试。
func TestGenerate_EmptyResult(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{{text: `{"schemas":[]}`}}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.Error(t, err)
	assert.Nil(t, result, "失败时绝无部分结果")
	assert.Equal(t, llm.ErrEmptyResult, llm.CodeOf(err))
	assert.Equal(t, 1, stub.calls, "EmptyResult 不可重试")
}

// 响应完全不可解析：ParseFailure，不重试。
func TestGenerate_ParseFailure(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{{text: "I cannot help with that."}}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, llm.ErrParseFailure, llm.CodeOf(err))
	assert.Equal(t, 1, stub.calls)
}

// 无可信作者来源：属性省略并体现在校验结论里，结果仍然交付。
func TestGenerate_OmitsUnverifiableAuthor(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{{
		text: `{"schemas":[{"@type":"BlogPosting","headline":"Anonymous Musings"}]}`,
	}}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	analysis := types.ContentAnalysis{
		URL:     "https://example.com/post",
		Title:   "Anonymous Musings",
		Content: "body",
	}
	result, err := g.Generate(context.Background(), analysis, types.GenerationOptions{})
	require.NoError(t, err)

	s := result.Schemas[0]
	assert.NotContains(t, s, "author", "绝不编造作者")

	require.Len(t, result.Reports, 1)
	assert.Contains(t, result.Reports[0].Omitted, "author")

	require.Len(t, result.Validations, 1)
	assert.False(t, result.Validations[0].IsCompliant, "缺 required 如实报告")
}

// 清洗环节：模型输出的 HTML 污染与裸 image 字符串在交付前被修复。
func TestGenerate_CleansCandidates(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{{
		text: `{"schemas":[{"@type":"BlogPosting","headline":"<b>Ten &amp; More</b>","image":"https://example.com/raw.jpg"}]}`,
	}}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.NoError(t, err)

	s := result.Schemas[0]
	assert.Equal(t, "Ten & More", s["headline"])
	img := s["image"].(map[string]any)
	assert.Equal(t, "ImageObject", img["@type"])
	assert.Equal(t, "https://example.com/raw.jpg", img["url"])
}

// 瞬态失败后恢复：重试层对管线透明。
func TestGenerate_RecoversAfterTransientFailures(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{
		{err: llm.NewError(llm.ErrRateLimited, "stub", 429, true)},
		{err: llm.NewError(llm.ErrUpstreamError, "stub", 502, true)},
		{text: `{"schemas":[{"@type":"WebPage","name":"Home","url":"https://example.com"}]}`},
	}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls)
	assert.Len(t, result.Schemas, 1)
}

// 不可重试失败立即上抛，调用次数恒为 1。
func TestGenerate_NonRetryableFailsFast(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{
		{err: llm.NewError(llm.ErrUnauthorized, "stub", 401, false)},
	}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, llm.ErrUnauthorized, llm.CodeOf(err))
	assert.Equal(t, 1, stub.calls)
}

// 凭证缺失的默认配置：自动落到离线路径，端到端仍然产出结果。
func TestNew_OfflineFallback(t *testing.T) {
	cfg := config.Defaults() // anthropic 无 API key
	g := New(cfg, nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.NoError(t, err)
	assert.Equal(t, "offline", result.Provider)
	require.NotEmpty(t, result.Schemas)
	assert.Equal(t, "WebPage", result.Schemas[0].Type())
	assert.Equal(t, "Ten Tips for Better Bread", result.Schemas[0]["name"])
}

// 每个候选都有对应的报告与校验结论。
func TestGenerate_ParallelLists(t *testing.T) {
	stub := &stubProvider{responses: []stubResponse{{
		text: `{"schemas":[{"@type":"WebPage","name":"A","url":"https://e.com/a"},{"@type":"Person","name":"Jane Doe"},{"@type":"Organization"}]}`,
	}}}
	g := NewWithProvider(stub, fastRetryConfig(), nil, nil)

	result, err := g.Generate(context.Background(), blogAnalysis(), types.GenerationOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Schemas, 3)
	assert.Len(t, result.Reports, 3)
	assert.Len(t, result.Validations, 3)
	for i, s := range result.Schemas {
		assert.Equal(t, s.Type(), result.Reports[i].SchemaType)
		assert.Equal(t, s.Type(), result.Validations[i].SchemaType)
	}
	assert.Equal(t, schema.KindWebPage, result.Schemas[0].Kind())
}
