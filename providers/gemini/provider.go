package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaforge/llm"
	"github.com/BaSui01/schemaforge/providers"
)

// GeminiProvider 实现 Google Gemini generateContent 的 LLM Provider。
// Gemini API 特点：
// 1. 使用 x-goog-api-key 请求头认证
// 2. system 提示词通过 systemInstruction 字段传递
// 3. 过载没有专属状态码：503 UNAVAILABLE 带 "overloaded" 文案时
//    归类为过载，其余 503 归为一般上游错误
type GeminiProvider struct {
	cfg    providers.GeminiConfig
	client *http.Client
	logger *zap.Logger
}

// New 创建 Gemini Provider。APIKey 为空时 Provider 标记为不可用。
func New(cfg providers.GeminiConfig, logger *zap.Logger) *GeminiProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}

	return &GeminiProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Available() bool { return strings.TrimSpace(p.cfg.APIKey) != "" }

func (p *GeminiProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v1beta/models", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrMsg(resp.Body)
		return &llm.HealthStatus{Healthy: false, Latency: latency}, fmt.Errorf("gemini health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user, model
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"` // UNAVAILABLE, RESOURCE_EXHAUSTED, ...
	} `json:"error"`
}

func (p *GeminiProvider) buildHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Generate 发起一次 generateContent 调用并返回模型原始文本。
func (p *GeminiProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	if !p.Available() {
		return "", llm.NewError(llm.ErrUnavailable, p.Name(), 0, false)
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.User}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     providers.ChooseTemperature(req),
			MaxOutputTokens: providers.ChooseMaxTokens(req),
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	model := providers.ChooseModel(req, p.cfg.Model, "gemini-1.5-pro")
	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), model)

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("gemini request failed", zap.Error(err))
		return "", llm.NewError(llm.ErrUpstreamError, p.Name(), http.StatusBadGateway, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrMsg(resp.Body)
		p.logger.Warn("gemini error response",
			zap.Int("status", resp.StatusCode),
			zap.String("upstream_msg", msg),
		)
		return "", MapError(resp.StatusCode, msg, p.Name())
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", llm.NewError(llm.ErrUpstreamError, p.Name(), http.StatusBadGateway, true)
	}

	var sb strings.Builder
	for _, cand := range gr.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp geminiErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (status: %s)", errResp.Error.Message, errResp.Error.Status)
	}
	return string(data)
}

// MapError 把 Gemini 状态码映射到统一错误码。
func MapError(status int, msg string, provider string) *llm.Error {
	switch status {
	case http.StatusUnauthorized:
		return llm.NewError(llm.ErrUnauthorized, provider, status, false)
	case http.StatusForbidden:
		return llm.NewError(llm.ErrForbidden, provider, status, false)
	case http.StatusNotFound:
		return llm.NewError(llm.ErrNotFound, provider, status, false)
	case http.StatusTooManyRequests:
		return llm.NewError(llm.ErrRateLimited, provider, status, true)
	case http.StatusBadRequest:
		if strings.Contains(msg, "exceeds the maximum") || strings.Contains(msg, "token count") {
			return llm.NewError(llm.ErrPayloadTooLarge, provider, status, false)
		}
		return llm.NewError(llm.ErrUnknown, provider, status, false)
	case http.StatusServiceUnavailable:
		// Gemini 的过载信号：503 UNAVAILABLE + overloaded 文案
		if strings.Contains(strings.ToLower(msg), "overloaded") {
			return llm.NewError(llm.ErrModelOverloaded, provider, status, true)
		}
		return llm.NewError(llm.ErrUpstreamError, provider, status, true)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return llm.NewError(llm.ErrUpstreamError, provider, status, true)
	default:
		return llm.NewError(llm.ErrUnknown, provider, status, status >= 500)
	}
}
