package anthropic

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

// AnthropicProvider 实现 Anthropic Messages API 的 LLM Provider。
// 与 OpenAI 系接口的关键差异：
// 1. 认证使用 x-api-key 请求头而非 Bearer Token
// 2. system 提示词单独传递，不混入 messages
// 3. 过载条件有专属状态码 529，与一般限流（429）区分，
//    需要走更长的退避阶梯
type AnthropicProvider struct {
	cfg    providers.AnthropicConfig
	client *http.Client
	logger *zap.Logger
}

// New 创建 Anthropic Provider。APIKey 为空时 Provider 标记为不可用，
// 而不是在每次调用时报错——由上层切换到离线路径。
func New(cfg providers.AnthropicConfig, logger *zap.Logger) *AnthropicProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second // Anthropic 响应可能较慢
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}

	return &AnthropicProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Available() bool { return strings.TrimSpace(p.cfg.APIKey) != "" }

func (p *AnthropicProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v1/models", strings.TrimRight(p.cfg.BaseURL, "/"))
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
		return &llm.HealthStatus{Healthy: false, Latency: latency}, fmt.Errorf("anthropic health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"` // system 提示词单独传递
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"` // text, tool_use
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
}

type anthropicErrorResp struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicProvider) buildHeaders(req *http.Request) {
	// Anthropic 使用 x-api-key 认证
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Generate 发起一次 Messages 调用并返回模型原始文本。
// 错误按状态码归类到统一的 llm.ErrorCode；单次调用不做重试。
func (p *AnthropicProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	if !p.Available() {
		return "", llm.NewError(llm.ErrUnavailable, p.Name(), 0, false)
	}

	body := anthropicRequest{
		Model: providers.ChooseModel(req, p.cfg.Model, "claude-3-5-sonnet-20241022"),
		Messages: []anthropicMessage{
			{Role: "user", Content: req.User},
		},
		System:      req.System,
		MaxTokens:   providers.ChooseMaxTokens(req),
		Temperature: providers.ChooseTemperature(req),
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.cfg.BaseURL, "/"))

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("anthropic request failed", zap.Error(err))
		return "", llm.NewError(llm.ErrUpstreamError, p.Name(), http.StatusBadGateway, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrMsg(resp.Body)
		p.logger.Warn("anthropic error response",
			zap.Int("status", resp.StatusCode),
			zap.String("upstream_msg", msg),
		)
		return "", MapError(resp.StatusCode, msg, p.Name())
	}

	var ar anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", llm.NewError(llm.ErrUpstreamError, p.Name(), http.StatusBadGateway, true)
	}

	var sb strings.Builder
	for _, c := range ar.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp anthropicErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
	}
	return string(data)
}

// MapError 把 Anthropic 状态码映射到统一错误码。
// 529 是 Anthropic 特有的过载状态码，与 429 限流区分对待。
func MapError(status int, msg string, provider string) *llm.Error {
	switch status {
	case http.StatusUnauthorized:
		return llm.NewError(llm.ErrUnauthorized, provider, status, false)
	case http.StatusForbidden:
		return llm.NewError(llm.ErrForbidden, provider, status, false)
	case http.StatusNotFound:
		return llm.NewError(llm.ErrNotFound, provider, status, false)
	case http.StatusRequestEntityTooLarge:
		return llm.NewError(llm.ErrPayloadTooLarge, provider, status, false)
	case http.StatusTooManyRequests:
		return llm.NewError(llm.ErrRateLimited, provider, status, true)
	case http.StatusBadRequest:
		if strings.Contains(msg, "prompt is too long") || strings.Contains(msg, "max_tokens") {
			return llm.NewError(llm.ErrPayloadTooLarge, provider, status, false)
		}
		return llm.NewError(llm.ErrUnknown, provider, status, false)
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return llm.NewError(llm.ErrUpstreamError, provider, status, true)
	case 529: // Anthropic 特有的过载状态码
		return llm.NewError(llm.ErrModelOverloaded, provider, status, true)
	default:
		return llm.NewError(llm.ErrUnknown, provider, status, status >= 500)
	}
}
