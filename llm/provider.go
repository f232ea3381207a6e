package llm

import (
	"context"
	"time"
)

// 统一的 LLM 错误码，用于对齐 HTTP 状态、可重试性与用户文案。
type ErrorCode string

const (
	ErrUnauthorized    ErrorCode = "LLM_UNAUTHORIZED"     // 未授权或密钥失效
	ErrForbidden       ErrorCode = "LLM_FORBIDDEN"        // 权限或内容策略拒绝
	ErrNotFound        ErrorCode = "LLM_NOT_FOUND"        // 模型或端点不存在
	ErrPayloadTooLarge ErrorCode = "LLM_PAYLOAD_TOO_LARGE" // 请求超出上下文窗口
	ErrRateLimited     ErrorCode = "LLM_RATE_LIMITED"     // 上游限流
	ErrUpstreamError   ErrorCode = "LLM_UPSTREAM_ERROR"   // 上游 5xx/网络错误
	ErrModelOverloaded ErrorCode = "LLM_MODEL_OVERLOADED" // 模型过载，需更长退避
	ErrParseFailure    ErrorCode = "LLM_PARSE_FAILURE"    // 响应中无法恢复出合法 JSON
	ErrEmptyResult     ErrorCode = "LLM_EMPTY_RESULT"     // 响应合法但 schemas 为空
	ErrUnavailable     ErrorCode = "LLM_UNAVAILABLE"      // Provider 未配置凭证
	ErrUnknown         ErrorCode = "LLM_UNKNOWN"          // 未归类错误
)

// Error 是贯穿整个管线的结构化错误。
// Message 是可直接透出给最终用户的固定文案；原始上游细节只进日志。
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// IsRetryable 报告错误是否属于可重试类别。
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// CodeOf 提取错误码；非 *Error 返回 ErrUnknown。
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrUnknown
}

// GenerateRequest 是一次生成调用的完整输入。
// Temperature 固定为接近零的低随机值以最大化确定性；
// 调用方一般不应覆盖默认值。
type GenerateRequest struct {
	TraceID     string        `json:"trace_id,omitempty"`
	Model       string        `json:"model,omitempty"` // 为空时用 Provider 配置的默认模型
	System      string        `json:"system"`
	User        string        `json:"user"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// HealthStatus 表示 Provider 健康检查结果。
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
}

// Provider 定义统一的 LLM 适配接口。
// Generate 返回模型的原始文本（可能混有散文或代码围栏，由解析器处理），
// 失败时返回 *Error。单次 Generate 不做重试；重试由 retry 包的
// 包装器按分层策略统一处理。
type Provider interface {
	// Generate 发起一次同步生成请求。
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// HealthCheck 执行轻量级健康检查，返回延迟与可用性信息。
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Available 报告凭证是否已配置。未配置的 Provider 不应逐次报错，
	// 而是由上层切换到离线路径。
	Available() bool

	// Name 返回 Provider 的唯一标识。
	Name() string
}
