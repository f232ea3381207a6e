package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/schemaforge/llm/retry"
	"github.com/BaSui01/schemaforge/providers"
)

// Config 是 schemaforge 的完整配置结构。
// 凭证、模型标识与重试阶梯都必须可以不改代码调整。
type Config struct {
	// Log 日志配置
	Log LogConfig `yaml:"log"`
	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry"`
	// Providers LLM 服务商配置
	Providers ProvidersConfig `yaml:"providers"`
	// Generation 生成参数
	Generation GenerationConfig `yaml:"generation"`
	// Retry 分层重试策略参数
	Retry RetryConfig `yaml:"retry"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 级别: debug/info/warn/error
	Level string `yaml:"level"`
	// 格式: json/console
	Format string `yaml:"format"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	// 服务名称
	ServiceName string `yaml:"service_name"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate"`
}

// ProvidersConfig 服务商配置。Default 指定管线使用哪个后端；
// 对应凭证缺失时自动落到离线路径。
type ProvidersConfig struct {
	// 默认后端: anthropic/gemini/offline
	Default   string                    `yaml:"default"`
	Anthropic providers.AnthropicConfig `yaml:"anthropic"`
	Gemini    providers.GeminiConfig    `yaml:"gemini"`
}

// GenerationConfig 生成参数
type GenerationConfig struct {
	// 内容部分的 token 上限
	TokenCeiling int `yaml:"token_ceiling"`
	// tiktoken 编码名
	Encoding string `yaml:"encoding"`
	// 输出 token 上限
	MaxTokens int `yaml:"max_tokens"`
	// 采样温度（接近零以最大化确定性）
	Temperature float32 `yaml:"temperature"`
}

// RetryConfig 分层重试策略参数
type RetryConfig struct {
	Standard StandardRetryConfig `yaml:"standard"`
	Overload OverloadRetryConfig `yaml:"overload"`
}

// StandardRetryConfig 标准层：指数退避
type StandardRetryConfig struct {
	Attempts     int      `yaml:"attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	Multiplier   float64  `yaml:"multiplier"`
	MaxDelay     Duration `yaml:"max_delay"`
}

// OverloadRetryConfig 过载层：固定延迟阶梯
type OverloadRetryConfig struct {
	Delays []Duration `yaml:"delays"`
}

// StandardPolicy 转换为 retry 包的标准层策略。
func (r RetryConfig) StandardPolicy() retry.BackoffPolicy {
	return retry.BackoffPolicy{
		Attempts:     r.Standard.Attempts,
		InitialDelay: time.Duration(r.Standard.InitialDelay),
		Multiplier:   r.Standard.Multiplier,
		MaxDelay:     time.Duration(r.Standard.MaxDelay),
	}
}

// OverloadPolicy 转换为 retry 包的过载层策略。
func (r RetryConfig) OverloadPolicy() retry.LadderPolicy {
	delays := make([]time.Duration, len(r.Overload.Delays))
	for i, d := range r.Overload.Delays {
		delays[i] = time.Duration(d)
	}
	return retry.LadderPolicy{Delays: delays}
}

// Duration 是支持 "2s"/"500ms" 字符串形式的 time.Duration。
type Duration time.Duration

// UnmarshalYAML 实现 yaml.Unmarshaler。
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		// 也接受纳秒整数形式。
		var n int64
		if err2 := node.Decode(&n); err2 == nil {
			*d = Duration(n)
			return nil
		}
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML 实现 yaml.Marshaler。
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
