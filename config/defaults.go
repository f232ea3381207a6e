package config

import "time"

// Defaults 返回全部默认配置。
// 默认重试参数即生产环境使用的两层策略：
// 标准层 3 次尝试、1s 起步翻倍；过载层 2s/5s/10s/20s/30s 共 5 次。
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "schemaforge",
			SampleRate:   1.0,
		},
		Providers: ProvidersConfig{
			Default: "anthropic",
		},
		Generation: GenerationConfig{
			TokenCeiling: 6000,
			Encoding:     "cl100k_base",
			MaxTokens:    4096,
			Temperature:  0.1,
		},
		Retry: RetryConfig{
			Standard: StandardRetryConfig{
				Attempts:     3,
				InitialDelay: Duration(1 * time.Second),
				Multiplier:   2.0,
				MaxDelay:     Duration(30 * time.Second),
			},
			Overload: OverloadRetryConfig{
				Delays: []Duration{
					Duration(2 * time.Second),
					Duration(5 * time.Second),
					Duration(10 * time.Second),
					Duration(20 * time.Second),
					Duration(30 * time.Second),
				},
			},
		},
	}
}
