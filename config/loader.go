package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader 按「默认值 → YAML 文件 → 环境变量」的优先级加载配置。
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader 创建加载器，默认环境变量前缀 SCHEMAFORGE。
func NewLoader() *Loader {
	return &Loader{envPrefix: "SCHEMAFORGE"}
}

// WithConfigPath 指定 YAML 配置文件路径；为空则跳过文件加载。
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 覆盖环境变量前缀。
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load 执行加载。YAML 文件不存在不视为错误（纯环境变量部署）。
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", l.configPath, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", l.configPath, err)
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 应用环境变量覆盖。凭证类配置通常只通过环境变量传入。
func (l *Loader) applyEnv(cfg *Config) error {
	get := func(key string) string {
		return os.Getenv(l.envPrefix + "_" + key)
	}

	if v := get("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := get("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := get("TELEMETRY_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s_TELEMETRY_ENABLED: %w", l.envPrefix, err)
		}
		cfg.Telemetry.Enabled = enabled
	}
	if v := get("OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}

	if v := get("PROVIDER"); v != "" {
		cfg.Providers.Default = v
	}
	if v := get("ANTHROPIC_API_KEY"); v != "" {
		cfg.Providers.Anthropic.APIKey = v
	}
	if v := get("ANTHROPIC_BASE_URL"); v != "" {
		cfg.Providers.Anthropic.BaseURL = v
	}
	if v := get("ANTHROPIC_MODEL"); v != "" {
		cfg.Providers.Anthropic.Model = v
	}
	if v := get("GEMINI_API_KEY"); v != "" {
		cfg.Providers.Gemini.APIKey = v
	}
	if v := get("GEMINI_BASE_URL"); v != "" {
		cfg.Providers.Gemini.BaseURL = v
	}
	if v := get("GEMINI_MODEL"); v != "" {
		cfg.Providers.Gemini.Model = v
	}

	if v := get("TOKEN_CEILING"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s_TOKEN_CEILING: %w", l.envPrefix, err)
		}
		cfg.Generation.TokenCeiling = n
	}

	if v := get("RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s_RETRY_ATTEMPTS: %w", l.envPrefix, err)
		}
		cfg.Retry.Standard.Attempts = n
	}
	if v := get("RETRY_INITIAL_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s_RETRY_INITIAL_DELAY: %w", l.envPrefix, err)
		}
		cfg.Retry.Standard.InitialDelay = Duration(d)
	}
	if v := get("OVERLOAD_DELAYS"); v != "" {
		// 逗号分隔的时长阶梯，如 "2s,5s,10s,20s,30s"
		parts := strings.Split(v, ",")
		delays := make([]Duration, 0, len(parts))
		for _, p := range parts {
			d, err := time.ParseDuration(strings.TrimSpace(p))
			if err != nil {
				return fmt.Errorf("parse %s_OVERLOAD_DELAYS entry %q: %w", l.envPrefix, p, err)
			}
			delays = append(delays, Duration(d))
		}
		cfg.Retry.Overload.Delays = delays
	}

	return nil
}
