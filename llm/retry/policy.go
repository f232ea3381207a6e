package retry

import (
	"math"
	"time"
)

// Policy 描述一个重试层：最大尝试次数与每次失败后的延迟。
// attempt 从 1 开始计数。
type Policy interface {
	// MaxAttempts 返回最大尝试次数（含首次）。
	MaxAttempts() int
	// DelayFor 返回第 attempt 次尝试失败后的休眠时长。
	DelayFor(attempt int) time.Duration
	// Name 返回策略名，用于日志与指标。
	Name() string
}

// BackoffPolicy 是标准层：指数退避。
type BackoffPolicy struct {
	Attempts     int           `json:"attempts" yaml:"attempts"`
	InitialDelay time.Duration `json:"initial_delay" yaml:"initial_delay"`
	Multiplier   float64       `json:"multiplier" yaml:"multiplier"`
	MaxDelay     time.Duration `json:"max_delay" yaml:"max_delay"`
}

// DefaultBackoffPolicy 返回默认标准层策略：
// 1s 起步、逐次翻倍、最多 3 次尝试，累计休眠约 7s。
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Attempts:     3,
		InitialDelay: 1 * time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
	}
}

func (p BackoffPolicy) MaxAttempts() int {
	if p.Attempts <= 0 {
		return 1
	}
	return p.Attempts
}

func (p BackoffPolicy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult < 1.0 {
		mult = 2.0
	}
	delay := float64(p.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

func (p BackoffPolicy) Name() string { return "backoff" }

// LadderPolicy 是过载层：固定延迟阶梯，尝试次数等于阶梯长度。
type LadderPolicy struct {
	Delays []time.Duration `json:"delays" yaml:"delays"`
}

// DefaultLadderPolicy 返回默认过载层策略：
// 2s/5s/10s/20s/30s，5 次尝试，累计休眠 67s。
func DefaultLadderPolicy() LadderPolicy {
	return LadderPolicy{
		Delays: []time.Duration{
			2 * time.Second,
			5 * time.Second,
			10 * time.Second,
			20 * time.Second,
			30 * time.Second,
		},
	}
}

func (p LadderPolicy) MaxAttempts() int { return len(p.Delays) }

func (p LadderPolicy) DelayFor(attempt int) time.Duration {
	if attempt < 1 || attempt > len(p.Delays) {
		if n := len(p.Delays); n > 0 {
			return p.Delays[n-1]
		}
		return 0
	}
	return p.Delays[attempt-1]
}

func (p LadderPolicy) Name() string { return "overload-ladder" }
