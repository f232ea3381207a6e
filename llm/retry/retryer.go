package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaforge/llm"
)

// 重试耗尽后的固定用户文案，不泄漏上游内部细节。
const exhaustedMessage = "The generation service is temporarily busy. Please try again in a few minutes."

// TieredRetryer 按分层策略执行可重试的 LLM 调用。
//
// 策略选择发生在每次错误归类之后、进入延迟之前：
// 遇到过载类错误（ErrModelOverloaded）即切换到过载阶梯，
// 且本次调用内不再降级回标准层。每次可重试失败后都会按
// 当前策略休眠，随后才进入下一次尝试或终止。
type TieredRetryer struct {
	standard Policy
	overload Policy
	logger   *zap.Logger

	// OnRetry 在每次调度重试时回调，便于测试与指标采集。
	OnRetry func(attempt int, err error, delay time.Duration)

	// sleep 可注入，测试中用于记录延迟而非真实等待。
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTieredRetryer 创建分层重试器。standard/overload 为 nil 时使用默认策略。
func NewTieredRetryer(standard, overload Policy, logger *zap.Logger) *TieredRetryer {
	if standard == nil {
		standard = DefaultBackoffPolicy()
	}
	if overload == nil {
		overload = DefaultLadderPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredRetryer{
		standard: standard,
		overload: overload,
		logger:   logger,
		sleep:    ctxSleep,
	}
}

// WithSleep 覆盖休眠实现，仅用于测试。
func (r *TieredRetryer) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *TieredRetryer {
	r.sleep = sleep
	return r
}

// Do 执行 fn，按分层策略重试可重试错误。
//
// 状态机（每次调用）：Idle → Attempting → {Success | Retrying → Attempting | Failed}。
// 不可重试错误立即返回，零延迟；重试耗尽后返回携带固定用户文案的
// 致命错误（保留最后一次错误的错误码与 Provider 标识）。
func (r *TieredRetryer) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	policy := r.standard
	var lastErr *llm.Error

	for attempt := 1; ; attempt++ {
		r.logger.Debug("provider attempt start",
			zap.Int("attempt", attempt),
			zap.String("policy", policy.Name()),
		)

		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("provider attempt succeeded after retry",
					zap.Int("attempt", attempt),
				)
			}
			return result, nil
		}

		lastErr = asLLMError(err)
		if !lastErr.Retryable {
			r.logger.Debug("provider error not retryable",
				zap.String("code", string(lastErr.Code)),
				zap.Error(err),
			)
			return "", lastErr
		}

		// 归类后一次性选定策略：过载类升级到阶梯层，永不降级。
		if lastErr.Code == llm.ErrModelOverloaded && policy.Name() != r.overload.Name() {
			policy = r.overload
			r.logger.Warn("overload signal, switching to ladder policy",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", policy.MaxAttempts()),
			)
		}

		delay := policy.DelayFor(attempt)
		r.logger.Warn("provider attempt failed, retry scheduled",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts()),
			zap.String("policy", policy.Name()),
			zap.String("code", string(lastErr.Code)),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if r.OnRetry != nil {
			r.OnRetry(attempt, lastErr, delay)
		}

		if err := r.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("retry cancelled: %w", err)
		}

		if attempt >= policy.MaxAttempts() {
			break
		}
	}

	r.logger.Warn("provider retries exhausted",
		zap.String("policy", policy.Name()),
		zap.String("code", string(lastErr.Code)),
	)
	return "", &llm.Error{
		Code:       lastErr.Code,
		Message:    exhaustedMessage,
		HTTPStatus: lastErr.HTTPStatus,
		Retryable:  false,
		Provider:   lastErr.Provider,
	}
}

// ctxSleep 等待 d，同时监听 context 取消。
func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func asLLMError(err error) *llm.Error {
	if e, ok := err.(*llm.Error); ok {
		return e
	}
	return &llm.Error{
		Code:      llm.ErrUnknown,
		Message:   "The generation request failed unexpectedly. Please try again.",
		Retryable: false,
	}
}
