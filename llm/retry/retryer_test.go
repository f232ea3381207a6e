package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaforge/llm"
)

// recordingSleep 记录调度的延迟而不真实等待。
func recordingSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func overloadErr() *llm.Error {
	return llm.NewError(llm.ErrModelOverloaded, "anthropic", 529, true)
}

func rateLimitedErr() *llm.Error {
	return llm.NewError(llm.ErrRateLimited, "anthropic", 429, true)
}

func TestTieredRetryer_SuccessFirstAttempt(t *testing.T) {
	var delays []time.Duration
	r := NewTieredRetryer(nil, nil, zap.NewNop()).WithSleep(recordingSleep(&delays))

	calls := 0
	result, err := r.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls, "应该只调用一次")
	assert.Empty(t, delays)
}

func TestTieredRetryer_NonRetryableFailsImmediately(t *testing.T) {
	var delays []time.Duration
	r := NewTieredRetryer(nil, nil, zap.NewNop()).WithSleep(recordingSleep(&delays))

	calls := 0
	_, err := r.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", llm.NewError(llm.ErrUnauthorized, "anthropic", 401, false)
	})

	require.Error(t, err)
	assert.Equal(t, llm.ErrUnauthorized, llm.CodeOf(err))
	assert.Equal(t, 1, calls, "不可重试错误不应触发第二次尝试")
	assert.Empty(t, delays, "不可重试错误零延迟")
}

func TestTieredRetryer_StandardPolicyExhaustion(t *testing.T) {
	var delays []time.Duration
	r := NewTieredRetryer(nil, nil, zap.NewNop()).WithSleep(recordingSleep(&delays))

	calls := 0
	_, err := r.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", rateLimitedErr()
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "标准层最多 3 次尝试")
	// 指数退避：1s, 2s, 4s
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, delays)

	e, ok := err.(*llm.Error)
	require.True(t, ok)
	assert.False(t, e.Retryable, "耗尽后的终态错误不可重试")
	assert.Equal(t, llm.ErrRateLimited, e.Code)
	assert.NotContains(t, e.Message, "429", "用户文案不泄漏上游细节")
}

// 连续五次过载失败：累计等待必须落在 60~70 秒之间，且不超过 5 次尝试。
func TestTieredRetryer_OverloadLadderTiming(t *testing.T) {
	var delays []time.Duration
	r := NewTieredRetryer(nil, nil, zap.NewNop()).WithSleep(recordingSleep(&delays))

	calls := 0
	_, err := r.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", overloadErr()
	})

	require.Error(t, err)
	assert.Equal(t, 5, calls, "过载层最多 5 次尝试")

	var total time.Duration
	for _, d := range delays {
		total += d
	}
	assert.GreaterOrEqual(t, total, 60*time.Second)
	assert.LessOrEqual(t, total, 70*time.Second)
	assert.Equal(t, []time.Duration{
		2 * time.Second, 5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second,
	}, delays)
}

// 序列中途出现过载信号：升级到阶梯层且不再降级。
func TestTieredRetryer_UpgradeNeverDowngrades(t *testing.T) {
	var delays []time.Duration
	r := NewTieredRetryer(nil, nil, zap.NewNop()).WithSleep(recordingSleep(&delays))

	calls := 0
	_, err := r.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls == 2 {
			return "", overloadErr()
		}
		return "", rateLimitedErr()
	})

	require.Error(t, err)
	assert.Equal(t, 5, calls, "升级后按阶梯层的尝试上限执行")
	// 第 1 次失败走标准层 1s；第 2 次起升级到阶梯层并保持。
	assert.Equal(t, []time.Duration{
		time.Second, 5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second,
	}, delays)
}

func TestTieredRetryer_SuccessAfterRetry(t *testing.T) {
	var delays []time.Duration
	r := NewTieredRetryer(nil, nil, zap.NewNop()).WithSleep(recordingSleep(&delays))

	calls := 0
	result, err := r.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", rateLimitedErr()
		}
		return "recovered", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, calls)
	assert.Len(t, delays, 2)
}

// 休眠期间取消 context：调用方可以在两次尝试之间放弃请求。
func TestTieredRetryer_CancellationBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewTieredRetryer(BackoffPolicy{
		Attempts:     3,
		InitialDelay: 50 * time.Millisecond,
		Multiplier:   2.0,
	}, nil, zap.NewNop())

	calls := 0
	start := time.Now()
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Do(ctx, func(context.Context) (string, error) {
		calls++
		return "", rateLimitedErr()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 40*time.Millisecond, "取消应立刻中断休眠")
}

func TestTieredRetryer_OnRetryCallback(t *testing.T) {
	var delays []time.Duration
	r := NewTieredRetryer(nil, nil, zap.NewNop()).WithSleep(recordingSleep(&delays))

	var seen []llm.ErrorCode
	r.OnRetry = func(_ int, err error, _ time.Duration) {
		seen = append(seen, llm.CodeOf(err))
	}

	_, _ = r.Do(context.Background(), func(context.Context) (string, error) {
		return "", rateLimitedErr()
	})

	assert.Equal(t, []llm.ErrorCode{llm.ErrRateLimited, llm.ErrRateLimited, llm.ErrRateLimited}, seen)
}
