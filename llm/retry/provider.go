package retry

import (
	"context"

	"github.com/BaSui01/schemaforge/llm"
)

// resilientProvider 把 TieredRetryer 套在任意 Provider 外面，
// 使管线对单次失败与重试策略完全无感。
type resilientProvider struct {
	inner   llm.Provider
	retryer *TieredRetryer
}

// Wrap 返回带分层重试能力的 Provider。
func Wrap(p llm.Provider, retryer *TieredRetryer) llm.Provider {
	return &resilientProvider{inner: p, retryer: retryer}
}

func (r *resilientProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	return r.retryer.Do(ctx, func(ctx context.Context) (string, error) {
		return r.inner.Generate(ctx, req)
	})
}

func (r *resilientProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return r.inner.HealthCheck(ctx)
}

func (r *resilientProvider) Available() bool { return r.inner.Available() }

func (r *resilientProvider) Name() string { return r.inner.Name() }
