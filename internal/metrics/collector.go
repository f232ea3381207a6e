package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 收集生成管线的运行指标，供外部监控方聚合成
// 成功率、过载率与平均延迟等健康指标。
type Collector struct {
	// 生成请求指标
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec

	// Provider 调用指标
	providerAttemptsTotal *prometheus.CounterVec
	retriesTotal          *prometheus.CounterVec

	// 管线阶段指标
	stageDuration       *prometheus.HistogramVec
	parseFailuresTotal  *prometheus.CounterVec
	modeViolationsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器并注册到给定的 Registerer。
func NewCollector(reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	return &Collector{
		generationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemaforge",
			Name:      "generations_total",
			Help:      "Total generation requests by provider and outcome.",
		}, []string{"provider", "outcome"}),

		generationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schemaforge",
			Name:      "generation_duration_seconds",
			Help:      "End-to-end generation latency.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider"}),

		providerAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemaforge",
			Name:      "provider_attempts_total",
			Help:      "Provider call attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),

		retriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemaforge",
			Name:      "retries_total",
			Help:      "Scheduled retries by provider and error class.",
		}, []string{"provider", "class"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schemaforge",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage pipeline latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),

		parseFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemaforge",
			Name:      "parse_failures_total",
			Help:      "Responses from which no schema list could be recovered.",
		}, []string{"provider"}),

		modeViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemaforge",
			Name:      "mode_violations_total",
			Help:      "Schemas emitted outside the user-requested type list.",
		}, []string{"emitted_type"}),

		logger: logger,
	}
}

// RecordGeneration 记录一次端到端生成请求。
func (c *Collector) RecordGeneration(provider, outcome string, duration time.Duration) {
	c.generationsTotal.WithLabelValues(provider, outcome).Inc()
	c.generationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordAttempt 记录一次 Provider 调用尝试。
func (c *Collector) RecordAttempt(provider, outcome string) {
	c.providerAttemptsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordRetry 记录一次已调度的重试。
func (c *Collector) RecordRetry(provider, class string) {
	c.retriesTotal.WithLabelValues(provider, class).Inc()
}

// ObserveStage 记录单个管线阶段的耗时。
func (c *Collector) ObserveStage(stage string, duration time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordParseFailure 记录一次解析失败。
func (c *Collector) RecordParseFailure(provider string) {
	c.parseFailuresTotal.WithLabelValues(provider).Inc()
}

// RecordModeViolation 记录一次模式一致性违规。
func (c *Collector) RecordModeViolation(emittedType string) {
	c.modeViolationsTotal.WithLabelValues(emittedType).Inc()
}
