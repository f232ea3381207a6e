package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaforge/config"
	"github.com/BaSui01/schemaforge/internal/metrics"
	"github.com/BaSui01/schemaforge/llm"
	"github.com/BaSui01/schemaforge/llm/retry"
	"github.com/BaSui01/schemaforge/llm/tokenizer"
	"github.com/BaSui01/schemaforge/prompt"
	"github.com/BaSui01/schemaforge/providers/anthropic"
	"github.com/BaSui01/schemaforge/providers/gemini"
	"github.com/BaSui01/schemaforge/providers/offline"
	"github.com/BaSui01/schemaforge/schema"
	"github.com/BaSui01/schemaforge/types"
)

// Result 是一次成功生成的完整产出。
// Schemas 非空且与 Reports/Validations 一一对应。
type Result struct {
	TraceID     string                      `json:"trace_id"`
	Provider    string                      `json:"provider"`
	Schemas     []schema.Schema             `json:"schemas"`
	Reports     []schema.CompletenessReport `json:"reports"`
	Validations []schema.ValidationResult   `json:"validations"`
	Violations  []schema.ModeViolation      `json:"violations,omitempty"`
}

// Generator 是管线的入口对象。构造一次、并发安全：
// 所有可变状态都在单次 Generate 调用内部。
type Generator struct {
	provider  llm.Provider
	builder   *prompt.Builder
	cleaner   *schema.Cleaner
	engine    *schema.Engine
	validator *schema.Validator
	enforcer  *schema.Enforcer

	genCfg    config.GenerationConfig
	logger    *zap.Logger
	collector *metrics.Collector
	tracer    trace.Tracer
}

// New 按配置组装管线。凭证缺失时自动落到离线 Provider，
// 而不是让每次调用失败。
func New(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *Generator {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := selectProvider(cfg, logger)

	tok := tokenizer.ForEncoding(cfg.Generation.Encoding)
	budgeter := prompt.NewBudgeter(tok, cfg.Generation.TokenCeiling)

	return &Generator{
		provider:  wrapWithRetry(base, cfg, logger, collector),
		builder:   prompt.NewBuilder(budgeter),
		cleaner:   schema.NewCleaner(),
		engine:    schema.NewEngine(logger),
		validator: schema.NewValidator(),
		enforcer:  schema.NewEnforcer(logger),
		genCfg:    cfg.Generation,
		logger:    logger,
		collector: collector,
		tracer:    otel.Tracer("schemaforge/pipeline"),
	}
}

// selectProvider 按配置选择后端；所选后端凭证缺失时回退离线路径。
func selectProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	var p llm.Provider
	switch cfg.Providers.Default {
	case "gemini":
		p = gemini.New(cfg.Providers.Gemini, logger)
	case "offline":
		p = offline.New()
	default:
		p = anthropic.New(cfg.Providers.Anthropic, logger)
	}

	if !p.Available() {
		logger.Warn("provider credential missing, falling back to offline path",
			zap.String("provider", p.Name()),
		)
		return offline.New()
	}
	return p
}

// wrapWithRetry 给 Provider 套上分层重试，并把重试事件接入指标。
func wrapWithRetry(p llm.Provider, cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) llm.Provider {
	retryer := retry.NewTieredRetryer(cfg.Retry.StandardPolicy(), cfg.Retry.OverloadPolicy(), logger)
	if collector != nil {
		name := p.Name()
		retryer.OnRetry = func(_ int, err error, _ time.Duration) {
			collector.RecordRetry(name, string(llm.CodeOf(err)))
		}
	}
	return retry.Wrap(p, retryer)
}

// NewWithProvider 用显式 Provider 组装管线，测试与嵌入场景使用。
// 给定的 Provider 同样套上配置指定的分层重试。
func NewWithProvider(p llm.Provider, cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *Generator {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	g := New(cfg, logger, collector)
	g.provider = wrapWithRetry(p, cfg, logger, collector)
	return g
}

// Generate 执行一次端到端生成。
// 成功返回非空、已清洗补全校验的 schema 列表；
// 失败返回单个 *llm.Error，列表恒为 nil——绝无部分结果。
func (g *Generator) Generate(ctx context.Context, analysis types.ContentAnalysis, opts types.GenerationOptions) (*Result, error) {
	traceID := uuid.NewString()
	logger := g.logger.With(
		zap.String("trace_id", traceID),
		zap.String("provider", g.provider.Name()),
	)
	start := time.Now()

	ctx, span := g.tracer.Start(ctx, "pipeline.generate",
		trace.WithAttributes(
			attribute.String("trace_id", traceID),
			attribute.Bool("user_specific_mode", opts.UserSpecificMode()),
		))
	defer span.End()

	logger.Info("generation started",
		zap.String("url", analysis.URL),
		zap.Strings("requested_types", opts.RequestedTypes),
	)

	// 预算 + 提示词构建
	pair := g.stagePrompt(ctx, analysis, opts)

	// Provider 调用（重试在 Provider 包装器内部）
	raw, err := g.stageGenerate(ctx, traceID, pair)
	if err != nil {
		g.finish(logger, start, "provider_error")
		return nil, err
	}

	// 解析
	candidates, err := g.stageParse(ctx, logger, raw)
	if err != nil {
		g.finish(logger, start, string(llm.CodeOf(err)))
		return nil, err
	}

	// 清洗 → 补全 → 校验
	result := &Result{TraceID: traceID, Provider: g.provider.Name()}
	g.stagePostProcess(ctx, candidates, analysis, result)

	// 模式一致性检查：只记录，不过滤。
	result.Violations = g.stageEnforce(ctx, result.Schemas, opts)

	g.finish(logger, start, "success")
	logger.Info("generation finished",
		zap.Int("schemas", len(result.Schemas)),
		zap.Int("violations", len(result.Violations)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (g *Generator) stagePrompt(ctx context.Context, analysis types.ContentAnalysis, opts types.GenerationOptions) prompt.Pair {
	_, span := g.tracer.Start(ctx, "pipeline.prompt")
	defer span.End()
	defer g.observeStage("prompt", time.Now())

	return g.builder.Build(analysis, opts)
}

func (g *Generator) stageGenerate(ctx context.Context, traceID string, pair prompt.Pair) (string, error) {
	ctx, span := g.tracer.Start(ctx, "pipeline.provider")
	defer span.End()
	defer g.observeStage("provider", time.Now())

	raw, err := g.provider.Generate(ctx, &llm.GenerateRequest{
		TraceID:     traceID,
		System:      pair.System,
		User:        pair.User,
		MaxTokens:   g.genCfg.MaxTokens,
		Temperature: g.genCfg.Temperature,
	})
	if g.collector != nil {
		outcome := "success"
		if err != nil {
			outcome = string(llm.CodeOf(err))
		}
		g.collector.RecordAttempt(g.provider.Name(), outcome)
	}
	return raw, err
}

func (g *Generator) stageParse(ctx context.Context, logger *zap.Logger, raw string) ([]schema.Schema, error) {
	_, span := g.tracer.Start(ctx, "pipeline.parse")
	defer span.End()
	defer g.observeStage("parse", time.Now())

	candidates, err := schema.ExtractSchemas(raw, g.provider.Name())
	if err != nil {
		logger.Warn("response parse failed",
			zap.String("code", string(llm.CodeOf(err))),
			zap.Int("raw_len", len(raw)),
		)
		if g.collector != nil && llm.CodeOf(err) == llm.ErrParseFailure {
			g.collector.RecordParseFailure(g.provider.Name())
		}
		return nil, err
	}
	return candidates, nil
}

func (g *Generator) stagePostProcess(ctx context.Context, candidates []schema.Schema, analysis types.ContentAnalysis, result *Result) {
	_, span := g.tracer.Start(ctx, "pipeline.postprocess")
	defer span.End()
	defer g.observeStage("postprocess", time.Now())

	for _, candidate := range candidates {
		cleaned := g.cleaner.Clean(candidate)
		enhanced, report := g.engine.Complete(cleaned, analysis)
		validation := g.validator.Validate(enhanced)

		result.Schemas = append(result.Schemas, enhanced)
		result.Reports = append(result.Reports, report)
		result.Validations = append(result.Validations, validation)
	}
}

func (g *Generator) stageEnforce(ctx context.Context, schemas []schema.Schema, opts types.GenerationOptions) []schema.ModeViolation {
	_, span := g.tracer.Start(ctx, "pipeline.enforce")
	defer span.End()

	violations := g.enforcer.Enforce(schemas, opts)
	if g.collector != nil {
		for _, v := range violations {
			g.collector.RecordModeViolation(v.SchemaType)
		}
	}
	return violations
}

func (g *Generator) observeStage(stage string, start time.Time) {
	if g.collector != nil {
		g.collector.ObserveStage(stage, time.Since(start))
	}
}

func (g *Generator) finish(logger *zap.Logger, start time.Time, outcome string) {
	if g.collector != nil {
		g.collector.RecordGeneration(g.provider.Name(), outcome, time.Since(start))
	}
	if outcome != "success" {
		logger.Warn("generation failed", zap.String("outcome", outcome))
	}
}
