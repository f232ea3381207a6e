package schema

import (
	"go.uber.org/zap"

	"github.com/BaSui01/schemaforge/types"
)

// ModeViolation 记录用户指定模式下模型产出了未请求的 @type。
type ModeViolation struct {
	SchemaType     string   `json:"schema_type"`
	RequestedTypes []string `json:"requested_types"`
}

// Enforcer 在用户指定模式下比对产出类型与请求列表。
//
// 违规只记录、不丢弃：系统宁可交付可用结果并让运维看到提示词
// 遵从度的回退，也不静默吞掉模型输出。
type Enforcer struct {
	logger *zap.Logger
}

// NewEnforcer 创建模式检查器。
func NewEnforcer(logger *zap.Logger) *Enforcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enforcer{logger: logger}
}

// Enforce 返回违规列表；schemas 原样保留，永不过滤。
// 自动检测模式下（请求列表为空）恒为空。
func (e *Enforcer) Enforce(schemas []Schema, opts types.GenerationOptions) []ModeViolation {
	if !opts.UserSpecificMode() {
		return nil
	}

	var violations []ModeViolation
	for _, s := range schemas {
		if opts.TypeRequested(s.Type()) {
			continue
		}
		v := ModeViolation{SchemaType: s.Type(), RequestedTypes: opts.RequestedTypes}
		violations = append(violations, v)
		e.logger.Warn("mode compliance violation: unrequested type emitted",
			zap.String("emitted_type", s.Type()),
			zap.Strings("requested_types", opts.RequestedTypes),
		)
	}
	return violations
}
