package schema

import "fmt"

// Severity 是校验条目的严重级别。
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationEntry 是一条校验结论。
type ValidationEntry struct {
	Property string   `json:"property"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult 汇总一个 schema 的校验结论。
// IsCompliant 当且仅当不存在 error 级条目。
type ValidationResult struct {
	SchemaType  string            `json:"schema_type"`
	Entries     []ValidationEntry `json:"entries,omitempty"`
	IsCompliant bool              `json:"is_compliant"`
}

// 这些属性的值必须是对象（或对象数组）；裸标量视为结构错误。
var objectValuedProps = map[string]bool{
	"author":          true,
	"publisher":       true,
	"mainEntity":      true,
	"itemListElement": true,
	"acceptedAnswer":  true,
}

// Validator 对补全后的 schema 做 Schema.org 结构校验。
type Validator struct{}

// NewValidator 创建校验器。
func NewValidator() *Validator { return &Validator{} }

// Validate 按规则产出有序的校验条目：
// 缺失 required → error；缺失 recommended → warning；
// 未知 @type → warning；对象属性给成裸标量 → error。
func (v *Validator) Validate(s Schema) ValidationResult {
	result := ValidationResult{SchemaType: s.Type()}

	if s.Type() == "" {
		result.add("@type", "missing @type declaration", SeverityError)
		result.IsCompliant = false
		return result
	}

	tpl, known := TemplateFor(s.Type())
	if !known {
		result.add("@type", fmt.Sprintf("unrecognized type %q, may not validate externally", s.Type()), SeverityWarning)
	} else {
		for _, prop := range tpl.Required {
			if !s.Has(prop) {
				result.add(prop, fmt.Sprintf("missing required property %q", prop), SeverityError)
			}
		}
		for _, prop := range tpl.Recommended {
			if !s.Has(prop) {
				result.add(prop, fmt.Sprintf("missing recommended property %q", prop), SeverityWarning)
			}
		}
	}

	v.checkShapes(s, &result)

	result.IsCompliant = true
	for _, e := range result.Entries {
		if e.Severity == SeverityError {
			result.IsCompliant = false
			break
		}
	}
	return result
}

// checkShapes 递归检查对象属性的嵌套形态。
func (v *Validator) checkShapes(node map[string]any, result *ValidationResult) {
	for key, val := range node {
		switch typed := val.(type) {
		case map[string]any:
			v.checkShapes(typed, result)
		case []any:
			for _, item := range typed {
				if m, ok := item.(map[string]any); ok {
					v.checkShapes(m, result)
				} else if objectValuedProps[key] {
					result.add(key, fmt.Sprintf("property %q expects object values, got scalar", key), SeverityError)
				}
			}
		default:
			if objectValuedProps[key] {
				result.add(key, fmt.Sprintf("property %q expects an object, got scalar", key), SeverityError)
			}
		}
	}
}

func (r *ValidationResult) add(prop, msg string, sev Severity) {
	r.Entries = append(r.Entries, ValidationEntry{Property: prop, Message: msg, Severity: sev})
}
