package schema

import (
	"go.uber.org/zap"

	"github.com/BaSui01/schemaforge/types"
)

// CompletenessReport 记录一个 schema 的属性补全结果：
// 哪些属性被确定性填充、哪些因无已验证来源而被省略。
// 省略不是错误——编造才是。
type CompletenessReport struct {
	SchemaType         string   `json:"schema_type"`
	Filled             []string `json:"filled,omitempty"`
	Omitted            []string `json:"omitted,omitempty"`
	MissingRequired    []string `json:"missing_required,omitempty"`
	MissingRecommended []string `json:"missing_recommended,omitempty"`
	MissingAdvanced    []string `json:"missing_advanced,omitempty"`
}

// Engine 按属性需求表补全 schema 的缺失属性。
//
// 核心不变式：缺失属性只有在能从 ContentAnalysis 中已验证的
// 元数据确定性派生时才被填充；否则省略并记录。本引擎绝不合成
// 听起来合理的名字、日期或描述。
type Engine struct {
	logger *zap.Logger
}

// NewEngine 创建补全引擎。
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Complete 返回补全后的 schema 与完整性报告；输入不被修改。
// 只尝试补全 required 与 recommended 两档；advanced 仅报告缺失。
func (e *Engine) Complete(s Schema, analysis types.ContentAnalysis) (Schema, CompletenessReport) {
	out := s.Clone()
	report := CompletenessReport{SchemaType: out.Type()}

	tpl, known := TemplateFor(out.Type())
	if !known {
		// 未知类型没有需求表：只保证 @context 存在，其余不动。
		if !out.Has("@context") {
			out["@context"] = "https://schema.org"
			report.Filled = append(report.Filled, "@context")
		}
		return out, report
	}

	kind := out.Kind()
	for _, prop := range tpl.Required {
		e.fillOrRecord(out, &report, prop, kind, analysis, &report.MissingRequired)
	}
	for _, prop := range tpl.Recommended {
		e.fillOrRecord(out, &report, prop, kind, analysis, &report.MissingRecommended)
	}
	for _, prop := range tpl.Advanced {
		if !out.Has(prop) {
			report.MissingAdvanced = append(report.MissingAdvanced, prop)
		}
	}

	if len(report.Filled) > 0 || len(report.Omitted) > 0 {
		e.logger.Debug("property completion",
			zap.String("type", report.SchemaType),
			zap.Strings("filled", report.Filled),
			zap.Strings("omitted", report.Omitted),
		)
	}
	return out, report
}

func (e *Engine) fillOrRecord(out Schema, report *CompletenessReport, prop string, kind Kind, analysis types.ContentAnalysis, missing *[]string) {
	if out.Has(prop) {
		return
	}
	if v, ok := derive(prop, kind, analysis); ok {
		out[prop] = v
		report.Filled = append(report.Filled, prop)
		return
	}
	report.Omitted = append(report.Omitted, prop)
	*missing = append(*missing, prop)
}

// derive 尝试从已验证的分析数据确定性地派生属性值。
// 返回 ok=false 表示无可信来源，调用方必须省略该属性。
func derive(prop string, kind Kind, analysis types.ContentAnalysis) (any, bool) {
	meta := analysis.Metadata

	switch prop {
	case "@context":
		return "https://schema.org", true

	case "headline", "name":
		if kind == KindPerson || kind == KindOrganization || kind == KindLocalBusiness {
			// 人名/机构名不能用页面标题顶替。
			if kind != KindPerson && meta.HasVerifiedBusiness() {
				return meta.Business.Name, true
			}
			return nil, false
		}
		if analysis.Title != "" {
			return analysis.Title, true
		}

	case "description":
		if analysis.Description != "" {
			return analysis.Description, true
		}

	case "url", "mainEntityOfPage":
		if analysis.URL != "" {
			return analysis.URL, true
		}

	case "image", "primaryImageOfPage":
		if len(meta.Images) > 0 {
			return map[string]any{"@type": "ImageObject", "url": meta.Images[0]}, true
		}

	case "datePublished":
		if meta.DatePublished != "" {
			return meta.DatePublished, true
		}

	case "dateModified":
		if meta.DateModified != "" {
			return meta.DateModified, true
		}

	case "author":
		if meta.HasVerifiedAuthor() {
			return map[string]any{"@type": "Person", "name": meta.Author}, true
		}

	case "publisher":
		if meta.HasVerifiedBusiness() {
			pub := map[string]any{"@type": "Organization", "name": meta.Business.Name}
			if meta.Business.LogoURL != "" {
				pub["logo"] = map[string]any{"@type": "ImageObject", "url": meta.Business.LogoURL}
			}
			if meta.Business.URL != "" {
				pub["url"] = meta.Business.URL
			}
			return pub, true
		}

	case "logo":
		if meta.HasVerifiedBusiness() && meta.Business.LogoURL != "" {
			return map[string]any{"@type": "ImageObject", "url": meta.Business.LogoURL}, true
		}

	case "telephone":
		if meta.HasVerifiedBusiness() && meta.Business.Phone != "" {
			return meta.Business.Phone, true
		}

	case "address":
		if meta.HasVerifiedBusiness() && meta.Business.Address != "" {
			return meta.Business.Address, true
		}

	case "inLanguage":
		if meta.Language != "" {
			return meta.Language, true
		}

	case "wordCount":
		if meta.WordCount > 0 {
			return meta.WordCount, true
		}

	case "mainEntity":
		if kind == KindFAQPage && len(meta.FAQs) > 0 {
			items := make([]any, 0, len(meta.FAQs))
			for _, faq := range meta.FAQs {
				items = append(items, map[string]any{
					"@type": "Question",
					"name":  faq.Question,
					"acceptedAnswer": map[string]any{
						"@type": "Answer",
						"text":  faq.Answer,
					},
				})
			}
			return items, true
		}

	case "thumbnailUrl":
		if kind == KindVideoObject && len(meta.Videos) > 0 && meta.Videos[0].ThumbnailURL != "" {
			return meta.Videos[0].ThumbnailURL, true
		}

	case "uploadDate":
		if kind == KindVideoObject && len(meta.Videos) > 0 && meta.Videos[0].UploadDate != "" {
			return meta.Videos[0].UploadDate, true
		}

	case "contentUrl":
		if kind == KindVideoObject && len(meta.Videos) > 0 && meta.Videos[0].ContentURL != "" {
			return meta.Videos[0].ContentURL, true
		}
	}

	return nil, false
}
