package prompt

import (
	"fmt"
	"strings"

	"github.com/BaSui01/schemaforge/schema"
	"github.com/BaSui01/schemaforge/types"
)

// Pair 是一次生成调用的系统/用户提示词。
type Pair struct {
	System string
	User   string
}

// Builder 从 ContentAnalysis 与 GenerationOptions 渲染确定性提示词。
// 系统提示词编码反幻觉契约：只从给定元数据提取、宁缺毋造、
// 只用公认的 @type；用户指定模式下要求只产出请求的类型。
type Builder struct {
	budgeter *Budgeter
}

// NewBuilder 创建构建器。
func NewBuilder(budgeter *Budgeter) *Builder {
	if budgeter == nil {
		budgeter = NewBudgeter(nil, 0)
	}
	return &Builder{budgeter: budgeter}
}

// Build 返回提示词对。纯函数：无 I/O、无随机性。
func (b *Builder) Build(analysis types.ContentAnalysis, opts types.GenerationOptions) Pair {
	return Pair{
		System: b.buildSystem(opts),
		User:   b.buildUser(analysis, opts),
	}
}

func (b *Builder) buildSystem(opts types.GenerationOptions) string {
	var sb strings.Builder
	sb.WriteString("You are a Schema.org structured data expert. ")
	sb.WriteString("Generate JSON-LD schemas strictly from the page data provided by the user.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Extract values ONLY from the provided metadata and content. Never invent names, dates, URLs, or descriptions.\n")
	sb.WriteString("2. If a property's value is not present in the input, OMIT the property entirely.\n")
	sb.WriteString("3. Use only well-established Schema.org @type values (for example: ")
	sb.WriteString(strings.Join(schema.SupportedTypes(), ", "))
	sb.WriteString(").\n")

	if opts.UserSpecificMode() {
		sb.WriteString("4. Emit ONLY schemas of these types: ")
		sb.WriteString(strings.Join(opts.RequestedTypes, ", "))
		sb.WriteString(". Do not add any other type.\n")
	} else {
		sb.WriteString("4. Choose the @type values that best describe the page.\n")
		if opts.IncludeFAQ {
			sb.WriteString("If the page data contains question/answer pairs, include an FAQPage schema for them.\n")
		}
		if opts.IncludeBreadcrumbs {
			sb.WriteString("If the page exposes a breadcrumb trail, include a BreadcrumbList schema for it.\n")
		}
	}

	sb.WriteString("\nRespond with a single JSON object of the form {\"schemas\": [...]} and nothing else.")
	return sb.String()
}

func (b *Builder) buildUser(analysis types.ContentAnalysis, opts types.GenerationOptions) string {
	var sb strings.Builder
	meta := analysis.Metadata

	writeField := func(label, value string) {
		if value != "" {
			sb.WriteString(label)
			sb.WriteString(" ")
			sb.WriteString(value)
			sb.WriteString("\n")
		}
	}

	writeField("URL:", analysis.URL)
	writeField("Title:", analysis.Title)
	writeField("Description:", analysis.Description)
	writeField("Language:", meta.Language)
	writeField("Author:", meta.Author)
	writeField("Published:", meta.DatePublished)
	writeField("Modified:", meta.DateModified)

	if meta.WordCount > 0 {
		sb.WriteString(fmt.Sprintf("Word count: %d\n", meta.WordCount))
		sb.WriteString(fmt.Sprintf("Estimated reading time: %d min\n", readingMinutes(meta.WordCount)))
	}

	if biz := meta.Business; biz != nil && biz.Name != "" {
		writeField("Organization:", biz.Name)
		writeField("Organization URL:", biz.URL)
		writeField("Organization logo:", biz.LogoURL)
		writeField("Organization phone:", biz.Phone)
		writeField("Organization address:", biz.Address)
	}

	if opts.IncludeImages && len(meta.Images) > 0 {
		sb.WriteString("Images:\n")
		for _, img := range meta.Images {
			sb.WriteString("- " + img + "\n")
		}
	}

	if opts.IncludeVideos && len(meta.Videos) > 0 {
		sb.WriteString("Videos:\n")
		for _, v := range meta.Videos {
			sb.WriteString(fmt.Sprintf("- name=%s thumbnail=%s content=%s uploaded=%s\n",
				v.Name, v.ThumbnailURL, v.ContentURL, v.UploadDate))
		}
	}

	if len(meta.ExistingTypes) > 0 {
		// 页面已有结构化数据：提示模型改进而非重复。
		sb.WriteString("Existing structured data on page (improve, do not duplicate): ")
		sb.WriteString(strings.Join(meta.ExistingTypes, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString("\nContent:\n")
	sb.WriteString(b.budgeter.Budget(analysis))
	return sb.String()
}

// readingMinutes 按 200 词/分钟估算阅读时长，最少 1 分钟。
func readingMinutes(wordCount int) int {
	minutes := (wordCount + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
