package schema

// Template 把一个 @type 的属性按重要度分为三档。
// 不变式：Required 恒包含 @context 与 @type。
// 表在进程启动时加载一次，整个生命周期内只读。
type Template struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    []string `json:"required"`
	Recommended []string `json:"recommended"`
	Advanced    []string `json:"advanced"`
}

var templates = map[string]Template{
	"BlogPosting": {
		Type:        "BlogPosting",
		Description: "A blog post entry with author and publication context.",
		Required:    []string{"@context", "@type", "headline", "author", "datePublished"},
		Recommended: []string{"image", "publisher", "dateModified", "description", "mainEntityOfPage"},
		Advanced:    []string{"wordCount", "keywords", "articleSection", "inLanguage", "speakable"},
	},
	"Article": {
		Type:        "Article",
		Description: "A news, investigative, or general-interest article.",
		Required:    []string{"@context", "@type", "headline", "author", "datePublished"},
		Recommended: []string{"image", "publisher", "dateModified", "description", "mainEntityOfPage"},
		Advanced:    []string{"wordCount", "keywords", "articleSection", "inLanguage", "speakable"},
	},
	"WebPage": {
		Type:        "WebPage",
		Description: "A generic web page.",
		Required:    []string{"@context", "@type", "name", "url"},
		Recommended: []string{"description", "datePublished", "dateModified", "publisher", "breadcrumb"},
		Advanced:    []string{"inLanguage", "lastReviewed", "primaryImageOfPage", "speakable"},
	},
	"Organization": {
		Type:        "Organization",
		Description: "A company, NGO, or other organization.",
		Required:    []string{"@context", "@type", "name", "url"},
		Recommended: []string{"logo", "description", "contactPoint", "sameAs"},
		Advanced:    []string{"address", "foundingDate", "founder", "numberOfEmployees"},
	},
	"LocalBusiness": {
		Type:        "LocalBusiness",
		Description: "A physical business with a local presence.",
		Required:    []string{"@context", "@type", "name", "address"},
		Recommended: []string{"telephone", "url", "openingHours", "geo", "priceRange", "image"},
		Advanced:    []string{"aggregateRating", "review", "sameAs", "hasMap"},
	},
	"FAQPage": {
		Type:        "FAQPage",
		Description: "A page of frequently asked questions and answers.",
		Required:    []string{"@context", "@type", "mainEntity"},
		Recommended: []string{"name", "description"},
		Advanced:    []string{"inLanguage", "datePublished"},
	},
	"BreadcrumbList": {
		Type:        "BreadcrumbList",
		Description: "The navigational breadcrumb trail of a page.",
		Required:    []string{"@context", "@type", "itemListElement"},
		Recommended: []string{"name"},
		Advanced:    []string{"numberOfItems"},
	},
	"ImageObject": {
		Type:        "ImageObject",
		Description: "An image with licensing and attribution metadata.",
		Required:    []string{"@context", "@type", "url"},
		Recommended: []string{"width", "height", "caption", "contentUrl"},
		Advanced:    []string{"license", "creator", "creditText", "copyrightNotice"},
	},
	"Person": {
		Type:        "Person",
		Description: "An individual person such as an author or founder.",
		Required:    []string{"@context", "@type", "name"},
		Recommended: []string{"url", "jobTitle", "image", "sameAs"},
		Advanced:    []string{"worksFor", "alumniOf", "knowsAbout"},
	},
	"VideoObject": {
		Type:        "VideoObject",
		Description: "An embedded or hosted video.",
		Required:    []string{"@context", "@type", "name", "thumbnailUrl", "uploadDate"},
		Recommended: []string{"description", "duration", "contentUrl", "embedUrl"},
		Advanced:    []string{"interactionStatistic", "expires", "regionsAllowed"},
	},
}

// TemplateFor 返回 @type 对应的属性需求表。
func TemplateFor(t string) (Template, bool) {
	tpl, ok := templates[t]
	return tpl, ok
}

// SupportedTypes 返回所有有属性需求表的 @type，顺序稳定。
func SupportedTypes() []string {
	out := make([]string, 0, len(templates))
	for _, t := range []string{
		"BlogPosting", "Article", "WebPage", "Organization", "LocalBusiness",
		"FAQPage", "BreadcrumbList", "ImageObject", "Person", "VideoObject",
	} {
		if _, ok := templates[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
