package types

// ContentAnalysis 是上游抓取器产出的不可变页面分析记录。
// 管线只读消费：任何阶段都不得修改其中的字段。
// URL 等字段在上游已完成字段级清洗，这里不再重复校验。
type ContentAnalysis struct {
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Content     string          `json:"content"`
	Metadata    ContentMetadata `json:"metadata"`
}

// ContentMetadata 是抓取器附带的元数据包。
// 字段缺失表示抓取器未能验证该信息，补全引擎不得凭空推断。
type ContentMetadata struct {
	Author        string        `json:"author,omitempty"`
	DatePublished string        `json:"date_published,omitempty"` // ISO 8601
	DateModified  string        `json:"date_modified,omitempty"`  // ISO 8601
	Images        []string      `json:"images,omitempty"`
	Videos        []VideoInfo   `json:"videos,omitempty"`
	Business      *BusinessInfo `json:"business,omitempty"`
	FAQs          []FAQItem     `json:"faqs,omitempty"`
	Sections      []Section     `json:"sections,omitempty"`
	WordCount     int           `json:"word_count,omitempty"`
	Language      string        `json:"language,omitempty"`
	ExistingTypes []string      `json:"existing_types,omitempty"` // 页面已有 JSON-LD 的 @type
}

// Section 是抓取器切分出的内容段落。HighValue 标记结构化列表、
// FAQ 块等高价值段落，内容预算器优先保留它们。
type Section struct {
	Heading   string `json:"heading,omitempty"`
	Text      string `json:"text"`
	HighValue bool   `json:"high_value,omitempty"`
}

// FAQItem 是抓取器识别出的一组问答。
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// VideoInfo 描述页面内嵌视频的已验证元数据。
type VideoInfo struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ContentURL   string `json:"content_url,omitempty"`
	UploadDate   string `json:"upload_date,omitempty"`
}

// BusinessInfo 是已验证的组织/商户信息，publisher 等属性只能由它派生。
type BusinessInfo struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// HasVerifiedAuthor 报告作者信息是否已被抓取器验证。
func (m ContentMetadata) HasVerifiedAuthor() bool { return m.Author != "" }

// HasVerifiedBusiness 报告组织信息是否已被抓取器验证。
func (m ContentMetadata) HasVerifiedBusiness() bool {
	return m.Business != nil && m.Business.Name != ""
}
