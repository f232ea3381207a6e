package types

// GenerationOptions 控制一次生成请求的行为。
type GenerationOptions struct {
	// RequestedTypes 非空时进入用户指定模式：提示词要求模型只产出
	// 这些 @type；为空时进入自动检测模式，由模型自行选择适用类型。
	RequestedTypes []string `json:"requested_types,omitempty"`

	// 功能开关，影响提示词构建的侧重点。
	IncludeImages      bool `json:"include_images,omitempty"`
	IncludeVideos      bool `json:"include_videos,omitempty"`
	IncludeFAQ         bool `json:"include_faq,omitempty"`
	IncludeBreadcrumbs bool `json:"include_breadcrumbs,omitempty"`
}

// UserSpecificMode 报告是否处于用户指定模式。
func (o GenerationOptions) UserSpecificMode() bool { return len(o.RequestedTypes) > 0 }

// TypeRequested 报告 t 是否在请求的类型列表中。
// 自动检测模式下（列表为空）恒为 true。
func (o GenerationOptions) TypeRequested(t string) bool {
	if len(o.RequestedTypes) == 0 {
		return true
	}
	for _, rt := range o.RequestedTypes {
		if rt == t {
			return true
		}
	}
	return false
}
