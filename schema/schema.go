package schema

// Schema 是一个候选/清洗后的 JSON-LD 对象。
// 解析器产出的实例可能畸形、不完整或含有 HTML 污染的字符串值；
// 经过 Cleaner 与 Engine 处理后才是可交付的形态。
type Schema map[string]any

// Type 返回 @type 的字符串值；缺失或非字符串时返回空串。
func (s Schema) Type() string {
	if t, ok := s["@type"].(string); ok {
		return t
	}
	return ""
}

// Has 报告属性是否存在且非空。
func (s Schema) Has(prop string) bool {
	v, ok := s[prop]
	if !ok || v == nil {
		return false
	}
	if str, ok := v.(string); ok {
		return str != ""
	}
	return true
}

// Clone 返回深拷贝，保证各阶段互不污染输入。
func (s Schema) Clone() Schema {
	return Schema(cloneValue(map[string]any(s)).(map[string]any))
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// Kind 是已知 @type 的封闭枚举，未知类型落入 KindGeneric。
type Kind int

const (
	KindGeneric Kind = iota
	KindBlogPosting
	KindArticle
	KindWebPage
	KindOrganization
	KindLocalBusiness
	KindFAQPage
	KindBreadcrumbList
	KindImageObject
	KindPerson
	KindVideoObject
)

var kindNames = map[string]Kind{
	"BlogPosting":    KindBlogPosting,
	"Article":        KindArticle,
	"WebPage":        KindWebPage,
	"Organization":   KindOrganization,
	"LocalBusiness":  KindLocalBusiness,
	"FAQPage":        KindFAQPage,
	"BreadcrumbList": KindBreadcrumbList,
	"ImageObject":    KindImageObject,
	"Person":         KindPerson,
	"VideoObject":    KindVideoObject,
}

// KindOf 把 @type 字符串映射到 Kind。
func KindOf(t string) Kind {
	if k, ok := kindNames[t]; ok {
		return k
	}
	return KindGeneric
}

// Kind 返回 schema 自身 @type 对应的 Kind。
func (s Schema) Kind() Kind { return KindOf(s.Type()) }
