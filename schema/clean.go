package schema

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Cleaner 把候选 schema 的所有字符串值清洗为无标记、无实体、
// 空白规整的纯文本，并修复已知的畸形属性形态。
//
// Clean 幂等：clean(clean(x)) == clean(x)。实现顺序保证这一点：
// 先把实体解码到不动点（实体编码的标签还原成真标签），再用 HTML
// 词法器剥掉标签，最后折叠空白。二次清洗时已无可解码实体、
// 无可剥离标签，输出不再变化。
type Cleaner struct{}

// NewCleaner 创建清洗器。
func NewCleaner() *Cleaner { return &Cleaner{} }

var whitespaceRe = regexp.MustCompile(`\s+`)

// 这些 scheme 打头的字符串值视为不安全，属性整体丢弃。
var unsafePrefixes = []string{"javascript:", "vbscript:", "data:text/html"}

// Clean 返回清洗后的副本；输入不被修改。
func (c *Cleaner) Clean(s Schema) Schema {
	out := make(Schema, len(s))
	for k, v := range s {
		cleaned := c.cleanValue(k, v)
		if cleaned == nil {
			continue
		}
		out[k] = cleaned
	}
	return out
}

func (c *Cleaner) cleanValue(key string, v any) any {
	switch val := v.(type) {
	case string:
		cleaned := CleanString(val)
		if cleaned == "" || isUnsafe(cleaned) {
			return nil
		}
		// 裸字符串形式的 image/logo 统一修复为 ImageObject 形态。
		if key == "image" || key == "logo" {
			return map[string]any{"@type": "ImageObject", "url": cleaned}
		}
		return cleaned
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			cleaned := c.cleanValue(k, item)
			if cleaned == nil {
				continue
			}
			out[k] = cleaned
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			cleaned := c.cleanValue(key, item)
			if cleaned == nil {
				continue
			}
			out = append(out, cleaned)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case nil:
		return nil
	default:
		// 数值、布尔等标量原样保留。
		return val
	}
}

// CleanString 清洗单个字符串值：实体解码到不动点 → 剥离标签 →
// 折叠空白。导出供测试与提示词构建复用。
func CleanString(s string) string {
	s = unescapeToFixpoint(s)
	s = stripTags(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// unescapeToFixpoint 反复解码 HTML 实体直到字符串不再变化。
// 上限防住恶意构造的深层嵌套编码。
func unescapeToFixpoint(s string) string {
	for i := 0; i < 8; i++ {
		next := html.UnescapeString(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// stripTags 用 HTML 词法器剥掉标签，只保留文本。
// script/style 的内容整体丢弃。
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var sb strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return sb.String()
		case xhtml.StartTagToken:
			if sb.Len() > 0 {
				// 标签边界视为词边界，避免相邻文本粘连。
				sb.WriteByte(' ')
			}
			name, _ := z.TagName()
			if isContentless(string(name)) {
				skipDepth++
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if isContentless(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case xhtml.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isContentless(tag string) bool {
	return tag == "script" || tag == "style" || tag == "noscript"
}

func isUnsafe(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, p := range unsafePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
