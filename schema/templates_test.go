package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_RequiredAlwaysIncludesContext(t *testing.T) {
	for _, typ := range SupportedTypes() {
		tpl, ok := TemplateFor(typ)
		require.True(t, ok, typ)
		assert.Contains(t, tpl.Required, "@context", typ)
		assert.Contains(t, tpl.Required, "@type", typ)
		assert.Equal(t, typ, tpl.Type)
	}
}

func TestTemplates_TiersDisjoint(t *testing.T) {
	for _, typ := range SupportedTypes() {
		tpl, _ := TemplateFor(typ)
		seen := map[string]string{}
		for tier, props := range map[string][]string{
			"required":    tpl.Required,
			"recommended": tpl.Recommended,
			"advanced":    tpl.Advanced,
		} {
			for _, p := range props {
				prev, dup := seen[p]
				assert.False(t, dup, "%s: %q in both %s and %s", typ, p, prev, tier)
				seen[p] = tier
			}
		}
	}
}

func TestSupportedTypes_StableOrder(t *testing.T) {
	assert.Equal(t, SupportedTypes(), SupportedTypes())
	assert.Len(t, SupportedTypes(), 10)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindBlogPosting, KindOf("BlogPosting"))
	assert.Equal(t, KindGeneric, KindOf("Recipe"))
	assert.Equal(t, KindGeneric, KindOf(""))
}

func TestSchema_Has(t *testing.T) {
	s := Schema{"a": "x", "b": "", "c": nil, "d": 0}
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"), "空字符串视为缺失")
	assert.False(t, s.Has("c"))
	assert.True(t, s.Has("d"), "数值零值仍然算存在")
	assert.False(t, s.Has("missing"))
}

func TestSchema_CloneIsDeep(t *testing.T) {
	s := Schema{
		"@type":  "Article",
		"author": map[string]any{"name": "Jane"},
		"tags":   []any{"a"},
	}
	c := s.Clone()
	c["author"].(map[string]any)["name"] = "Mallory"
	c["tags"].([]any)[0] = "b"

	assert.Equal(t, "Jane", s["author"].(map[string]any)["name"])
	assert.Equal(t, "a", s["tags"].([]any)[0])
}
