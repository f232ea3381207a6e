package offline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/schemaforge/llm"
	"github.com/BaSui01/schemaforge/schema"
)

func TestGenerate_BuildsFromPromptFields(t *testing.T) {
	p := New()
	assert.True(t, p.Available())

	out, err := p.Generate(context.Background(), &llm.GenerateRequest{
		User: "URL: https://example.com/page\nTitle: Example Page\nDescription: A page.\n\nContent:\nbody",
	})
	require.NoError(t, err)

	// 输出走代码围栏，顺带覆盖解析器的围栏分支
	schemas, err := schema.ExtractSchemas(out, p.Name())
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, "WebPage", schemas[0].Type())
	assert.Equal(t, "Example Page", schemas[0]["name"])
	assert.Equal(t, "https://example.com/page", schemas[0]["url"])
	assert.Equal(t, "A page.", schemas[0]["description"])
}

func TestGenerate_Deterministic(t *testing.T) {
	p := New()
	req := &llm.GenerateRequest{User: "Title: Same\n"}

	a, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_MissingFields(t *testing.T) {
	p := New()
	out, err := p.Generate(context.Background(), &llm.GenerateRequest{User: "no labels here"})
	require.NoError(t, err)

	schemas, err := schema.ExtractSchemas(out, p.Name())
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, "WebPage", schemas[0].Type())
	assert.NotContains(t, schemas[0], "name")
}
