package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-classifier/pkg/registry"
)

func TestNew_CollectsVariables(t *testing.T) {
	tpl, err := New("{topic} and {journal}, again {topic}")
	require.NoError(t, err)
	assert.Equal(t, []string{"journal", "topic"}, tpl.Variables())

	_, err = New("   ")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	def, err := registry.Builtin().Find("journal-category")
	require.NoError(t, err)

	tpl, err := New(def.PromptTemplate)
	require.NoError(t, err)
	tpl = tpl.Partial(VarFormatInstructions, "FORMAT")

	out, err := tpl.Render(map[string]string{VarJournal: "Journal of {Braces} & Co"})
	require.NoError(t, err)
	assert.Contains(t, out, "<format_instructions>\nFORMAT\n</format_instructions>")
	assert.Contains(t, out, "into a category.\n\nJournal of {Braces} & Co\n</query>")
}

func TestRender_Missing(t *testing.T) {
	tpl, err := New("{format_instructions} {topic} {journal}")
	require.NoError(t, err)

	_, err = tpl.Render(map[string]string{VarJournal: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format_instructions, topic")
}

func TestPartial_DoesNotMutateOriginal(t *testing.T) {
	base, err := New("{topic}")
	require.NoError(t, err)
	bound := base.Partial(VarTopic, "IBD")

	out, err := bound.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "IBD", out)

	_, err = base.Render(nil)
	assert.Error(t, err)
}
