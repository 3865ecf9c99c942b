package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownConverter_Convert(t *testing.T) {
	t.Parallel()

	pages, err := Render(fixtureModule())
	require.NoError(t, err)

	conv := NewMarkdownConverter()
	out, err := conv.Convert(pages[0])
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# Plot Tools")
	assert.Contains(t, text, "(plot_tools.Point.md)")
	assert.NotContains(t, text, ".html")
	assert.NotContains(t, text, "navbar.js")
	assert.Equal(t, "plot_tools.md", conv.Filename(pages[0]))
}
