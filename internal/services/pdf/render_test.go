package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestNewRendererNilLoggerFallsBack(t *testing.T) {
	// MarkdownToPDF logs before rendering; a nil logger must not panic.
	renderer := NewRenderer(nil)

	data, err := renderer.MarkdownToPDF("# Title", "Title")
	require.NoError(t, err)
	assert.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestMarkdownToPDF(t *testing.T) {
	renderer := NewRenderer(arbor.NewLogger())

	markdown := `# Report

Some **bold** and *italic* text with ` + "`code`" + `.

## Details

- first item
- second item

| Name | Value |
|------|-------|
| a    | 1     |
| b    | 2     |
`

	data, err := renderer.MarkdownToPDF(markdown, "Report")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestMarkdownToPDFStripsFrontmatter(t *testing.T) {
	renderer := NewRenderer(arbor.NewLogger())

	markdown := "---\ntitle: hidden\n---\n# Visible\n\nbody text\n"
	data, err := renderer.MarkdownToPDF(markdown, "")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestTextToPDF(t *testing.T) {
	renderer := NewRenderer(arbor.NewLogger())

	data, err := renderer.TextToPDF("line one\n\nline two\n", "notes")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestStripFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no frontmatter", "# Title\nbody", "# Title\nbody"},
		{"with frontmatter", "---\nkey: value\n---\n# Title", "# Title"},
		{"unclosed frontmatter", "---\nkey: value\n# Title", "---\nkey: value\n# Title"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripFrontmatter(tt.input))
		})
	}
}
