package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestHTMLToMarkdown(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	html := `<h1>Title</h1><p>Some <strong>bold</strong> text and a <a href="/page">link</a>.</p>`
	markdown, err := svc.HTMLToMarkdown(html, "https://example.com")
	require.NoError(t, err)

	assert.Contains(t, markdown, "# Title")
	assert.Contains(t, markdown, "**bold**")
	assert.Contains(t, markdown, "https://example.com/page")
}

func TestHTMLToMarkdownEmptyInput(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	markdown, err := svc.HTMLToMarkdown("", "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, markdown)
}

func TestValidateHTML(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	assert.NoError(t, svc.ValidateHTML("<p>hello</p>"))
	assert.Error(t, svc.ValidateHTML(""))
	assert.Error(t, svc.ValidateHTML("   "))
	assert.Error(t, svc.ValidateHTML("just plain text"))
}

func TestHTMLToMarkdownRelativeLinkResolution(t *testing.T) {
	svc := NewService(nil)

	html := `<p><a href="docs/guide">guide</a> and <a href="https://other.org/x">other</a></p>`
	markdown, err := svc.HTMLToMarkdown(html, "https://example.com/base/")
	require.NoError(t, err)

	// Relative links resolve against the full base URL, scheme intact;
	// absolute links pass through untouched.
	assert.Contains(t, markdown, "https://example.com/base/docs/guide")
	assert.Contains(t, markdown, "https://other.org/x")
	assert.NotContains(t, markdown, "http://https")
}

func TestStripHTMLTags(t *testing.T) {
	result := stripHTMLTags("<div>a &amp; b &lt;c&gt;   &nbsp;d</div>")
	assert.Equal(t, "a & b <c> d", result)

	// Entities decode before whitespace collapses, so encoded spaces
	// cannot survive as doubles.
	assert.Equal(t, "a b", stripHTMLTags("a&nbsp;&nbsp;b"))
}
