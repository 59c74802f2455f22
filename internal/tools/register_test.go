package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/artifex/internal/models"
)

func TestRegisterAll(t *testing.T) {
	reg := NewRegistry(DefaultEstimates(), nil)
	RegisterAll(reg, newTestDeps(t))

	expected := []string{
		"pdf_merger",
		"pdf_splitter",
		"pdf_watermark",
		"pdf_page_extractor",
		"pdf_text_extractor",
		"markdown_pdf_converter",
		"text_pdf_converter",
		"seo_meta_extractor",
		"seo_keyword_density",
		"html_markdown_converter",
		"website_screenshot",
		"github_repo_report",
		"image_format_converter",
		"image_resizer",
		"image_grayscale",
		"word_counter",
		"case_converter",
		"text_diff",
		"json_formatter",
		"csv_json_converter",
		"ai_text_generator",
		"ai_summary_generator",
	}

	for _, name := range expected {
		handler, tool, err := reg.Resolve(name)
		require.NoError(t, err, "tool %s", name)
		assert.NotNil(t, handler, "tool %s", name)
		assert.Positive(t, tool.EstimatedSeconds, "tool %s", name)
	}

	assert.Len(t, reg.List(), len(expected))

	// Registry is sealed after registration.
	assert.Panics(t, func() {
		reg.Register(models.Tool{Name: "late_tool", Category: models.CategoryText}, noopHandler)
	})
}

func TestRegisterAll_EstimatesStamped(t *testing.T) {
	reg := NewRegistry(DefaultEstimates(), nil)
	RegisterAll(reg, newTestDeps(t))

	_, tool, err := reg.Resolve("pdf_merger")
	require.NoError(t, err)
	assert.Equal(t, 5, tool.EstimatedSeconds)

	_, tool, err = reg.Resolve("website_screenshot")
	require.NoError(t, err)
	assert.Equal(t, 15, tool.EstimatedSeconds)
}
