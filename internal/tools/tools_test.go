package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/artifex/internal/common"
	"github.com/ternarybob/artifex/internal/models"
	"github.com/ternarybob/artifex/internal/services/fetch"
	"github.com/ternarybob/artifex/internal/services/imaging"
	"github.com/ternarybob/artifex/internal/services/pdf"
	"github.com/ternarybob/artifex/internal/services/seo"
	"github.com/ternarybob/artifex/internal/services/transform"
)

type nopProgress struct{}

func (nopProgress) Report(int) error { return nil }

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	cfg := common.NewDefaultConfig()
	return &Deps{
		Fetch:     fetch.NewService(cfg, nil),
		Imaging:   imaging.NewService(nil),
		Renderer:  pdf.NewRenderer(nil),
		PDFOps:    pdf.NewOps(nil),
		Transform: transform.NewService(nil),
		SEO:       seo.NewService(nil),
	}
}

func newToolRequest(t *testing.T, tool string) *models.ToolRequest {
	t.Helper()
	return &models.ToolRequest{
		JobID:     "job_test",
		ToolName:  tool,
		Options:   map[string]string{},
		OutputDir: t.TempDir(),
	}
}

func TestWordCounter(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "word_counter")
	req.Text = "one two three\n\nfour five"

	result, err := deps.wordCounter(context.Background(), req, nopProgress{})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Data["words"])
	assert.Equal(t, 2, result.Data["paragraphs"])
	assert.Equal(t, 3, result.Data["lines"])
	assert.Empty(t, result.OutputPath)
}

func TestWordCounter_NoInput(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "word_counter")

	_, err := deps.wordCounter(context.Background(), req, nopProgress{})
	var invalidErr *models.InvalidInputError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestCaseConverter(t *testing.T) {
	deps := newTestDeps(t)

	tests := []struct {
		mode     string
		input    string
		expected string
	}{
		{"upper", "hello world", "HELLO WORLD"},
		{"lower", "HELLO World", "hello world"},
		{"title", "hello world", "Hello World"},
		{"sentence", "hello. world again", "Hello. World again"},
		{"snake", "Hello World Again", "hello_world_again"},
		{"kebab", "Hello World", "hello-world"},
	}

	for _, tt := range tests {
		req := newToolRequest(t, "case_converter")
		req.Text = tt.input
		req.Options["case"] = tt.mode

		result, err := deps.caseConverter(context.Background(), req, nopProgress{})
		require.NoError(t, err, "mode %s", tt.mode)
		assert.Equal(t, tt.expected, result.Data["text"], "mode %s", tt.mode)
		assert.FileExists(t, result.OutputPath)
	}
}

func TestCaseConverter_UnknownMode(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "case_converter")
	req.Text = "x"
	req.Options["case"] = "mixed"

	_, err := deps.caseConverter(context.Background(), req, nopProgress{})
	var invalidErr *models.InvalidInputError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestTextDiff(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "text_diff")
	req.Options["text_a"] = "alpha\nbeta\ngamma"
	req.Options["text_b"] = "alpha\ngamma\ndelta"

	result, err := deps.textDiff(context.Background(), req, nopProgress{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Data["added_lines"])
	assert.Equal(t, 1, result.Data["removed_lines"])

	diff, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(diff), "- beta")
	assert.Contains(t, string(diff), "+ delta")
	assert.Contains(t, string(diff), "  alpha")
}

func TestJSONFormatter_Pretty(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "json_formatter")
	req.Text = `{"b":1,"a":[1,2]}`

	result, err := deps.jsonFormatter(context.Background(), req, nopProgress{})
	require.NoError(t, err)

	formatted, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(formatted), "\n  \"b\": 1")
}

func TestJSONFormatter_Compact(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "json_formatter")
	req.Text = "{\n  \"a\": 1\n}"
	req.Options["mode"] = "compact"

	result, err := deps.jsonFormatter(context.Background(), req, nopProgress{})
	require.NoError(t, err)

	formatted, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(formatted))
}

func TestJSONFormatter_InvalidJSON(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "json_formatter")
	req.Text = "{not json"

	_, err := deps.jsonFormatter(context.Background(), req, nopProgress{})
	var invalidErr *models.InvalidInputError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestCSVJSONConverter(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "csv_json_converter")
	req.Text = "name,age\nalice,30\nbob,25"

	result, err := deps.csvJSONConverter(context.Background(), req, nopProgress{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Data["rows"])
	assert.Equal(t, 2, result.Data["columns"])

	payload, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(payload, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, "25", rows[1]["age"])
}

func TestCSVJSONConverter_ReadsUploadedFile(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "csv_json_converter")

	inputPath := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte("id\n1\n2\n3"), 0644))
	req.InputPath = inputPath
	req.InputPaths = []string{inputPath}

	result, err := deps.csvJSONConverter(context.Background(), req, nopProgress{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Data["rows"])
}

func TestMarkdownPDFConverter(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "markdown_pdf_converter")
	req.Text = "# Title\n\nSome *styled* body text.\n\n- item one\n- item two\n"

	result, err := deps.markdownPDFConverter(context.Background(), req, nopProgress{})
	require.NoError(t, err)
	assert.Equal(t, "job_test_document.pdf", result.Filename)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestTextPDFConverter(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "text_pdf_converter")
	req.Text = "plain text content\nwith two lines"

	result, err := deps.textPDFConverter(context.Background(), req, nopProgress{})
	require.NoError(t, err)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestPDFMerger_RequiresTwoFiles(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "pdf_merger")
	req.InputPaths = []string{"one.pdf"}

	_, err := deps.pdfMerger(context.Background(), req, nopProgress{})
	var invalidErr *models.InvalidInputError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestPDFPageExtractor_RequiresPages(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "pdf_page_extractor")

	inputPath := filepath.Join(t.TempDir(), "input.pdf")
	require.NoError(t, os.WriteFile(inputPath, []byte("%PDF-1.4"), 0644))
	req.InputPath = inputPath

	_, err := deps.pdfPageExtractor(context.Background(), req, nopProgress{})
	var invalidErr *models.InvalidInputError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestSEOMetaExtractor_InlineHTML(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "seo_meta_extractor")
	req.Text = `<html><head><title>Testing Page Title</title>` +
		`<meta name="description" content="A page description for testing."></head>` +
		`<body><h1>Heading</h1></body></html>`

	result, err := deps.seoMetaExtractor(context.Background(), req, nopProgress{})
	require.NoError(t, err)
	assert.Equal(t, "Testing Page Title", result.Data["title"])
	assert.FileExists(t, result.OutputPath)
}

func TestHTMLMarkdownConverter_InlineHTML(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "html_markdown_converter")
	req.Text = "<h1>Header</h1><p>Body with <strong>bold</strong> text.</p>"

	result, err := deps.htmlMarkdownConverter(context.Background(), req, nopProgress{})
	require.NoError(t, err)

	markdown, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(markdown), "# Header")
	assert.Contains(t, string(markdown), "**bold**")
}

func TestImageFormatConverter(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "image_format_converter")

	png := testPNGFile(t)
	req.InputPath = png
	req.InputPaths = []string{png}
	req.Options["format"] = "jpeg"

	result, err := deps.imageFormatConverter(context.Background(), req, nopProgress{})
	require.NoError(t, err)
	assert.Equal(t, "job_test_converted.jpg", result.Filename)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	info, err := deps.Imaging.Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", info.Format)
}

func TestImageResizer(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "image_resizer")

	png := testPNGFile(t)
	req.InputPath = png
	req.InputPaths = []string{png}
	req.Options["width"] = "10"

	result, err := deps.imageResizer(context.Background(), req, nopProgress{})
	require.NoError(t, err)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	info, err := deps.Imaging.Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, 10, info.Width)
}

func TestImageResizer_RequiresDimension(t *testing.T) {
	deps := newTestDeps(t)
	req := newToolRequest(t, "image_resizer")
	req.InputPath = testPNGFile(t)

	_, err := deps.imageResizer(context.Background(), req, nopProgress{})
	var invalidErr *models.InvalidInputError
	assert.ErrorAs(t, err, &invalidErr)
}

// testPNGFile writes a small PNG to a temp file.
func testPNGFile(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 12), G: uint8(y * 12), B: 90, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "input.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}
