// -----------------------------------------------------------------------
// PDF Operations - merge, split, watermark, page extraction
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

// Ops wraps the pdfcpu operations used by the PDF tool handlers
type Ops struct {
	conf   *model.Configuration
	logger arbor.ILogger
}

// NewOps creates a PDF operations service with relaxed validation so
// slightly malformed user uploads still process where possible
func NewOps(logger arbor.ILogger) *Ops {
	if logger == nil {
		logger = common.GetLogger()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Ops{
		conf:   conf,
		logger: logger,
	}
}

// Validate checks that a file is a readable PDF
func (o *Ops) Validate(inputPath string) error {
	if err := api.ValidateFile(inputPath, o.conf); err != nil {
		return fmt.Errorf("invalid PDF %s: %w", filepath.Base(inputPath), err)
	}
	return nil
}

// PageCount returns the number of pages in a PDF
func (o *Ops) PageCount(inputPath string) (int, error) {
	ctx, err := api.ReadContextFile(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF %s: %w", filepath.Base(inputPath), err)
	}
	return ctx.PageCount, nil
}

// Merge concatenates the input PDFs into a single output file,
// preserving input order
func (o *Ops) Merge(inputPaths []string, outputPath string) error {
	if len(inputPaths) < 2 {
		return fmt.Errorf("merge requires at least 2 input files, got %d", len(inputPaths))
	}

	for _, path := range inputPaths {
		if err := o.Validate(path); err != nil {
			return err
		}
	}

	if err := api.MergeCreateFile(inputPaths, outputPath, false, o.conf); err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	o.logger.Debug().
		Int("inputs", len(inputPaths)).
		Str("output", filepath.Base(outputPath)).
		Msg("Merged PDFs")

	return nil
}

// Split writes one PDF per span pages into outputDir and returns the
// generated file paths in page order. A span of 1 produces one file
// per page.
func (o *Ops) Split(inputPath, outputDir string, span int) ([]string, error) {
	if span < 1 {
		span = 1
	}
	if err := o.Validate(inputPath); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create split output dir: %w", err)
	}

	if err := api.SplitFile(inputPath, outputDir, span, o.conf); err != nil {
		return nil, fmt.Errorf("split failed: %w", err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list split output: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(outputDir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("split produced no output files")
	}

	return paths, nil
}

// Watermark stamps the given text diagonally on every page
func (o *Ops) Watermark(inputPath, outputPath, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("watermark text is required")
	}
	if err := o.Validate(inputPath); err != nil {
		return err
	}

	desc := "font:Helvetica, points:48, scale:0.5, opacity:0.4, rot:45"
	if err := api.AddTextWatermarksFile(inputPath, outputPath, nil, true, text, desc, o.conf); err != nil {
		return fmt.Errorf("watermark failed: %w", err)
	}

	return nil
}

// ExtractPages writes a new PDF containing only the selected pages.
// Pages use pdfcpu selection syntax, e.g. "1-3" or "2,5".
func (o *Ops) ExtractPages(inputPath, outputPath string, pages []string) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages selected")
	}
	if err := o.Validate(inputPath); err != nil {
		return err
	}

	if err := api.TrimFile(inputPath, outputPath, pages, o.conf); err != nil {
		return fmt.Errorf("page extraction failed: %w", err)
	}

	return nil
}

// ExtractText extracts page content text from a PDF. pdfcpu extracts
// raw content streams, so the output is best-effort plain text.
func (o *Ops) ExtractText(inputPath string) (string, error) {
	pageCount, err := o.PageCount(inputPath)
	if err != nil {
		return "", err
	}

	outDir, err := os.MkdirTemp("", "artifex-extract-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(inputPath, outDir, nil, o.conf); err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("failed to list extracted content: %w", err)
	}

	pageTexts := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(entry.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if pageNum > 1 {
			builder.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", pageNum))
		}
		builder.WriteString(pageTexts[pageNum])
	}

	return builder.String(), nil
}
