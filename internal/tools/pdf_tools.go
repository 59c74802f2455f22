package tools

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

func (d *Deps) pdfMerger(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	if len(req.InputPaths) < 2 {
		return nil, models.NewInvalidInputError("pdf_merger requires at least two uploaded files, got %d", len(req.InputPaths))
	}

	_ = progress.Report(10)

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := artifactName(req.JobID, "merged.pdf")
	outputPath := filepath.Join(req.OutputDir, filename)
	if err := d.PDFOps.Merge(req.InputPaths, outputPath); err != nil {
		return nil, err
	}

	_ = progress.Report(90)

	return &models.JobResult{
		OutputPath: outputPath,
		Filename:   filename,
		Data: map[string]interface{}{
			"merged_files": len(req.InputPaths),
		},
	}, nil
}

func (d *Deps) pdfSplitter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	inputPath, err := requireUpload(req)
	if err != nil {
		return nil, err
	}

	span, err := strconv.Atoi(req.Option("pages_per_file", "1"))
	if err != nil || span < 1 {
		return nil, models.NewInvalidInputError("pages_per_file must be a positive integer")
	}

	_ = progress.Report(10)

	splitDir, err := os.MkdirTemp("", "artifex-split-")
	if err != nil {
		return nil, fmt.Errorf("failed to create split directory: %w", err)
	}
	defer os.RemoveAll(splitDir)

	parts, err := d.PDFOps.Split(inputPath, splitDir, span)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(60)

	archive, err := zipFiles(parts)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(90)

	result, err := writeArtifact(req, "split.zip", archive)
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"part_count":     len(parts),
		"pages_per_file": span,
	}
	return result, nil
}

func (d *Deps) pdfWatermark(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	inputPath, err := requireUpload(req)
	if err != nil {
		return nil, err
	}

	text := req.Option("text", "CONFIDENTIAL")

	_ = progress.Report(10)

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := artifactName(req.JobID, "watermarked.pdf")
	outputPath := filepath.Join(req.OutputDir, filename)
	if err := d.PDFOps.Watermark(inputPath, outputPath, text); err != nil {
		return nil, err
	}

	_ = progress.Report(90)

	return &models.JobResult{
		OutputPath: outputPath,
		Filename:   filename,
	}, nil
}

func (d *Deps) pdfPageExtractor(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	inputPath, err := requireUpload(req)
	if err != nil {
		return nil, err
	}

	pagesOption := req.Option("pages", "")
	if pagesOption == "" {
		return nil, models.NewInvalidInputError("pdf_page_extractor requires a pages option, e.g. pages=1-3,5")
	}

	pages := strings.Split(pagesOption, ",")
	for i := range pages {
		pages[i] = strings.TrimSpace(pages[i])
	}

	_ = progress.Report(10)

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := artifactName(req.JobID, "pages.pdf")
	outputPath := filepath.Join(req.OutputDir, filename)
	if err := d.PDFOps.ExtractPages(inputPath, outputPath, pages); err != nil {
		return nil, err
	}

	_ = progress.Report(90)

	return &models.JobResult{
		OutputPath: outputPath,
		Filename:   filename,
		Data: map[string]interface{}{
			"pages": pagesOption,
		},
	}, nil
}

func (d *Deps) pdfTextExtractor(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	inputPath, err := requireUpload(req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(10)

	text, err := d.PDFOps.ExtractText(inputPath)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	result, err := writeArtifact(req, "extracted.txt", []byte(text))
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"characters": len(text),
	}
	return result, nil
}

func (d *Deps) markdownPDFConverter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	markdown, err := textInput(req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(20)

	title := req.Option("title", "Document")
	data, err := d.Renderer.MarkdownToPDF(markdown, title)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	return writeArtifact(req, "document.pdf", data)
}

func (d *Deps) textPDFConverter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	content, err := textInput(req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(20)

	title := req.Option("title", "Document")
	data, err := d.Renderer.TextToPDF(content, title)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	return writeArtifact(req, "document.pdf", data)
}

// zipFiles packs the given files into a single in-memory zip archive.
func zipFiles(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		w, err := zw.Create(filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", path, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
