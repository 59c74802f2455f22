package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

func (d *Deps) seoMetaExtractor(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	html, baseURL, err := htmlInput(ctx, d.Fetch, req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(40)

	report, err := d.SEO.ExtractMeta(html, baseURL)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	result, err := writeArtifact(req, "seo_report.json", payload)
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"title":    report.Title,
		"warnings": report.Warnings,
	}
	return result, nil
}

func (d *Deps) seoKeywordDensity(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	html, _, err := htmlInput(ctx, d.Fetch, req)
	if err != nil {
		return nil, err
	}

	topN, err := strconv.Atoi(req.Option("top", "20"))
	if err != nil || topN < 1 {
		return nil, models.NewInvalidInputError("top must be a positive integer")
	}

	_ = progress.Report(40)

	keywords, totalWords, err := d.SEO.KeywordDensity(html, topN)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	payload, err := json.MarshalIndent(map[string]interface{}{
		"total_words": totalWords,
		"keywords":    keywords,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	result, err := writeArtifact(req, "keyword_density.json", payload)
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"total_words": totalWords,
		"keywords":    len(keywords),
	}
	return result, nil
}

func (d *Deps) htmlMarkdownConverter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	html, baseURL, err := htmlInput(ctx, d.Fetch, req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(40)

	markdown, err := d.Transform.HTMLToMarkdown(string(html), baseURL)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(80)

	return writeArtifact(req, "converted.md", []byte(markdown))
}

func (d *Deps) websiteScreenshot(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	if req.URL == "" {
		return nil, models.NewInvalidInputError("website_screenshot requires a url")
	}
	if err := d.Fetch.ValidateURL(req.URL); err != nil {
		return nil, models.NewInvalidInputError("invalid url: %v", err)
	}

	fullPage := req.Option("full_page", "false") == "true"

	_ = progress.Report(10)

	data, err := d.Capture.Screenshot(ctx, req.URL, fullPage)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(90)

	result, err := writeArtifact(req, "screenshot.png", data)
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"url":       req.URL,
		"full_page": fullPage,
	}
	return result, nil
}
