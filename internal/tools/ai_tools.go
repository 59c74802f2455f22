package tools

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

func (d *Deps) aiTextGenerator(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	prompt := req.Text
	if prompt == "" {
		prompt = req.Option("prompt", "")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, models.NewInvalidInputError("ai_text_generator requires a prompt")
	}

	_ = progress.Report(10)

	system := req.Option("system", "")
	model := req.Option("model", "")
	generated, err := d.LLM.Generate(ctx, system, prompt, model)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(85)

	result, err := writeArtifact(req, "generated.md", []byte(generated))
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"characters": len(generated),
	}
	return result, nil
}

func (d *Deps) aiSummaryGenerator(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	text, err := d.summaryInput(req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(20)

	style := req.Option("style", "")
	model := req.Option("model", "")
	summary, err := d.LLM.Summarize(ctx, text, style, model)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(85)

	result, err := writeArtifact(req, "summary.md", []byte(summary))
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"source_characters":  len(text),
		"summary_characters": len(summary),
	}
	return result, nil
}

// summaryInput resolves the text being summarized. PDF uploads are run
// through text extraction first.
func (d *Deps) summaryInput(req *models.ToolRequest) (string, error) {
	if req.InputPath != "" && strings.EqualFold(filepath.Ext(req.InputPath), ".pdf") {
		return d.PDFOps.ExtractText(req.InputPath)
	}
	return textInput(req)
}
