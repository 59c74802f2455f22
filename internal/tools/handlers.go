package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/models"
	"github.com/ternarybob/artifex/internal/services/capture"
	"github.com/ternarybob/artifex/internal/services/fetch"
	gh "github.com/ternarybob/artifex/internal/services/github"
	"github.com/ternarybob/artifex/internal/services/imaging"
	"github.com/ternarybob/artifex/internal/services/llm"
	"github.com/ternarybob/artifex/internal/services/pdf"
	"github.com/ternarybob/artifex/internal/services/seo"
	"github.com/ternarybob/artifex/internal/services/transform"
)

// Deps bundles the services the tool handlers delegate to. Every tool
// is always registered; a nil service surfaces as a handler error and
// a failed job, never a registration gap in the catalog.
type Deps struct {
	Fetch     *fetch.Service
	Capture   *capture.Service
	Imaging   *imaging.Service
	Renderer  *pdf.Renderer
	PDFOps    *pdf.Ops
	Transform *transform.Service
	SEO       *seo.Service
	LLM       *llm.Service
	GitHub    *gh.Service
	Logger    arbor.ILogger
}

// artifactName builds the canonical output filename for a job artifact.
func artifactName(jobID, suffix string) string {
	return jobID + "_" + suffix
}

// writeArtifact persists artifact bytes under the request's output
// directory and returns the result pointing at it.
func writeArtifact(req *models.ToolRequest, suffix string, data []byte) (*models.JobResult, error) {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := artifactName(req.JobID, suffix)
	outputPath := filepath.Join(req.OutputDir, filename)
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	return &models.JobResult{
		OutputPath: outputPath,
		Filename:   filename,
	}, nil
}

// requireUpload returns the first uploaded file path or an invalid
// input error.
func requireUpload(req *models.ToolRequest) (string, error) {
	if req.InputPath == "" {
		return "", models.NewInvalidInputError("tool %s requires an uploaded file", req.ToolName)
	}
	return req.InputPath, nil
}

// textInput resolves the working text for a tool: inline text first,
// then the uploaded file's contents.
func textInput(req *models.ToolRequest) (string, error) {
	if req.Text != "" {
		return req.Text, nil
	}
	if req.InputPath != "" {
		data, err := os.ReadFile(req.InputPath)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	return "", models.NewInvalidInputError("tool %s requires text or an uploaded file", req.ToolName)
}

// htmlInput resolves HTML for a tool: a URL is fetched, otherwise
// inline text or an uploaded file supplies the markup. The second
// return value is the base URL for resolving relative links, empty
// when the input did not come from the network.
func htmlInput(ctx context.Context, fetcher *fetch.Service, req *models.ToolRequest) ([]byte, string, error) {
	if req.URL != "" {
		if err := fetcher.ValidateURL(req.URL); err != nil {
			return nil, "", models.NewInvalidInputError("invalid url: %v", err)
		}
		body, _, err := fetcher.Get(ctx, req.URL)
		if err != nil {
			return nil, "", err
		}
		return body, req.URL, nil
	}

	text, err := textInput(req)
	if err != nil {
		return nil, "", err
	}
	return []byte(text), "", nil
}
