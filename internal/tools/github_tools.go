package tools

import (
	"context"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
	gh "github.com/ternarybob/artifex/internal/services/github"
)

func (d *Deps) githubRepoReport(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	repoInput := req.URL
	if repoInput == "" {
		repoInput = req.Option("repo", "")
	}

	owner, repo, err := gh.ParseRepo(repoInput)
	if err != nil {
		return nil, models.NewInvalidInputError("invalid repository: %v", err)
	}

	_ = progress.Report(10)

	report, err := d.GitHub.Report(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(60)

	format := req.Option("format", "md")
	switch format {
	case "md":
		result, err := writeArtifact(req, "repo_report.md", []byte(report))
		if err != nil {
			return nil, err
		}
		result.Data = map[string]interface{}{
			"repo": owner + "/" + repo,
		}
		return result, nil
	case "pdf":
		data, err := d.Renderer.MarkdownToPDF(report, owner+"/"+repo)
		if err != nil {
			return nil, err
		}
		_ = progress.Report(90)
		result, err := writeArtifact(req, "repo_report.pdf", data)
		if err != nil {
			return nil, err
		}
		result.Data = map[string]interface{}{
			"repo": owner + "/" + repo,
		}
		return result, nil
	default:
		return nil, models.NewInvalidInputError("unsupported format %q: use md or pdf", format)
	}
}
