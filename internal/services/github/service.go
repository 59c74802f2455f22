package github

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"

	"github.com/ternarybob/artifex/internal/common"
)

// Service generates repository reports from the GitHub API. Without a
// token it still works for public repositories, at the anonymous rate
// limit.
type Service struct {
	client *github.Client
	logger arbor.ILogger
}

// NewService creates a GitHub report service. A token from config
// raises the API rate limit and grants access to private repositories.
func NewService(cfg *common.Config, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}

	var client *github.Client
	if cfg.GitHub.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.GitHub.Token},
		)
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	} else {
		client = github.NewClient(nil)
	}

	return &Service{
		client: client,
		logger: logger.WithPrefix("github"),
	}
}

// ParseRepo extracts owner and repository name from "owner/repo" or a
// github.com URL.
func ParseRepo(input string) (owner, repo string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", fmt.Errorf("repository cannot be empty")
	}

	if strings.Contains(input, "://") {
		u, parseErr := url.Parse(input)
		if parseErr != nil {
			return "", "", fmt.Errorf("invalid repository URL: %w", parseErr)
		}
		if !strings.EqualFold(u.Host, "github.com") && !strings.EqualFold(u.Host, "www.github.com") {
			return "", "", fmt.Errorf("unsupported repository host: %s", u.Host)
		}
		input = strings.Trim(u.Path, "/")
	}

	parts := strings.Split(input, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in owner/repo form: %s", input)
	}

	repo = strings.TrimSuffix(parts[1], ".git")
	return parts[0], repo, nil
}

// Report summarizes a repository as a markdown document: metadata,
// language breakdown, top contributors, and recent commits.
func (s *Service) Report(ctx context.Context, owner, repo string) (string, error) {
	repository, _, err := s.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to fetch repository %s/%s: %w", owner, repo, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Repository Report: %s\n\n", repository.GetFullName())
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Overview\n\n")
	if desc := repository.GetDescription(); desc != "" {
		fmt.Fprintf(&b, "%s\n\n", desc)
	}
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Stars | %d |\n", repository.GetStargazersCount())
	fmt.Fprintf(&b, "| Forks | %d |\n", repository.GetForksCount())
	fmt.Fprintf(&b, "| Open issues | %d |\n", repository.GetOpenIssuesCount())
	fmt.Fprintf(&b, "| Default branch | %s |\n", repository.GetDefaultBranch())
	if license := repository.GetLicense(); license != nil {
		fmt.Fprintf(&b, "| License | %s |\n", license.GetName())
	}
	fmt.Fprintf(&b, "| Created | %s |\n", repository.GetCreatedAt().Format("2006-01-02"))
	fmt.Fprintf(&b, "| Last push | %s |\n", repository.GetPushedAt().Format("2006-01-02"))
	if repository.GetArchived() {
		b.WriteString("| Archived | yes |\n")
	}
	b.WriteString("\n")

	if topics := repository.Topics; len(topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n\n", strings.Join(topics, ", "))
	}

	s.writeLanguages(ctx, &b, owner, repo)
	s.writeContributors(ctx, &b, owner, repo)
	s.writeRecentCommits(ctx, &b, owner, repo, repository.GetDefaultBranch())

	s.logger.Info().
		Str("repo", repository.GetFullName()).
		Msg("Generated repository report")

	return b.String(), nil
}

func (s *Service) writeLanguages(ctx context.Context, b *strings.Builder, owner, repo string) {
	languages, _, err := s.client.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list repository languages")
		return
	}
	if len(languages) == 0 {
		return
	}

	type langShare struct {
		name  string
		bytes int
	}
	shares := make([]langShare, 0, len(languages))
	total := 0
	for name, count := range languages {
		shares = append(shares, langShare{name: name, bytes: count})
		total += count
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].bytes != shares[j].bytes {
			return shares[i].bytes > shares[j].bytes
		}
		return shares[i].name < shares[j].name
	})

	b.WriteString("## Languages\n\n")
	for _, share := range shares {
		percent := float64(share.bytes) * 100 / float64(total)
		fmt.Fprintf(b, "- %s: %.1f%%\n", share.name, percent)
	}
	b.WriteString("\n")
}

func (s *Service) writeContributors(ctx context.Context, b *strings.Builder, owner, repo string) {
	contributors, _, err := s.client.Repositories.ListContributors(ctx, owner, repo, &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: 10},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list contributors")
		return
	}
	if len(contributors) == 0 {
		return
	}

	b.WriteString("## Top Contributors\n\n")
	for _, contributor := range contributors {
		fmt.Fprintf(b, "- %s (%d commits)\n", contributor.GetLogin(), contributor.GetContributions())
	}
	b.WriteString("\n")
}

func (s *Service) writeRecentCommits(ctx context.Context, b *strings.Builder, owner, repo, branch string) {
	commits, _, err := s.client.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{PerPage: 10},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list recent commits")
		return
	}
	if len(commits) == 0 {
		return
	}

	b.WriteString("## Recent Commits\n\n")
	for _, commit := range commits {
		message := commit.GetCommit().GetMessage()
		if idx := strings.IndexByte(message, '\n'); idx >= 0 {
			message = message[:idx]
		}
		sha := commit.GetSHA()
		if len(sha) > 7 {
			sha = sha[:7]
		}
		author := commit.GetCommit().GetAuthor().GetName()
		date := commit.GetCommit().GetAuthor().GetDate().Format("2006-01-02")
		fmt.Fprintf(b, "- `%s` %s (%s, %s)\n", sha, message, author, date)
	}
	b.WriteString("\n")
}
