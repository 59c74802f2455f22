package transform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

// Service converts HTML content to markdown for the conversion tools
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new transform service
func NewService(logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		logger: logger,
	}
}

// HTMLToMarkdown converts HTML content to markdown. baseURL resolves
// relative links. When conversion fails or produces empty output, a
// tag-stripping fallback keeps the tool usable on messy input.
func (s *Service) HTMLToMarkdown(html string, baseURL string) (string, error) {
	if html == "" {
		return "", nil
	}

	s.logger.Debug().
		Int("html_length", len(html)).
		Str("base_url", baseURL).
		Msg("Converting HTML to markdown")

	converted, err := newConverter(baseURL).ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		return stripHTMLTags(html), nil
	}

	if strings.TrimSpace(converted) == "" {
		s.logger.Warn().
			Int("html_length", len(html)).
			Msg("HTML to markdown conversion produced empty output, applying fallback")
		return stripHTMLTags(html), nil
	}

	return converted, nil
}

// newConverter builds a markdown converter that resolves relative
// links against the full base URL. The converter's domain parameter
// only accepts a bare host and defaults the scheme to http, so the
// base's scheme would be lost without the resolver override.
func newConverter(baseURL string) *md.Converter {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return md.NewConverter(md.DomainFromURL(baseURL), true, nil)
	}

	opts := &md.Options{
		GetAbsoluteURL: func(selec *goquery.Selection, rawURL string, domain string) string {
			ref, err := url.Parse(rawURL)
			if err != nil || ref.Scheme == "data" {
				return rawURL
			}
			return base.ResolveReference(ref).String()
		},
	}
	return md.NewConverter(base.Host, true, opts)
}

// ValidateHTML checks if the input looks like HTML at all
func (s *Service) ValidateHTML(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("empty content")
	}

	if !strings.Contains(trimmed, "<") {
		return fmt.Errorf("content does not appear to be HTML")
	}

	return nil
}

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// stripHTMLTags removes tags and decodes a basic entity set for
// fallback cases. Entities decode before whitespace collapses so a
// literal &nbsp; cannot reintroduce a double space.
func stripHTMLTags(htmlStr string) string {
	stripped := tagRe.ReplaceAllString(htmlStr, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
	)
	decoded := replacer.Replace(stripped)

	return strings.TrimSpace(spaceRe.ReplaceAllString(decoded, " "))
}
