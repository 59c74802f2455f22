package seo

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

// MetaReport holds the SEO-relevant metadata extracted from a page
type MetaReport struct {
	URL            string            `json:"url"`
	Title          string            `json:"title"`
	TitleLength    int               `json:"title_length"`
	Description    string            `json:"description"`
	DescLength     int               `json:"description_length"`
	Keywords       string            `json:"keywords"`
	Canonical      string            `json:"canonical"`
	Robots         string            `json:"robots"`
	Language       string            `json:"language"`
	H1Count        int               `json:"h1_count"`
	H1Text         []string          `json:"h1_text"`
	OpenGraph      map[string]string `json:"open_graph"`
	TwitterCard    map[string]string `json:"twitter_card"`
	ImagesMissingAlt int             `json:"images_missing_alt"`
	Warnings       []string          `json:"warnings"`
}

// KeywordCount is one entry of a keyword density report
type KeywordCount struct {
	Word    string  `json:"word"`
	Count   int     `json:"count"`
	Density float64 `json:"density"` // percent of total words
}

// Service extracts SEO metadata and keyword statistics from HTML
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new SEO analysis service
func NewService(logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		logger: logger,
	}
}

// ExtractMeta parses a page and reports its SEO metadata along with
// warnings for common problems (missing description, multiple H1s,
// out-of-range title length)
func (s *Service) ExtractMeta(html []byte, pageURL string) (*MetaReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	report := &MetaReport{
		URL:         pageURL,
		OpenGraph:   map[string]string{},
		TwitterCard: map[string]string{},
	}

	report.Title = strings.TrimSpace(doc.Find("title").First().Text())
	report.TitleLength = len(report.Title)

	if description, exists := doc.Find("meta[name='description']").Attr("content"); exists {
		report.Description = strings.TrimSpace(description)
	}
	report.DescLength = len(report.Description)

	if keywords, exists := doc.Find("meta[name='keywords']").Attr("content"); exists {
		report.Keywords = strings.TrimSpace(keywords)
	}
	if canonical, exists := doc.Find("link[rel='canonical']").Attr("href"); exists {
		report.Canonical = strings.TrimSpace(canonical)
	}
	if robots, exists := doc.Find("meta[name='robots']").Attr("content"); exists {
		report.Robots = strings.TrimSpace(robots)
	}
	if lang, exists := doc.Find("html").Attr("lang"); exists {
		report.Language = strings.TrimSpace(lang)
	}

	doc.Find("h1").Each(func(i int, sel *goquery.Selection) {
		report.H1Count++
		if text := strings.TrimSpace(sel.Text()); text != "" {
			report.H1Text = append(report.H1Text, text)
		}
	})

	doc.Find("meta[property^='og:']").Each(func(i int, sel *goquery.Selection) {
		property, _ := sel.Attr("property")
		if content, exists := sel.Attr("content"); exists {
			report.OpenGraph[strings.TrimPrefix(property, "og:")] = strings.TrimSpace(content)
		}
	})

	doc.Find("meta[name^='twitter:']").Each(func(i int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		if content, exists := sel.Attr("content"); exists {
			report.TwitterCard[strings.TrimPrefix(name, "twitter:")] = strings.TrimSpace(content)
		}
	})

	doc.Find("img").Each(func(i int, sel *goquery.Selection) {
		if alt, exists := sel.Attr("alt"); !exists || strings.TrimSpace(alt) == "" {
			report.ImagesMissingAlt++
		}
	})

	report.Warnings = buildWarnings(report)

	s.logger.Debug().
		Str("url", pageURL).
		Str("title", report.Title).
		Int("warnings", len(report.Warnings)).
		Msg("Extracted SEO metadata")

	return report, nil
}

func buildWarnings(report *MetaReport) []string {
	var warnings []string

	switch {
	case report.Title == "":
		warnings = append(warnings, "missing <title>")
	case report.TitleLength > 60:
		warnings = append(warnings, "title longer than 60 characters")
	case report.TitleLength < 10:
		warnings = append(warnings, "title shorter than 10 characters")
	}

	switch {
	case report.Description == "":
		warnings = append(warnings, "missing meta description")
	case report.DescLength > 160:
		warnings = append(warnings, "meta description longer than 160 characters")
	}

	if report.H1Count == 0 {
		warnings = append(warnings, "no <h1> heading")
	} else if report.H1Count > 1 {
		warnings = append(warnings, fmt.Sprintf("%d <h1> headings, expected 1", report.H1Count))
	}

	if report.Canonical == "" {
		warnings = append(warnings, "missing canonical link")
	}
	if report.ImagesMissingAlt > 0 {
		warnings = append(warnings, fmt.Sprintf("%d images missing alt text", report.ImagesMissingAlt))
	}

	return warnings
}

var wordRe = regexp.MustCompile(`[a-zA-Z][a-zA-Z'-]+`)

// stopwords excluded from keyword density counts
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "has": {}, "was": {}, "with": {},
	"this": {}, "that": {}, "have": {}, "from": {}, "they": {}, "will": {},
	"your": {}, "what": {}, "when": {}, "there": {}, "their": {}, "more": {},
	"about": {}, "which": {}, "into": {}, "than": {}, "them": {}, "then": {},
	"its": {}, "our": {}, "out": {}, "also": {}, "been": {}, "were": {},
}

// KeywordDensity tokenizes the visible body text and returns the top
// keywords by occurrence with their density percentage
func (s *Service) KeywordDensity(html []byte, topN int) ([]KeywordCount, int, error) {
	if topN <= 0 {
		topN = 20
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer").Remove()

	body := doc.Find("body")
	text := body.Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	counts := map[string]int{}
	total := 0
	for _, word := range wordRe.FindAllString(text, -1) {
		word = strings.ToLower(word)
		if len(word) < 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		counts[word]++
		total++
	}

	result := make([]KeywordCount, 0, len(counts))
	for word, count := range counts {
		density := 0.0
		if total > 0 {
			density = float64(count) / float64(total) * 100
		}
		result = append(result, KeywordCount{Word: word, Count: count, Density: density})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Word < result[j].Word
	})

	if len(result) > topN {
		result = result[:topN]
	}

	return result, total, nil
}
