package tools

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

var wordSplitRe = regexp.MustCompile(`\S+`)

func (d *Deps) wordCounter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	text, err := textInput(req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(50)

	words := len(wordSplitRe.FindAllString(text, -1))
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}
	paragraphs := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}

	return &models.JobResult{
		Data: map[string]interface{}{
			"words":      words,
			"characters": len([]rune(text)),
			"lines":      lines,
			"paragraphs": paragraphs,
		},
	}, nil
}

func (d *Deps) caseConverter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	text, err := textInput(req)
	if err != nil {
		return nil, err
	}

	mode := req.Option("case", "upper")

	_ = progress.Report(30)

	var converted string
	switch mode {
	case "upper":
		converted = strings.ToUpper(text)
	case "lower":
		converted = strings.ToLower(text)
	case "title":
		converted = titleCase(text)
	case "sentence":
		converted = sentenceCase(text)
	case "snake":
		converted = delimitedCase(text, '_')
	case "kebab":
		converted = delimitedCase(text, '-')
	default:
		return nil, models.NewInvalidInputError("unsupported case %q: use upper, lower, title, sentence, snake, or kebab", mode)
	}

	_ = progress.Report(80)

	result, err := writeArtifact(req, "converted.txt", []byte(converted))
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"case": mode,
		"text": converted,
	}
	return result, nil
}

func (d *Deps) textDiff(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	left, right, err := diffInputs(req)
	if err != nil {
		return nil, err
	}

	_ = progress.Report(30)

	diff, added, removed := diffLines(strings.Split(left, "\n"), strings.Split(right, "\n"))

	_ = progress.Report(80)

	result, err := writeArtifact(req, "diff.txt", []byte(diff))
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"added_lines":   added,
		"removed_lines": removed,
	}
	return result, nil
}

func (d *Deps) jsonFormatter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	text, err := textInput(req)
	if err != nil {
		return nil, err
	}

	if !json.Valid([]byte(text)) {
		return nil, models.NewInvalidInputError("input is not valid JSON")
	}

	_ = progress.Report(40)

	var buf bytes.Buffer
	mode := req.Option("mode", "pretty")
	switch mode {
	case "pretty":
		indent := req.Option("indent", "  ")
		if err := json.Indent(&buf, []byte(text), "", indent); err != nil {
			return nil, fmt.Errorf("failed to format JSON: %w", err)
		}
	case "compact":
		if err := json.Compact(&buf, []byte(text)); err != nil {
			return nil, fmt.Errorf("failed to compact JSON: %w", err)
		}
	default:
		return nil, models.NewInvalidInputError("unsupported mode %q: use pretty or compact", mode)
	}

	_ = progress.Report(80)

	return writeArtifact(req, "formatted.json", buf.Bytes())
}

func (d *Deps) csvJSONConverter(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	text, err := textInput(req)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, models.NewInvalidInputError("failed to read CSV header: %v", err)
	}

	_ = progress.Report(30)

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, models.NewInvalidInputError("failed to parse CSV: %v", err)
		}

		row := make(map[string]string, len(header))
		for i, field := range record {
			key := fmt.Sprintf("column_%d", i+1)
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				key = strings.TrimSpace(header[i])
			}
			row[key] = field
		}
		rows = append(rows, row)
	}

	_ = progress.Report(70)

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	result, err := writeArtifact(req, "converted.json", payload)
	if err != nil {
		return nil, err
	}
	result.Data = map[string]interface{}{
		"rows":    len(rows),
		"columns": len(header),
	}
	return result, nil
}

// diffInputs resolves the two texts being compared: two uploaded files,
// or the text_a/text_b options.
func diffInputs(req *models.ToolRequest) (string, string, error) {
	if len(req.InputPaths) >= 2 {
		left, err := os.ReadFile(req.InputPaths[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read first file: %w", err)
		}
		right, err := os.ReadFile(req.InputPaths[1])
		if err != nil {
			return "", "", fmt.Errorf("failed to read second file: %w", err)
		}
		return string(left), string(right), nil
	}

	left := req.Option("text_a", "")
	right := req.Option("text_b", "")
	if left == "" && right == "" {
		return "", "", models.NewInvalidInputError("text_diff requires two uploaded files or text_a/text_b options")
	}
	return left, right, nil
}

// diffLines produces a unified-style line diff via a longest common
// subsequence table. Quadratic, acceptable for the document sizes the
// upload cap allows.
func diffLines(left, right []string) (string, int, int) {
	lcs := make([][]int, len(left)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(right)+1)
	}
	for i := len(left) - 1; i >= 0; i-- {
		for j := len(right) - 1; j >= 0; j-- {
			if left[i] == right[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var b strings.Builder
	var added, removed int
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch {
		case left[i] == right[j]:
			fmt.Fprintf(&b, "  %s\n", left[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			fmt.Fprintf(&b, "- %s\n", left[i])
			removed++
			i++
		default:
			fmt.Fprintf(&b, "+ %s\n", right[j])
			added++
			j++
		}
	}
	for ; i < len(left); i++ {
		fmt.Fprintf(&b, "- %s\n", left[i])
		removed++
	}
	for ; j < len(right); j++ {
		fmt.Fprintf(&b, "+ %s\n", right[j])
		added++
	}

	return b.String(), added, removed
}

func titleCase(text string) string {
	prevLetter := false
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			if !prevLetter {
				prevLetter = true
				return unicode.ToUpper(r)
			}
			return unicode.ToLower(r)
		}
		prevLetter = false
		return r
	}, text)
}

func sentenceCase(text string) string {
	runes := []rune(strings.ToLower(text))
	capitalizeNext := true
	for i, r := range runes {
		if capitalizeNext && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			capitalizeNext = false
			continue
		}
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			capitalizeNext = true
		}
	}
	return string(runes)
}

func delimitedCase(text string, sep rune) string {
	words := wordSplitRe.FindAllString(strings.ToLower(text), -1)
	cleaned := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			cleaned = append(cleaned, word)
		}
	}
	return strings.Join(cleaned, string(sep))
}
