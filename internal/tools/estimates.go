package tools

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultEstimateSeconds is used for any tool without a table entry
const DefaultEstimateSeconds = 10

// defaultEstimates maps tool names to expected processing seconds.
// Informational only, used by clients to pace progress bars and by
// the streaming endpoint to derive its cadence.
var defaultEstimates = map[string]int{
	"pdf_word_converter":     10,
	"pdf_excel_converter":    15,
	"word_pdf_converter":     8,
	"excel_pdf_converter":    8,
	"pdf_merger":             5,
	"pdf_splitter":           3,
	"pdf_editor":             20,
	"pdf_compressor":         12,
	"pdf_ocr":                25,
	"pdf_form_filler":        15,
	"pdf_image_converter":    8,
	"image_pdf_converter":    6,
	"pdf_watermark":          7,
	"pdf_password":           3,
	"pdf_metadata_editor":    2,
	"pdf_page_extractor":     4,
	"pdf_text_extractor":     6,
	"pdf_summary_generator":  20,
	"pdf_page_reorder":       4,
	"markdown_pdf_converter": 6,
	"text_pdf_converter":     5,
	"excel_csv_converter":    3,
	"csv_excel_converter":    3,
	"csv_validator":          5,
	"csv_json_converter":     4,
	"json_formatter":         2,
	"bulk_image_resizer":     12,
	"image_resizer":          6,
	"image_compressor":       8,
	"image_format_converter": 6,
	"image_grayscale":        4,
	"color_palette_extractor": 3,
	"seo_meta_extractor":     8,
	"seo_keyword_density":    8,
	"html_markdown_converter": 6,
	"website_screenshot":     15,
	"github_repo_report":     12,
	"ai_text_generator":      20,
	"ai_summary_generator":   20,
	"word_counter":           2,
	"case_converter":         2,
	"text_diff":              3,
}

// Estimates resolves per-tool processing time estimates with optional
// operator overrides loaded from a YAML file
type Estimates struct {
	mu     sync.RWMutex
	values map[string]int
}

// DefaultEstimates returns the built-in estimate table
func DefaultEstimates() *Estimates {
	values := make(map[string]int, len(defaultEstimates))
	for k, v := range defaultEstimates {
		values[k] = v
	}
	return &Estimates{values: values}
}

// LoadOverrides merges per-tool overrides from a YAML file mapping
// tool name to seconds. Non-positive values are ignored.
func (e *Estimates) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read estimates file %s: %w", path, err)
	}

	overrides := map[string]int{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse estimates file %s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for name, seconds := range overrides {
		if seconds > 0 {
			e.values[name] = seconds
		}
	}

	return nil
}

// Seconds returns the estimate for a tool, falling back to
// DefaultEstimateSeconds for unlisted tools
func (e *Estimates) Seconds(toolName string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if seconds, ok := e.values[toolName]; ok {
		return seconds
	}
	return DefaultEstimateSeconds
}
