package models

// ToolCategory groups tools for the catalog endpoint
type ToolCategory string

const (
	CategoryPDF   ToolCategory = "pdf"
	CategorySEO   ToolCategory = "seo"
	CategoryImage ToolCategory = "image"
	CategoryText  ToolCategory = "text"
	CategoryData  ToolCategory = "data"
	CategoryWeb   ToolCategory = "web"
	CategoryAI    ToolCategory = "ai"
)

// Tool describes a registered conversion tool. Name is the exact
// registry key clients pass to the process endpoint.
type Tool struct {
	Name             string       `json:"name"`
	Category         ToolCategory `json:"category"`
	Description      string       `json:"description"`
	EstimatedSeconds int          `json:"estimated_seconds"`
	RequiresUpload   bool         `json:"requires_upload"`
}

// ToolRequest carries the validated inputs of a process request into a
// tool handler. InputPaths holds uploaded file paths in upload order;
// InputPath is a convenience alias for the first entry.
type ToolRequest struct {
	JobID      string
	ToolName   string
	InputPath  string
	InputPaths []string
	Text       string
	URL        string
	Options    map[string]string
	OutputDir  string
}

// Option returns a named option value or the given default when the
// option is absent or empty.
func (r *ToolRequest) Option(name, fallback string) string {
	if r.Options == nil {
		return fallback
	}
	if v, ok := r.Options[name]; ok && v != "" {
		return v
	}
	return fallback
}
