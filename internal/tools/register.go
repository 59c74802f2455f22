package tools

import (
	"github.com/ternarybob/artifex/internal/models"
)

// RegisterAll registers every built-in tool on the registry and seals
// it. Estimated durations are stamped from the registry's estimate
// table during registration.
func RegisterAll(reg *Registry, deps *Deps) {
	// PDF tools
	reg.Register(models.Tool{
		Name:           "pdf_merger",
		Category:       models.CategoryPDF,
		Description:    "Merge two or more PDF files into one document",
		RequiresUpload: true,
	}, deps.pdfMerger)
	reg.Register(models.Tool{
		Name:           "pdf_splitter",
		Category:       models.CategoryPDF,
		Description:    "Split a PDF into parts of N pages, delivered as a zip archive",
		RequiresUpload: true,
	}, deps.pdfSplitter)
	reg.Register(models.Tool{
		Name:           "pdf_watermark",
		Category:       models.CategoryPDF,
		Description:    "Stamp a diagonal text watermark on every page",
		RequiresUpload: true,
	}, deps.pdfWatermark)
	reg.Register(models.Tool{
		Name:           "pdf_page_extractor",
		Category:       models.CategoryPDF,
		Description:    "Extract a page selection into a new PDF",
		RequiresUpload: true,
	}, deps.pdfPageExtractor)
	reg.Register(models.Tool{
		Name:           "pdf_text_extractor",
		Category:       models.CategoryPDF,
		Description:    "Extract plain text content from a PDF",
		RequiresUpload: true,
	}, deps.pdfTextExtractor)
	reg.Register(models.Tool{
		Name:        "markdown_pdf_converter",
		Category:    models.CategoryPDF,
		Description: "Render markdown as a formatted PDF document",
	}, deps.markdownPDFConverter)
	reg.Register(models.Tool{
		Name:        "text_pdf_converter",
		Category:    models.CategoryPDF,
		Description: "Render plain text as a PDF document",
	}, deps.textPDFConverter)

	// SEO and web tools
	reg.Register(models.Tool{
		Name:        "seo_meta_extractor",
		Category:    models.CategorySEO,
		Description: "Extract meta tags, headings, and SEO warnings from a page",
	}, deps.seoMetaExtractor)
	reg.Register(models.Tool{
		Name:        "seo_keyword_density",
		Category:    models.CategorySEO,
		Description: "Rank the most frequent keywords on a page",
	}, deps.seoKeywordDensity)
	reg.Register(models.Tool{
		Name:        "html_markdown_converter",
		Category:    models.CategoryWeb,
		Description: "Convert HTML to markdown",
	}, deps.htmlMarkdownConverter)
	reg.Register(models.Tool{
		Name:        "website_screenshot",
		Category:    models.CategoryWeb,
		Description: "Capture a PNG screenshot of a web page",
	}, deps.websiteScreenshot)
	reg.Register(models.Tool{
		Name:        "github_repo_report",
		Category:    models.CategoryWeb,
		Description: "Generate a markdown or PDF report for a GitHub repository",
	}, deps.githubRepoReport)

	// Image tools
	reg.Register(models.Tool{
		Name:           "image_format_converter",
		Category:       models.CategoryImage,
		Description:    "Convert an image between png, jpeg, and gif",
		RequiresUpload: true,
	}, deps.imageFormatConverter)
	reg.Register(models.Tool{
		Name:           "image_resizer",
		Category:       models.CategoryImage,
		Description:    "Resize an image, preserving aspect ratio when one dimension is given",
		RequiresUpload: true,
	}, deps.imageResizer)
	reg.Register(models.Tool{
		Name:           "image_grayscale",
		Category:       models.CategoryImage,
		Description:    "Convert an image to grayscale",
		RequiresUpload: true,
	}, deps.imageGrayscale)

	// Text and data tools
	reg.Register(models.Tool{
		Name:        "word_counter",
		Category:    models.CategoryText,
		Description: "Count words, characters, lines, and paragraphs",
	}, deps.wordCounter)
	reg.Register(models.Tool{
		Name:        "case_converter",
		Category:    models.CategoryText,
		Description: "Convert text between upper, lower, title, sentence, snake, and kebab case",
	}, deps.caseConverter)
	reg.Register(models.Tool{
		Name:        "text_diff",
		Category:    models.CategoryText,
		Description: "Produce a line diff of two texts",
	}, deps.textDiff)
	reg.Register(models.Tool{
		Name:        "json_formatter",
		Category:    models.CategoryData,
		Description: "Pretty-print or compact JSON",
	}, deps.jsonFormatter)
	reg.Register(models.Tool{
		Name:        "csv_json_converter",
		Category:    models.CategoryData,
		Description: "Convert CSV with a header row into a JSON array",
	}, deps.csvJSONConverter)

	// AI tools
	reg.Register(models.Tool{
		Name:        "ai_text_generator",
		Category:    models.CategoryAI,
		Description: "Generate text from a prompt with the configured AI provider",
	}, deps.aiTextGenerator)
	reg.Register(models.Tool{
		Name:        "ai_summary_generator",
		Category:    models.CategoryAI,
		Description: "Summarize text or a PDF with the configured AI provider",
	}, deps.aiSummaryGenerator)

	reg.Seal()
}
