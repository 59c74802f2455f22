package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Renderer converts markdown or plain text into PDF documents
type Renderer struct {
	logger arbor.ILogger
}

// NewRenderer creates a new PDF renderer
func NewRenderer(logger arbor.ILogger) *Renderer {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Renderer{
		logger: logger,
	}
}

// MarkdownToPDF converts markdown content to a PDF byte slice.
// YAML frontmatter at the start of the content is stripped so
// metadata blocks never leak into the rendered document.
func (r *Renderer) MarkdownToPDF(markdown, title string) ([]byte, error) {
	r.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Converting markdown to PDF")

	markdown = stripFrontmatter(markdown)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	walker := &mdWalker{
		pdf:    pdf,
		source: source,
		font:   "Arial",
		size:   9,
	}

	if err := ast.Walk(doc, walker.walk); err != nil {
		r.logger.Error().Err(err).Msg("Failed to render markdown")
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	r.logger.Debug().Int("pdf_size", buf.Len()).Msg("PDF generated")
	return buf.Bytes(), nil
}

// TextToPDF renders plain text as a simple paragraph-per-line PDF
func (r *Renderer) TextToPDF(content, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.AddPage()
	pdf.SetFont("Arial", "", 10)

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 5, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

// mdWalker renders a goldmark AST into an fpdf document
type mdWalker struct {
	pdf       *fpdf.Fpdf
	source    []byte
	font      string
	size      float64
	bold      bool
	italic    bool
	inList    bool
	listLevel int
}

func (w *mdWalker) updateFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(w.font, style, w.size)
}

func (w *mdWalker) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return w.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			w.pdf.Ln(7)
		}
	case ast.KindText:
		if entering {
			w.pdf.Write(5, string(n.(*ast.Text).Text(w.source)))
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.updateFont()
	case ast.KindCodeSpan:
		return w.handleCodeSpan(n.(*ast.CodeSpan), entering)
	case ast.KindFencedCodeBlock:
		if entering {
			w.renderCodeBlock(n.(*ast.FencedCodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindCodeBlock:
		if entering {
			w.renderCodeBlock(n.(*ast.CodeBlock).Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindList:
		if entering {
			w.inList = true
			w.listLevel++
		} else {
			w.listLevel--
			if w.listLevel == 0 {
				w.inList = false
				w.pdf.Ln(2)
			}
		}
	case ast.KindListItem:
		if entering {
			// New line before the bullet so items never overlap
			w.pdf.Ln(5)
			indent := float64(w.listLevel) * 5.0
			w.pdf.SetX(15 + indent)
			w.pdf.Write(5, "- ")
		}
	case ast.KindThematicBreak:
		if entering {
			w.pdf.Ln(2)
			w.pdf.Line(15, w.pdf.GetY(), 195, w.pdf.GetY())
			w.pdf.Ln(2)
		}
	case extast.KindTable:
		return w.handleTable(n.(*extast.Table), entering)
	}
	return ast.WalkContinue, nil
}

func (w *mdWalker) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.pdf.Ln(6)
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		}
		w.pdf.SetFont(w.font, "B", size)
	} else {
		w.pdf.Ln(6)
		w.updateFont()
	}
	return ast.WalkContinue, nil
}

func (w *mdWalker) handleCodeSpan(n *ast.CodeSpan, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.pdf.SetFont("Courier", "", 10)
		// CodeSpan is inline, pull text from its children
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if textNode, ok := c.(*ast.Text); ok {
				w.pdf.Write(5, string(textNode.Segment.Value(w.source)))
			}
		}
	} else {
		w.updateFont()
	}
	return ast.WalkSkipChildren, nil
}

func (w *mdWalker) renderCodeBlock(lines *text.Segments) {
	w.pdf.Ln(2)
	w.pdf.SetFont("Courier", "", 9)
	w.pdf.SetFillColor(245, 245, 245)

	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		w.pdf.MultiCell(0, 5, string(line.Value(w.source)), "", "L", true)
	}

	w.pdf.SetFillColor(255, 255, 255)
	w.updateFont()
	w.pdf.Ln(2)
}

func (w *mdWalker) handleTable(n *extast.Table, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var rows [][]string
	var findRows func(node ast.Node)
	findRows = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if tr, ok := child.(*extast.TableRow); ok {
				rows = append(rows, w.extractRow(tr))
			} else if _, ok := child.(*extast.TableHeader); ok {
				findRows(child)
			}
		}
	}
	findRows(n)

	w.renderTable(rows)
	return ast.WalkSkipChildren, nil
}

func (w *mdWalker) extractRow(n *extast.TableRow) []string {
	var row []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			row = append(row, string(cell.Text(w.source)))
		}
	}
	return row
}

// renderTable draws a bordered table with content-measured column
// widths scaled to the printable page width
func (w *mdWalker) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	pageWidth := 180.0
	numCols := len(rows[0])
	fontSize := 8.0
	lineHeight := 4.0

	colWidths := w.tableColumnWidths(rows, numCols, pageWidth, fontSize)

	w.pdf.Ln(2)
	for i, row := range rows {
		if i == 0 {
			w.pdf.SetFont(w.font, "B", fontSize)
			w.pdf.SetFillColor(230, 230, 230)
		} else {
			w.pdf.SetFont(w.font, "", fontSize)
			w.pdf.SetFillColor(255, 255, 255)
		}

		rowHeight := lineHeight + 2
		startY := w.pdf.GetY()
		startX := w.pdf.GetX()

		// Page break guard, A4 height minus bottom margin
		if startY+rowHeight > 297.0-15.0 {
			w.pdf.AddPage()
			startY = w.pdf.GetY()
		}

		x := startX
		for j, cell := range row {
			if j >= numCols {
				break
			}
			if i == 0 {
				w.pdf.Rect(x, startY, colWidths[j], rowHeight, "FD")
			} else {
				w.pdf.Rect(x, startY, colWidths[j], rowHeight, "D")
			}
			w.pdf.SetXY(x+1, startY+1)
			w.pdf.CellFormat(colWidths[j]-2, lineHeight, w.truncateToWidth(cell, colWidths[j]-2), "", 0, "L", false, 0, "")
			x += colWidths[j]
		}

		w.pdf.SetXY(startX, startY+rowHeight)
	}

	w.pdf.Ln(3)
	w.updateFont()
}

func (w *mdWalker) tableColumnWidths(rows [][]string, numCols int, pageWidth, fontSize float64) []float64 {
	colWidths := make([]float64, numCols)
	w.pdf.SetFont(w.font, "", fontSize)

	for _, row := range rows {
		for i, cell := range row {
			if i < numCols {
				if width := w.pdf.GetStringWidth(cell) + 4; width > colWidths[i] {
					colWidths[i] = width
				}
			}
		}
	}

	minWidth := 12.0
	maxWidth := pageWidth / 3.0
	total := 0.0
	for i := range colWidths {
		if colWidths[i] < minWidth {
			colWidths[i] = minWidth
		}
		if colWidths[i] > maxWidth {
			colWidths[i] = maxWidth
		}
		total += colWidths[i]
	}

	if total > pageWidth {
		scale := pageWidth / total
		for i := range colWidths {
			colWidths[i] *= scale
		}
	}

	return colWidths
}

func (w *mdWalker) truncateToWidth(text string, width float64) string {
	if w.pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 3 && w.pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}

// stripFrontmatter removes YAML frontmatter delimited by --- at the
// start of the content
func stripFrontmatter(markdown string) string {
	if !strings.HasPrefix(markdown, "---\n") {
		return markdown
	}

	endIdx := strings.Index(markdown[4:], "\n---\n")
	if endIdx == -1 {
		return markdown
	}

	return strings.TrimSpace(markdown[4+endIdx+5:])
}
