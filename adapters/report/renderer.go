package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fam450/domain/sampling"
	"fam450/ports"
)

const documentTitle = "FAM 450 allowed deviations"

// Format selects the renderer output
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Renderer builds a Markdown report of tables and search results; the HTML format converts
// that Markdown with gomarkdown.
type Renderer struct {
	format Format
}

var _ ports.TableExporter = (*Renderer)(nil)

// NewMarkdownRenderer renders GitHub-style Markdown
func NewMarkdownRenderer() *Renderer {
	return &Renderer{format: FormatMarkdown}
}

// NewHTMLRenderer renders a complete HTML page
func NewHTMLRenderer() *Renderer {
	return &Renderer{format: FormatHTML}
}

func (r *Renderer) ContentType() string {
	if r.format == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

func (r *Renderer) Extension() string {
	if r.format == FormatHTML {
		return ".html"
	}
	return ".md"
}

// Export writes a report containing only tables.
func (r *Renderer) Export(w io.Writer, tables ...*sampling.ResultTable) error {
	return r.Write(w, Document{Tables: tables})
}

// Document is the content of one report.
type Document struct {
	Results []sampling.QuantileResult
	Tables  []*sampling.ResultTable
}

// Write renders doc in the renderer's format.
func (r *Renderer) Write(w io.Writer, doc Document) error {
	md := Markdown(doc)
	if r.format == FormatHTML {
		md = ToHTML(md)
	}
	_, err := w.Write(md)
	return err
}

// Markdown renders doc. Results come first, each with its simple and detailed interpretation.
func Markdown(doc Document) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", documentTitle)

	for _, res := range doc.Results {
		writeResult(&b, res)
	}
	for _, table := range doc.Tables {
		writeTable(&b, table)
	}
	return b.Bytes()
}

// ToHTML converts Markdown to a standalone HTML page.
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: documentTitle,
	})
	return markdown.ToHTML(md, p, renderer)
}

func writeResult(b *bytes.Buffer, res sampling.QuantileResult) {
	fmt.Fprintf(b, "## n = %d, tolerable rate %g, risk of overreliance %g (%s than)\n\n",
		res.Params.N, res.Params.TRD, res.Params.OVR, res.Direction)
	fmt.Fprintf(b, "**%s**\n\n", sampling.SimpleResults(res))

	// Hypothesis lines become list items; the interpretation stays a paragraph.
	for _, line := range strings.Split(sampling.DetailedResults(res), "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Null Hypothesis") || strings.HasPrefix(line, "Alternative Hypothesis"):
			fmt.Fprintf(b, "- %s\n", line)
		default:
			fmt.Fprintf(b, "\n%s\n", line)
		}
	}
	fmt.Fprintf(b, "\nAchieved confidence: %.4f\n\n", res.AchievedConfidence)
}

func writeTable(b *bytes.Buffer, table *sampling.ResultTable) {
	fmt.Fprintf(b, "## %s\n\n", table.Title())

	rows := table.Rows()
	writeRow(b, rows[0])
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---:"
	}
	writeRow(b, sep)
	for _, row := range rows[1:] {
		writeRow(b, row)
	}

	hasMarker := false
	for _, row := range table.Cells {
		for _, c := range row {
			hasMarker = hasMarker || !c.Attainable
		}
	}
	if hasMarker {
		fmt.Fprintf(b, "\n`%s`: no deviation count reaches the requested confidence for this sample size.\n",
			sampling.NotAttainableMarker)
	}
	b.WriteString("\n")
}

func writeRow(b *bytes.Buffer, cells []string) {
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}
