package http

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed report.md
var defaultReport []byte

// LoadReport returns the markdown at path, or the built-in project report
// when path is empty.
func LoadReport(path string) ([]byte, error) {
	if path == "" {
		return defaultReport, nil
	}
	md, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return md, nil
}

// renderReport converts markdown to a standalone HTML page.
func renderReport(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)

	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage,
		Title: "Forest Fire Risk Prediction",
	})
	return markdown.Render(doc, r)
}
