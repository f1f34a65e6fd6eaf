package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"goanam/domain/anamorphosis"
)

// ModelMarkdown renders a fitted model as a markdown calibration summary.
func ModelMarkdown(model anamorphosis.Model) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Anamorphosis model %s\n\n", model.Variable)
	fmt.Fprintf(&b, "Model `%s`, Hermite order %d, table of %d rows.\n\n",
		model.ID, model.Order, model.Table.Len())

	b.WriteString("## Fit diagnostics\n\n")
	b.WriteString("| statistic | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| mean | %.6g |\n", model.Diagnostics.Mean)
	fmt.Fprintf(&b, "| empirical variance | %.6g |\n", model.Diagnostics.EmpiricalVariance)
	fmt.Fprintf(&b, "| expansion variance | %.6g |\n", model.Diagnostics.PCIVariance)
	fmt.Fprintf(&b, "| variance gap | %.6g |\n", model.Diagnostics.VarianceGap)

	b.WriteString("\n## Intervals\n\n")
	b.WriteString("| interval | raw | gaussian |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| authorized lower | %.6g | %.4f |\n", model.Anchors.ZAMin, model.Anchors.YAMin)
	fmt.Fprintf(&b, "| practical lower | %.6g | %.4f |\n", model.Anchors.ZPMin, model.Anchors.YPMin)
	fmt.Fprintf(&b, "| practical upper | %.6g | %.4f |\n", model.Anchors.ZPMax, model.Anchors.YPMax)
	fmt.Fprintf(&b, "| authorized upper | %.6g | %.4f |\n", model.Anchors.ZAMax, model.Anchors.YAMax)

	b.WriteString("\n## Leading coefficients\n\n")
	limit := len(model.PCI)
	if limit > 11 {
		limit = 11
	}
	b.WriteString("| p | PCI |\n|---|---|\n")
	for p := 0; p < limit; p++ {
		fmt.Fprintf(&b, "| %d | %.6g |\n", p, model.PCI[p])
	}
	return b.String()
}

// RenderHTML converts a markdown report to HTML for the web surface.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
