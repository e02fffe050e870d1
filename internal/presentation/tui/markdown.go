package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/domain"
)

// Markdown describes doc as a markdown report, suitable for NewRenderer.
func Markdown(doc *strata.Document) string {
	var sb strings.Builder
	img := doc.Image

	fmt.Fprintf(&sb, "# %s\n\n", doc.Name)
	fmt.Fprintf(&sb, "- **Size:** %d x %d\n", img.Width, img.Height)
	fmt.Fprintf(&sb, "- **Color space:** %s\n", img.ColorSpace)
	fmt.Fprintf(&sb, "- **Syntax version:** %d\n", doc.SyntaxVersion)
	if doc.Editor != "" {
		fmt.Fprintf(&sb, "- **Editor:** %s\n", doc.Editor)
	}
	sb.WriteString("\n## Nodes\n\n")
	sb.WriteString("| Node | Kind | Outcome | Details |\n")
	sb.WriteString("|---|---|---|---|\n")

	img.Walk(func(n domain.Node, depth int) bool {
		outcome, details := "", ""
		if res, ok := doc.Report.Result(n.ID()); ok {
			outcome = res.Outcome.String()
			if res.Err != nil {
				details = escapeCell(firstLine(res.Err.Error()))
			}
		}
		if details == "" {
			details = nodeDetails(n)
		}
		name := strings.Repeat("&nbsp;&nbsp;", depth) + escapeCell(n.Name())
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", name, n.Kind(), outcome, details)
		return true
	})

	if len(doc.Report.Limitations) > 0 {
		sb.WriteString("\n## Limitations\n\n")
		for _, lim := range doc.Report.Limitations {
			fmt.Fprintf(&sb, "- `%s`: %v\n", lim.Location, lim.Err)
		}
	}
	return sb.String()
}

func nodeDetails(n domain.Node) string {
	var parts []string
	if owner, ok := n.(domain.DeviceOwner); ok {
		dev := owner.PaintDevice()
		r := dev.Extent()
		parts = append(parts, fmt.Sprintf("%s %dx%d", dev.ColorSpace(), r.Dx(), r.Dy()))
	}
	if sel, ok := n.(domain.Selectable); ok && sel.Selection() != nil && sel.Selection().HasPixelSelection() {
		parts = append(parts, "pixel selection")
	}
	switch v := n.(type) {
	case *domain.AdjustmentLayer:
		parts = append(parts, "filter "+v.Filter().Name)
	case *domain.FilterMask:
		parts = append(parts, "filter "+v.Filter().Name)
	case *domain.GeneratorLayer:
		parts = append(parts, "generator "+v.Generator().Name)
	case *domain.CloneLayer:
		parts = append(parts, "clone of "+v.CopyFrom)
	}
	return escapeCell(strings.Join(parts, ", "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
