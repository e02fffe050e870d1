package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/muesli/termenv"
)

// TreeOptions controls RenderTree.
type TreeOptions struct {
	// Profile selects the color profile; termenv.Ascii disables color.
	Profile termenv.Profile
}

// RenderTree writes the node tree of doc, one node per line, with load outcomes.
func RenderTree(w io.Writer, doc *strata.Document, opts TreeOptions) {
	out := termenv.NewOutput(w, termenv.WithProfile(opts.Profile))
	img := doc.Image

	header := fmt.Sprintf("%s (%dx%d %s, syntax %d)", doc.Name, img.Width, img.Height, img.ColorSpace, doc.SyntaxVersion)
	fmt.Fprintln(w, out.String(header).Bold())

	var walk func(n domain.Node, prefix string)
	walk = func(n domain.Node, prefix string) {
		children := n.Children()
		for i, c := range children {
			last := i == len(children)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			fmt.Fprintf(w, "%s%s%s %s%s\n", prefix, branch,
				out.String(c.Kind().String()).Faint(),
				c.Name(),
				outcomeMark(out, doc.Report, c))
			walk(c, prefix+next)
		}
	}
	walk(img.Root, "")

	summary := fmt.Sprintf("%d nodes, %d failed, %d limitations", len(doc.Report.Nodes), doc.Report.Failed(), len(doc.Report.Limitations))
	fmt.Fprintln(w, out.String(summary).Faint())
}

func outcomeMark(out *termenv.Output, report *strata.Report, n domain.Node) string {
	res, ok := report.Result(n.ID())
	if !ok {
		return ""
	}
	switch res.Outcome {
	case domain.OutcomeFailed:
		msg := "failed"
		if res.Err != nil {
			msg = firstLine(res.Err.Error())
		}
		return " " + out.String("✗ "+msg).Foreground(out.Color("#f87171")).String()
	default:
		return " " + out.String("✓").Foreground(out.Color("#4ade80")).String()
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
