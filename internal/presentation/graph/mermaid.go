package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the layer tree.
// Shapes by variant:
// - Group and clone layers: [[Subroutine]]
// - Masks: [/Parallelogram/]
// - Other layers: [Rectangle]
// Failed nodes get the "failed" class; clone layers link to their source.
func GenerateMermaid(doc *strata.Document) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := map[domain.NodeID]string{}
	next := 0
	idOf := func(n domain.Node) string {
		if id, ok := ids[n.ID()]; ok {
			return id
		}
		next++
		ids[n.ID()] = fmt.Sprintf("n%d", next)
		return ids[n.ID()]
	}

	rootID := "root"
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", rootID, sanitizeLabel(doc.Name))

	var failed []string
	var clones []string
	var walk func(parent string, n domain.Node)
	walk = func(parent string, n domain.Node) {
		for _, c := range n.Children() {
			id := idOf(c)
			opener, closer := "[", "]"
			switch {
			case c.Kind().IsMask():
				opener, closer = "[/", "/]"
			case c.Kind() == domain.KindGroupLayer || c.Kind() == domain.KindCloneLayer:
				opener, closer = "[[", "]]"
			}
			fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", id, opener, sanitizeLabel(c.Name()), c.Kind(), closer)
			fmt.Fprintf(&sb, "    %s --> %s\n", parent, id)

			if res, ok := doc.Report.Result(c.ID()); ok && res.Outcome == domain.OutcomeFailed {
				failed = append(failed, id)
			}
			if clone, ok := c.(*domain.CloneLayer); ok && clone.Source != nil {
				clones = append(clones, fmt.Sprintf("    %s -. clone .-> %s\n", id, idOf(clone.Source)))
			}
			walk(id, c)
		}
	}
	walk(rootID, doc.Image.Root)

	for _, line := range clones {
		sb.WriteString(line)
	}
	if len(failed) > 0 {
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#dc2626\n")
		fmt.Fprintf(&sb, "    class %s failed\n", strings.Join(failed, ","))
	}
	return sb.String()
}

func sanitizeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
