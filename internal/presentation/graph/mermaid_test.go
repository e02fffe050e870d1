package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	doc := testutils.LoadedDocument(t, testutils.SampleDocument())
	out := graph.GenerateMermaid(doc)

	tests := []struct {
		name     string
		contains []string
	}{
		{"Header And Root", []string{"graph TD\n", `root(("sample"))`}},
		{"Layer Shape", []string{`n1["Background <br/> paintlayer"]`, "root --> n1"}},
		{"Mask Shape", []string{`n2[/"Fade <br/> transparencymask"/]`, "n1 --> n2"}},
		{"Group Shape", []string{`n3[["Group <br/> grouplayer"]]`}},
		{"Clone Link", []string{"n5 -. clone .-> n1"}},
		{"Failed Class", []string{"classDef failed", "class n3,n4 failed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.True(t, strings.Contains(out, s), "expected %q in:\n%s", s, out)
			}
		})
	}
}
