/*
Package strata reads KRA painting documents: the layer and mask tree, pixel
buffers, embedded color profiles, selections and filter configurations.

A KRA file is a zip archive. maindoc.xml describes the node tree, and every
data-bearing node stores its payloads under {document}/layers/{filename}
with a suffix per payload kind (".icc", ".pixelselection", ".filterconfig"
and so on). Loading happens in two passes: the manifest pass builds the empty
tree, then the loader walks it depth-first and fills each node from the
archive.

# Usage

	doc, err := strata.Open(ctx, "painting.kra")
	if err != nil {
		log.Fatal(err)
	}
	doc.Image.Walk(func(n domain.Node, depth int) bool {
		fmt.Println(strings.Repeat("  ", depth), n.Kind(), n.Name())
		return true
	})

Any ports.Archive can be loaded with Load: directories, in-memory maps and
Redis hashes ship in pkg/adapters.

# Failures

A node whose required data is missing or malformed fails on its own; its
siblings still load. By default Load returns the partially populated
document together with the joined node errors. WithBestEffort keeps node
failures in the Report only.
*/
package strata
