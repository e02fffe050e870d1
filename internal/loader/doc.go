/*
Package loader populates an already built node tree from a document archive.

The Loader walks the tree depth-first and, per node variant, reads pixel
buffers, embedded profiles, selections and filter configurations through a
ports.Store. Optional entries that are absent keep their defaults; missing
pixel data or malformed entries fail the node, and container nodes keep
visiting their remaining children so one corrupt layer does not hide the rest.

Legacy archive rules are consulted through a single VersionPolicy per syntax
version.
*/
package loader
