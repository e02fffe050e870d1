/*
Package domain contains the core models of a KRA document.

It defines the node tree (layers and masks), the pixel containers attached to
nodes (paint devices, selections), color spaces with embedded profiles, and
filter configurations. This package is kept free of I/O: decoding archives
and walking the tree live in the loader, following Hexagonal Architecture
principles.

# Key Entities

  - Node: a sealed set of layer and mask variants, see NodeKind.
  - Image: the document canvas and its root group.
  - PaintDevice: a sparse tiled raster buffer bound to a ColorSpace.
  - Selection: an optional pixel component and an optional shape component.
  - FilterConfig: the named parameter set of a filter or generator.
*/
package domain
