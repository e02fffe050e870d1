// Package codec decodes the binary and text payloads stored in document archives:
// tiled raster buffers (with PNG accepted as an alternative encoding) and the
// legacy XML encoding of filter configurations.
package codec
