/*
Package ports defines the driven ports (interfaces) of the document loader.

These interfaces decouple the loader from concrete archive formats and color
management, allowing the same tree walk to read zip files, unpacked
directories, in-memory fixtures or a Redis-backed document cache.

# Key Interfaces

  - Archive: random access to named entries (zip, directory, memory, Redis).
  - Store: the sequential open/read/close protocol the loader speaks.
  - ColorSpaceRegistry: builds color spaces carrying embedded profiles.
  - DocumentCache: keeps uploaded archives addressable by id.
*/
package ports
