// Package domain defines the core entities of the naiverag pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A text file loaded from the source directory
//   - Chunk: An overlapping window of a document, the unit that is embedded
//   - Hit: A single nearest-neighbour match returned by a vector store
//   - IngestRun: A record of one indexing pass over a directory
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
