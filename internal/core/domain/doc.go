// Package domain defines the core business entities for threadrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Message: A root conversational message and its thread replies
//   - VectorRecord: An embedded, indexed message keyed by identity
//   - SyncReport: The outcome of one synchronisation run
//   - RetrievalResult: A similarity-ranked hit returned for a query
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
