// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Connector: Fetches messages and permalinks from an origin platform
//   - ConnectorFactory: Creates connectors from source configuration
//   - EmbeddingService: Converts text to fixed-length vectors
//   - VectorStore / VectorIndex: Named collections of vector records
//   - StagingStore: Holds a fetched batch between fetch and processing
//   - AuditLog: Append-only record of inserted and updated documents
//
// # Optional Interfaces
//
//   - CompletionService: Answer generation. Without it, only retrieval is available.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
