// Package file provides filesystem implementations of the audit log and
// staging ports.
//
//   - AuditLog appends every indexed document to formatted_<collection>_messages.txt
//   - StagingStore writes each fetched batch to <collection>_messages.json
//
// Both live in the data directory. The audit log is append-only; the staging
// file is replaced on every sync.
package file
