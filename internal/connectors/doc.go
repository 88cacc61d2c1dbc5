// Package connectors holds the source connector variants: slack, github and
// export. Each subpackage exposes a builder that the connector registry maps
// to its domain.SourceType. The jira type is declared in the domain but has no
// builder, so creating it fails with domain.ErrNotImplemented.
package connectors
