package domain

import "math"

// Metadata keys stored alongside every vector record.
const (
	// MetadataURL holds the resolved permalink. Omitted when unresolved.
	MetadataURL = "url"

	// MetadataType holds the source type tag.
	MetadataType = "type"
)

// Metadata is the flat key/value payload attached to a vector record.
type Metadata map[string]string

// URL returns the permalink stored in the metadata, or "" if absent.
func (m Metadata) URL() string {
	if m == nil {
		return ""
	}
	return m[MetadataURL]
}

// VectorRecord is one indexed message in a collection.
type VectorRecord struct {
	// ID equals the originating Message ID. One record per ID.
	ID string

	// Embedding is the document vector. Its length is fixed per collection.
	Embedding []float32

	// Document is the formatted document text the embedding was computed from.
	Document string

	// Metadata carries the permalink and source type tag.
	Metadata Metadata
}

// NewRecordMetadata builds record metadata for a source type.
// The url key is only set when a permalink was resolved.
func NewRecordMetadata(sourceType SourceType, permalink string) Metadata {
	md := Metadata{MetadataType: string(sourceType)}
	if permalink != "" {
		md[MetadataURL] = permalink
	}
	return md
}

// VectorMatch is a raw nearest-neighbour hit returned by a vector index.
type VectorMatch struct {
	// ID is the matched record identity.
	ID string

	// Document is the stored document text.
	Document string

	// Distance is the index distance to the query vector (cosine distance).
	Distance float64

	// Metadata is the stored record metadata.
	Metadata Metadata
}

// CosineDistance returns 1 - cos(a, b). Identical directions give 0,
// orthogonal vectors 1, opposite vectors 2. A zero vector is at distance 1
// from everything. Vectors of different length are at distance 1.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
