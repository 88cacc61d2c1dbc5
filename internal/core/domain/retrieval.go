package domain

// RetrievalResult is a message that cleared the similarity threshold.
type RetrievalResult struct {
	// ID is the record identity.
	ID string `json:"id"`

	// Document is the stored formatted document.
	Document string `json:"message"`

	// Distance is the raw index distance.
	Distance float64 `json:"distance"`

	// Similarity is the confidence derived from Distance.
	Similarity float64 `json:"similarity"`

	// Metadata is the stored record metadata.
	Metadata Metadata `json:"metadata,omitempty"`
}

// URL returns the result's permalink, or "".
func (r *RetrievalResult) URL() string {
	return r.Metadata.URL()
}

// Context is the grounding bundle handed to answer generation.
type Context struct {
	// Text is the concatenated, numbered document text.
	Text string

	// Links holds result permalinks in result order, duplicates kept.
	Links []string

	// Empty is true when no result was supplied and Text is the sentinel.
	Empty bool
}

// Answer is a generated reply with its grounding.
type Answer struct {
	// Text is the answer prose.
	Text string `json:"answer"`

	// Links are the reference links of the grounding results.
	Links []string `json:"links"`

	// Results are the retrieval results the answer was grounded on.
	Results []RetrievalResult `json:"results"`
}

// CollectionStats describes one collection.
type CollectionStats struct {
	// Name is the collection name.
	Name string `json:"name"`

	// Records is the number of stored records.
	Records int `json:"total_messages"`

	// Dimensions is the fixed vector size, or 0 for an empty collection.
	Dimensions int `json:"dimensions"`
}
