package domain

// StoredMatch is one nearest-neighbour hit as reported by the vector store.
type StoredMatch struct {
	Text     string       `json:"text"`
	Metadata PostMetadata `json:"metadata"`
	Distance float64      `json:"distance"`
}

type RetrievalResult struct {
	Text       string       `json:"document_text"`
	Metadata   PostMetadata `json:"metadata"`
	Distance   float64      `json:"distance"`
	Similarity float64      `json:"similarity_score"`
}

func NewRetrievalResult(match StoredMatch) RetrievalResult {
	return RetrievalResult{
		Text:       match.Text,
		Metadata:   match.Metadata,
		Distance:   match.Distance,
		Similarity: 1 - match.Distance,
	}
}
