package domain

// DefaultResultCount is the number of chunks retrieved when none is given.
const DefaultResultCount = 2

// Query is a question plus the number of chunks to retrieve for it.
type Query struct {
	Question string
	N        int
}

// Normalise returns a copy of q with a non-positive N replaced by
// DefaultResultCount.
func (q Query) Normalise() Query {
	if q.N <= 0 {
		q.N = DefaultResultCount
	}
	return q
}

// Hit is one nearest-neighbour match from a vector store.
type Hit struct {
	// ID is the chunk ID the vector was stored under.
	ID string

	// Text is the chunk text stored alongside the vector.
	Text string

	// Distance is the store's dissimilarity measure. Lower is closer.
	Distance float64
}

// Texts returns the text of each hit, preserving order.
// The result is never nil.
func Texts(hits []Hit) []string {
	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Text)
	}
	return texts
}
