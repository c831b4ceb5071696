// Package rank implements brute-force cosine top-k ranking with a
// deterministic tie-break, shared by the local vector store backends.
package rank

import (
	"fmt"
	"math"
	"sort"

	"healthrag/internal/domain"
)

// scoreEpsilon is the tolerance within which two similarity scores are
// treated as equal and the tie-break ordering applies.
const scoreEpsilon = 1e-9

// Cosine returns the cosine similarity of a and b. Vectors of unequal
// length compare over their common prefix; a zero vector scores 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK ranks records by cosine similarity to vector, descending, and returns
// at most k results. Records whose scores agree within 1e-9 order by chunk
// index when they share a source, otherwise by source ID. k below 1 is an
// error; k beyond the number of records returns everything, ranked.
func TopK(records []domain.EmbeddingRecord, vector []float64, k int) ([]domain.SearchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: top-k %d must be at least 1", domain.ErrInvalidArgument, k)
	}
	results := make([]domain.SearchResult, len(records))
	for i, r := range records {
		results[i] = domain.SearchResult{Record: r, Score: Cosine(r.Vector, vector)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return Less(results[i], results[j])
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Less reports whether a ranks before b: higher score first, ties within
// tolerance broken by chunk index within the same source, then source ID.
func Less(a, b domain.SearchResult) bool {
	if math.Abs(a.Score-b.Score) > scoreEpsilon {
		return a.Score > b.Score
	}
	if a.Record.SourceID == b.Record.SourceID {
		return a.Record.Index < b.Record.Index
	}
	return a.Record.SourceID < b.Record.SourceID
}
