package store

import (
	"context"
	"strings"
)

// MemoryStore is an in-memory Querier used by tests and local tooling. It
// does naive keyword ranking rather than vector search; the production store
// adapter lives with the ingestion pipeline.
type MemoryStore struct {
	chunks []Chunk
}

// NewMemoryStore builds a store over a fixed chunk set.
func NewMemoryStore(chunks []Chunk) *MemoryStore {
	return &MemoryStore{chunks: chunks}
}

// Add appends chunks to the store.
func (s *MemoryStore) Add(chunks ...Chunk) {
	s.chunks = append(s.chunks, chunks...)
}

// Query returns chunks matching the filters, ranked by how many seed-text
// terms appear in the chunk text. Chunks with zero term overlap still match
// when they pass the content-type filter, so metadata-only fixtures work.
func (s *MemoryStore) Query(ctx context.Context, text string, filters Filters) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(text))

	type scored struct {
		chunk Chunk
		hits  int
	}
	var matches []scored
	for _, chunk := range s.chunks {
		if !matchesContentType(chunk, filters.ContentTypes) {
			continue
		}
		hits := 0
		lower := strings.ToLower(chunk.Text)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				hits++
			}
		}
		matches = append(matches, scored{chunk: chunk, hits: hits})
	}

	// Stable selection sort by hit count keeps insertion order for ties.
	for i := 0; i < len(matches); i++ {
		best := i
		for j := i + 1; j < len(matches); j++ {
			if matches[j].hits > matches[best].hits {
				best = j
			}
		}
		if best != i {
			picked := matches[best]
			copy(matches[i+1:best+1], matches[i:best])
			matches[i] = picked
		}
	}

	limit := filters.MaxResults
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}

	results := make([]Chunk, 0, limit)
	for _, m := range matches[:limit] {
		results = append(results, m.chunk)
	}
	return results, nil
}

func matchesContentType(chunk Chunk, types []string) bool {
	if len(types) == 0 {
		return true
	}
	ct := chunk.Metadata.ContentType()
	for _, t := range types {
		if ct == t {
			return true
		}
	}
	return false
}
