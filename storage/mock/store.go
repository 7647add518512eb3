// Package mock provides an in-memory storage.EvidenceStore test double.
package mock

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// Method names accepted by MockEvidenceStore.Calls.
const (
	MethodLexicalSearch     = "LexicalSearch"
	MethodChunksBySourceIds = "ChunksBySourceIds"
	MethodAllChunks         = "AllChunks"
)

// MockEvidenceStore is an in-memory storage.EvidenceStore.
// Function fields override the default behavior of each method.
//
// The default LexicalSearch scores a chunk by how many query terms occur
// as words in its text, and rejects queries with unbalanced double quotes
// as malformed.
type MockEvidenceStore struct {
	LexicalSearchFunc     func(ctx context.Context, query string, limit int) ([]storage.LexicalHit, error)
	ChunksBySourceIdsFunc func(ctx context.Context, sourceIds []string) ([]*core.Chunk, error)
	AllChunksFunc         func(ctx context.Context, filter *storage.Filter) ([]*core.Chunk, error)

	mu     sync.Mutex
	chunks []*core.Chunk
	calls  map[string]int
	// queries records every LexicalSearch query in call order
	queries []string
}

var _ storage.EvidenceStore = (*MockEvidenceStore)(nil)

// NewMockEvidenceStore creates a store holding chunks.
func NewMockEvidenceStore(chunks ...*core.Chunk) *MockEvidenceStore {
	m := &MockEvidenceStore{calls: make(map[string]int)}
	m.Add(chunks...)
	return m
}

// Add inserts chunks, keeping the store ordered by ID.
func (m *MockEvidenceStore) Add(chunks ...*core.Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	slices.SortFunc(m.chunks, func(a, b *core.Chunk) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
}

// Calls returns how many times method was invoked.
func (m *MockEvidenceStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Queries returns the LexicalSearch queries received so far.
func (m *MockEvidenceStore) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.queries)
}

func (m *MockEvidenceStore) record(method string) []*core.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return slices.Clone(m.chunks)
}

// LexicalSearch returns chunks sharing words with query.
func (m *MockEvidenceStore) LexicalSearch(ctx context.Context, query string, limit int) ([]storage.LexicalHit, error) {
	chunks := m.record(MethodLexicalSearch)
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.LexicalSearchFunc != nil {
		return m.LexicalSearchFunc(ctx, query, limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Count(query, `"`)%2 != 0 || strings.TrimSpace(query) == "" {
		return nil, &storage.IndexQueryError{Query: query, Err: errors.New("malformed query")}
	}

	var terms []string
	for _, w := range words(query) {
		// operators of the simplified query syntax
		if w != "and" && w != "or" && w != "not" && w != "near" {
			terms = append(terms, w)
		}
	}
	var hits []storage.LexicalHit
	for _, c := range chunks {
		score := 0.0
		for _, w := range words(c.Text) {
			if slices.Contains(terms, w) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, storage.LexicalHit{Chunk: c, Score: score})
		}
	}
	slices.SortStableFunc(hits, func(a, b storage.LexicalHit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// ChunksBySourceIds returns chunks of the given sources ordered by source then index.
func (m *MockEvidenceStore) ChunksBySourceIds(ctx context.Context, sourceIds []string) ([]*core.Chunk, error) {
	chunks := m.record(MethodChunksBySourceIds)
	if m.ChunksBySourceIdsFunc != nil {
		return m.ChunksBySourceIdsFunc(ctx, sourceIds)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*core.Chunk
	for _, c := range chunks {
		if slices.Contains(sourceIds, c.SourceId) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b *core.Chunk) int {
		if a.SourceId != b.SourceId {
			return strings.Compare(a.SourceId, b.SourceId)
		}
		return a.ChunkIndex - b.ChunkIndex
	})
	return out, nil
}

// AllChunks returns chunks passing filter, ordered by ID.
func (m *MockEvidenceStore) AllChunks(ctx context.Context, filter *storage.Filter) ([]*core.Chunk, error) {
	chunks := m.record(MethodAllChunks)
	if m.AllChunksFunc != nil {
		return m.AllChunksFunc(ctx, filter)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*core.Chunk
	for _, c := range chunks {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
