package search

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// lexicalFanout multiplies topK to size the full-text request.
const lexicalFanout = 4

// laneHit is a chunk ranked by one lane.
type laneHit struct {
	chunk *core.Chunk
	score float64
}

type lexicalOutcome struct {
	// ranked holds normalized, filtered hits, best first.
	ranked []laneHit
	// seeds holds every index hit before filtering.
	seeds []*core.Chunk
	err   error
}

// lexicalLane runs the full-text query, retrying once with a simplified
// keyword query when the index rejects the syntax. Failures yield an empty lane.
func (s *Searcher) lexicalLane(ctx context.Context, logger *slog.Logger, query string, filter *storage.Filter, topK int) lexicalOutcome {
	limit := lexicalFanout * topK

	hits, err := s.searchIndex(ctx, query, limit)
	if errors.Is(err, storage.ErrInvalidQuery) {
		simplified := simplifyQuery(query)
		logger.Debug("retrying malformed query", "simplified", simplified, "err", err)
		if simplified == "" {
			return lexicalOutcome{err: err}
		}
		hits, err = s.searchIndex(ctx, simplified, limit)
	}
	if err != nil {
		logger.Warn("lexical lane failed", "err", err)
		return lexicalOutcome{err: err}
	}

	seeds := make([]*core.Chunk, 0, len(hits))
	for _, h := range hits {
		if h.Chunk != nil {
			seeds = append(seeds, h.Chunk)
		}
	}
	return lexicalOutcome{
		ranked: filterHits(normalizeHits(hits), filter),
		seeds:  seeds,
	}
}

func (s *Searcher) searchIndex(ctx context.Context, query string, limit int) ([]storage.LexicalHit, error) {
	laneCtx, cancel := context.WithTimeout(ctx, s.laneTimeout)
	defer cancel()
	return s.store.LexicalSearch(laneCtx, query, limit)
}

// normalizeHits divides each score by the batch maximum, or by 1 when the
// maximum is not positive. Output is ordered by score descending, then ID.
func normalizeHits(hits []storage.LexicalHit) []laneHit {
	maxScore := 0.0
	for _, h := range hits {
		if h.Chunk != nil && h.Score > maxScore {
			maxScore = h.Score
		}
	}
	divisor := 1.0
	if maxScore > 0 {
		divisor = maxScore
	}

	out := make([]laneHit, 0, len(hits))
	seen := make(map[core.ID]bool, len(hits))
	for _, h := range hits {
		if h.Chunk == nil || seen[h.Chunk.Id] {
			continue
		}
		seen[h.Chunk.Id] = true
		out = append(out, laneHit{chunk: h.Chunk, score: h.Score / divisor})
	}
	sortLane(out)
	return out
}

func filterHits(hits []laneHit, filter *storage.Filter) []laneHit {
	if filter.IsEmpty() {
		return hits
	}
	out := hits[:0:0]
	for _, h := range hits {
		if filter.Matches(h.chunk) {
			out = append(out, h)
		}
	}
	return out
}

// sortLane orders hits by score descending, breaking ties by ascending ID.
func sortLane(hits []laneHit) {
	slices.SortStableFunc(hits, func(a, b laneHit) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.chunk.Id, b.chunk.Id)
	})
}

// Index query operators stripped from simplified queries.
var queryOperators = map[string]bool{
	"and": true, "or": true, "not": true, "near": true,
}

// simplifyQuery reduces a query to its bare keywords, each quoted so the
// index treats it as a literal, joined with OR.
func simplifyQuery(query string) string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(words))
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		key := strings.ToLower(w)
		if queryOperators[key] || seen[key] {
			continue
		}
		seen[key] = true
		quoted = append(quoted, `"`+w+`"`)
	}
	return strings.Join(quoted, " OR ")
}
