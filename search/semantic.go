package search

import (
	"context"
	"slices"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

const (
	// semanticFanout multiplies topK to size the semantic ranking.
	semanticFanout = 3

	// exhaustiveThreshold multiplies topK; smaller candidate sets fall back
	// to scoring every chunk that passes the filter.
	exhaustiveThreshold = 2
)

// semanticLane ranks candidates by cosine similarity to queryVec.
// Candidates are the lexical seeds plus every chunk sharing a source with
// them. exhaustive reports whether the lane scanned the whole filtered corpus.
func (s *Searcher) semanticLane(ctx context.Context, queryVec []float32, seeds []*core.Chunk, filter *storage.Filter, topK int) (hits []laneHit, exhaustive bool, err error) {
	laneCtx, cancel := context.WithTimeout(ctx, s.laneTimeout)
	defer cancel()

	candidates := make(map[core.ID]*core.Chunk, len(seeds))
	for _, c := range seeds {
		candidates[c.Id] = c
	}

	if sourceIDs := distinctSources(seeds); len(sourceIDs) > 0 {
		siblings, err := s.store.ChunksBySourceIds(laneCtx, sourceIDs)
		if err != nil {
			return nil, false, err
		}
		for _, c := range siblings {
			if c != nil {
				candidates[c.Id] = c
			}
		}
	}

	for id, c := range candidates {
		if !filter.Matches(c) {
			delete(candidates, id)
		}
	}

	if len(candidates) < exhaustiveThreshold*topK {
		all, err := s.store.AllChunks(laneCtx, filter)
		if err != nil {
			return nil, false, err
		}
		exhaustive = true
		for _, c := range all {
			if filter.Matches(c) {
				candidates[c.Id] = c
			}
		}
	}

	hits = make([]laneHit, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 || len(c.Embedding) != len(queryVec) {
			continue
		}
		hits = append(hits, laneHit{chunk: c, score: cosineSimilarity(queryVec, c.Embedding)})
	}
	sortLane(hits)
	if limit := semanticFanout * topK; len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, exhaustive, nil
}

func distinctSources(chunks []*core.Chunk) []string {
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.SourceId != "" {
			ids = append(ids, c.SourceId)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
