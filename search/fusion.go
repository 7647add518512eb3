package search

import (
	"cmp"
	"slices"

	"github.com/poiesic/groundwork/core"
)

const (
	// rrfK dampens the contribution of top ranks in reciprocal rank fusion.
	rrfK = 60

	// bonusScale converts heuristic bonuses into fused-score units.
	bonusScale = 0.01
)

// fuse merges lane rankings with reciprocal rank fusion, adds scaled
// heuristic bonuses and returns the best topK results.
// Each chunk gains 1/(rrfK+rank+1) per lane it appears in, rank from 0.
func fuse(lexical, semantic []laneHit, bonuses map[core.ID]float64, topK int) []*core.RetrievalResult {
	byID := make(map[core.ID]*core.RetrievalResult)

	entry := func(c *core.Chunk) *core.RetrievalResult {
		r, ok := byID[c.Id]
		if !ok {
			r = &core.RetrievalResult{
				Chunk:      c,
				SourceId:   c.SourceId,
				SourceType: c.SourceType,
				Signals:    core.Signals{LexicalRank: -1, SemanticRank: -1},
			}
			byID[c.Id] = r
		}
		return r
	}

	for rank, h := range lexical {
		r := entry(h.chunk)
		r.Score += 1.0 / float64(rrfK+rank+1)
		r.Signals.LexicalRank = rank
	}
	for rank, h := range semantic {
		r := entry(h.chunk)
		r.Score += 1.0 / float64(rrfK+rank+1)
		r.Signals.SemanticRank = rank
	}
	for id, bonus := range bonuses {
		if r, ok := byID[id]; ok && bonus != 0 {
			r.Score += bonus * bonusScale
			r.Signals.Bonus = bonus
		}
	}

	results := make([]*core.RetrievalResult, 0, len(byID))
	for _, r := range byID {
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b *core.RetrievalResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Chunk.Id, b.Chunk.Id)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
