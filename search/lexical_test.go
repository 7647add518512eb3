package search

import (
	"math"
	"testing"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyQuery(t *testing.T) {
	tests := map[string]string{
		`quick AND "fox`:       `"quick" OR "fox"`,
		`title:(brown NEAR x)`: `"title" OR "brown" OR "x"`,
		`fox fox Fox`:          `"fox"`,
		`"`:                    ``,
		`NOT or and`:           ``,
		`café-au-lait 42`:      `"café" OR "au" OR "lait" OR "42"`,
	}
	for in, want := range tests {
		assert.Equal(t, want, simplifyQuery(in), in)
	}
}

func TestNormalizeHits(t *testing.T) {
	c := func(id core.ID) *core.Chunk { return &core.Chunk{Id: id} }

	t.Run("divides by max", func(t *testing.T) {
		out := normalizeHits([]storage.LexicalHit{
			{Chunk: c(1), Score: 2},
			{Chunk: c(2), Score: 8},
			{Chunk: c(3), Score: 4},
		})
		require.Len(t, out, 3)
		assert.Equal(t, core.ID(2), out[0].chunk.Id)
		assert.Equal(t, 1.0, out[0].score)
		assert.Equal(t, 0.5, out[1].score)
		assert.Equal(t, 0.25, out[2].score)
	})

	t.Run("non-positive max keeps raw scores", func(t *testing.T) {
		out := normalizeHits([]storage.LexicalHit{
			{Chunk: c(1), Score: -2},
			{Chunk: c(2), Score: 0},
		})
		require.Len(t, out, 2)
		assert.Equal(t, 0.0, out[0].score)
		assert.Equal(t, -2.0, out[1].score)
	})

	t.Run("ties ordered by id and duplicates dropped", func(t *testing.T) {
		out := normalizeHits([]storage.LexicalHit{
			{Chunk: c(9), Score: 1},
			{Chunk: c(4), Score: 1},
			{Chunk: c(9), Score: 1},
			{Chunk: nil, Score: math.MaxFloat64},
		})
		require.Len(t, out, 2)
		assert.Equal(t, core.ID(4), out[0].chunk.Id)
		assert.Equal(t, core.ID(9), out[1].chunk.Id)
	})
}

func TestFilterHits(t *testing.T) {
	hits := []laneHit{
		{chunk: &core.Chunk{Id: 1, SourceType: core.SourceTypeCode}},
		{chunk: &core.Chunk{Id: 2, SourceType: core.SourceTypeReport}},
	}
	assert.Len(t, filterHits(hits, nil), 2)

	out := filterHits(hits, &storage.Filter{SourceTypes: []core.SourceType{core.SourceTypeReport}})
	require.Len(t, out, 1)
	assert.Equal(t, core.ID(2), out[0].chunk.Id)
	assert.Len(t, hits, 2)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
