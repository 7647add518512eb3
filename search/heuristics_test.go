package search

import (
	"testing"

	"github.com/poiesic/groundwork/core"
	"github.com/stretchr/testify/assert"
)

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, []string{"quick", "jumps"}, queryTerms("The quick fox, quick! JUMPS"))
	assert.Equal(t, []string{"naïve"}, queryTerms("naïve fox"))
	assert.Empty(t, queryTerms("a fox is ok"))
	assert.Empty(t, queryTerms(""))
}

func TestHeuristicBonus(t *testing.T) {
	tests := []struct {
		name  string
		query string
		chunk core.Chunk
		want  float64
	}{
		{
			name:  "exact phrase is case-insensitive",
			query: "Brown Fox",
			chunk: core.Chunk{Text: "the quick BROWN FOX jumps", ChunkIndex: 2},
			want:  0.5 + 0.3,
		},
		{
			name:  "partial term density",
			query: "brown bears hibernate",
			chunk: core.Chunk{Text: "brown fox, brown bears", ChunkIndex: 1},
			want:  0.3 * 2 / 3,
		},
		{
			name:  "lead chunk only",
			query: "zebra",
			chunk: core.Chunk{Text: "the quick brown fox", ChunkIndex: 0},
			want:  0.15,
		},
		{
			name:  "all bonuses stack uncapped",
			query: "quick brown fox",
			chunk: core.Chunk{Text: "The quick brown fox", ChunkIndex: 0},
			want:  0.5 + 0.3 + 0.15,
		},
		{
			name:  "short terms ignored",
			query: "fox den",
			chunk: core.Chunk{Text: "a fox in a den", ChunkIndex: 4},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bonuses := heuristicBonuses(tt.query, []*core.Chunk{&tt.chunk})
			assert.InDelta(t, tt.want, bonuses[tt.chunk.Id], 1e-12)
		})
	}
}

func TestHeuristicBonuses_OmitsZero(t *testing.T) {
	chunks := []*core.Chunk{
		{Id: 1, Text: "nothing to see", ChunkIndex: 3},
		{Id: 2, Text: "lead paragraph", ChunkIndex: 0},
	}
	bonuses := heuristicBonuses("fox", chunks)
	assert.Len(t, bonuses, 1)
	assert.InDelta(t, 0.15, bonuses[2], 1e-12)
}

func TestCandidateUnion(t *testing.T) {
	union := candidateUnion(hitsFor(1, 2), hitsFor(2, 3))
	ids := make([]core.ID, len(union))
	for i, c := range union {
		ids[i] = c.Id
	}
	assert.Equal(t, []core.ID{1, 2, 3}, ids)
}
