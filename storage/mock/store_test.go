package mock

import (
	"context"
	"testing"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *MockEvidenceStore {
	return NewMockEvidenceStore(
		&core.Chunk{Id: 3, SourceId: "a", SourceType: core.SourceTypeDocument, Text: "fox fox den", ChunkIndex: 1},
		&core.Chunk{Id: 1, SourceId: "a", SourceType: core.SourceTypeDocument, Text: "quick fox", ChunkIndex: 0},
		&core.Chunk{Id: 2, SourceId: "b", SourceType: core.SourceTypeCode, Text: "lazy dog"},
	)
}

func TestMockEvidenceStore_LexicalSearch(t *testing.T) {
	ctx := context.Background()
	m := fixture()

	hits, err := m.LexicalSearch(ctx, "fox", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, core.ID(3), hits[0].Chunk.Id)
	assert.Equal(t, 2.0, hits[0].Score)
	assert.Equal(t, core.ID(1), hits[1].Chunk.Id)

	hits, err = m.LexicalSearch(ctx, "fox", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = m.LexicalSearch(ctx, `"fox`, 10)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	assert.Equal(t, 3, m.Calls(MethodLexicalSearch))
	assert.Equal(t, []string{"fox", "fox", `"fox`}, m.Queries())
}

func TestMockEvidenceStore_ChunksBySourceIds(t *testing.T) {
	m := fixture()
	got, err := m.ChunksBySourceIds(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].ChunkIndex)
	assert.Equal(t, 1, got[1].ChunkIndex)
}

func TestMockEvidenceStore_AllChunks(t *testing.T) {
	m := fixture()
	all, err := m.AllChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, core.ID(1), all[0].Id)

	code, err := m.AllChunks(context.Background(), &storage.Filter{SourceTypes: []core.SourceType{core.SourceTypeCode}})
	require.NoError(t, err)
	require.Len(t, code, 1)
	assert.Equal(t, core.ID(2), code[0].Id)
	assert.Equal(t, 2, m.Calls(MethodAllChunks))
}
