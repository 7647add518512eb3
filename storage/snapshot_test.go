package storage_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/poiesic/groundwork/storage/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func snapshotChunk(sourceID string, index int, text string, vec []float32) *core.Chunk {
	return &core.Chunk{
		Id:          core.ChunkID(sourceID, index),
		SourceId:    sourceID,
		SourceType:  core.SourceTypeCapture,
		Domain:      "ops",
		Text:        text,
		Embedding:   vec,
		ChunkIndex:  index,
		StartOffset: index * 50,
		EndOffset:   index*50 + len(text),
	}
}

func exportAll(t *testing.T, repo storage.ChunkRepository) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := storage.ExportSnapshot(context.Background(), repo, &buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)

	// more chunks than one scan page
	var chunks []*core.Chunk
	for i := range 300 {
		var vec []float32
		if i%2 == 0 {
			vec = []float32{float32(i), 0.5, -1}
		}
		chunks = append(chunks, snapshotChunk(fmt.Sprintf("src-%d", i%7), i, fmt.Sprintf("entry number %d", i), vec))
	}
	require.NoError(t, src.AddChunks(ctx, chunks...))

	var buf bytes.Buffer
	n, err := storage.ExportSnapshot(ctx, src, &buf)
	require.NoError(t, err)
	assert.Equal(t, 300, n)

	dst := openStore(t)
	n, err = storage.ImportSnapshot(ctx, dst, &buf)
	require.NoError(t, err)
	assert.Equal(t, 300, n)

	want, err := src.AllChunks(ctx, nil)
	require.NoError(t, err)
	got, err := dst.AllChunks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	hits, err := dst.LexicalSearch(ctx, "entry", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 5)
}

func TestSnapshot_EmptyStore(t *testing.T) {
	data := exportAll(t, openStore(t))
	assert.Equal(t, storage.SnapshotMagic, string(data))

	chunks, err := storage.ReadSnapshot(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSnapshot_ImportReplacesSources(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	require.NoError(t, src.AddChunks(ctx, snapshotChunk("a", 0, "fresh lead chunk", nil)))
	data := exportAll(t, src)

	dst := openStore(t)
	require.NoError(t, dst.AddChunks(ctx,
		snapshotChunk("a", 0, "stale lead chunk", nil),
		snapshotChunk("a", 1, "stale tail chunk", nil),
		snapshotChunk("b", 0, "untouched source", nil)))

	_, err := storage.ImportSnapshot(ctx, dst, bytes.NewReader(data))
	require.NoError(t, err)

	got, err := dst.ChunksBySourceIds(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "fresh lead chunk", got[0].Text)
	assert.Equal(t, "untouched source", got[1].Text)
}

func TestSnapshot_Corrupt(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	require.NoError(t, src.AddChunks(ctx,
		snapshotChunk("a", 0, "first chunk", []float32{1, 2}),
		snapshotChunk("a", 1, "second chunk", nil)))
	data := exportAll(t, src)

	tests := map[string][]byte{
		"empty":          nil,
		"wrong header":   append([]byte("not-a-snapshot\n"), data[len(storage.SnapshotMagic):]...),
		"truncated":      data[:len(data)-3],
		"zero length":    append([]byte(storage.SnapshotMagic), 0),
		"garbage record": append([]byte(storage.SnapshotMagic), 2, 0xff, 0xff),
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			dst := openStore(t)
			require.NoError(t, dst.AddChunks(ctx, snapshotChunk("a", 0, "kept chunk", nil)))

			_, err := storage.ImportSnapshot(ctx, dst, bytes.NewReader(input))
			assert.ErrorIs(t, err, storage.ErrInvalidSnapshot)

			got, err := dst.ChunksBySourceIds(ctx, []string{"a"})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "kept chunk", got[0].Text)
		})
	}
}
