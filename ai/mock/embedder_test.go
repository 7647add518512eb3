package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("hello", 32)
	b := DeterministicVector("hello", 32)
	c := DeterministicVector("world", 32)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("default behavior", func(t *testing.T) {
		m := NewMockEmbedder()
		vec, err := m.EmbedText(ctx, "fox")
		require.NoError(t, err)
		assert.Len(t, vec, DefaultDimensions)

		vecs, err := m.EmbedTexts(ctx, []string{"fox", "dog"})
		require.NoError(t, err)
		assert.Equal(t, vec, vecs[0])
		assert.Equal(t, 2, m.CallCount())
	})

	t.Run("EmbedTexts falls back to EmbedTextFunc", func(t *testing.T) {
		m := NewMockEmbedder()
		boom := errors.New("boom")
		m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			if text == "bad" {
				return nil, boom
			}
			return []float32{1}, nil
		}

		vecs, err := m.EmbedTexts(ctx, []string{"ok"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1}}, vecs)

		_, err = m.EmbedTexts(ctx, []string{"ok", "bad"})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("reset", func(t *testing.T) {
		m := NewMockEmbedder()
		m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) { return nil, nil }
		_, _ = m.EmbedText(ctx, "x")
		m.Reset()
		assert.Zero(t, m.CallCount())
		assert.Nil(t, m.EmbedTextFunc)
	})
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	assert.Equal(t, MockModel, p.Model())
	assert.NotNil(t, p.Embedder())
	require.NoError(t, p.Close())
	assert.True(t, p.(*MockProvider).Closed())
}
