package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSpansPointIntoText(t *testing.T, text string, spans []Span) {
	t.Helper()
	for i, s := range spans {
		assert.Equal(t, text[s.Start:s.End], s.Text, "span %d", i)
		assert.Equal(t, strings.TrimSpace(s.Text), s.Text, "span %d not trimmed", i)
	}
}

func TestChunker_Sentences(t *testing.T) {
	text := "  First sentence. Second one!\tThird?\n\nNew paragraph without stop\nstill same. Version 1.2 stays whole."
	spans := DefaultChunker().sentences(text)

	var got []string
	for _, s := range spans {
		got = append(got, s.Text)
	}
	assert.Equal(t, []string{
		"First sentence.",
		"Second one!",
		"Third?",
		"New paragraph without stop\nstill same.",
		"Version 1.2 stays whole.",
	}, got)
	assertSpansPointIntoText(t, text, spans)
}

func TestChunker_Split(t *testing.T) {
	text := "One. Two. Three. Four. Five."

	t.Run("windows with overlap", func(t *testing.T) {
		spans := Chunker{MaxSentences: 2, MaxChars: 100, Overlap: 1}.Split(text)
		var got []string
		for _, s := range spans {
			got = append(got, s.Text)
		}
		assert.Equal(t, []string{"One. Two.", "Two. Three.", "Three. Four.", "Four. Five."}, got)
		assertSpansPointIntoText(t, text, spans)
	})

	t.Run("no overlap", func(t *testing.T) {
		spans := Chunker{MaxSentences: 2, MaxChars: 100}.Split(text)
		require.Len(t, spans, 3)
		assert.Equal(t, "Five.", spans[2].Text)
		assert.Equal(t, len(text), spans[2].End)
	})

	t.Run("char budget closes windows early", func(t *testing.T) {
		spans := Chunker{MaxSentences: 10, MaxChars: 10}.Split(text)
		for _, s := range spans {
			assert.LessOrEqual(t, len(s.Text), 10)
		}
		assert.Equal(t, "One. Two.", spans[0].Text)
	})

	t.Run("overlap never stalls", func(t *testing.T) {
		spans := Chunker{MaxSentences: 3, MaxChars: 6, Overlap: 2}.Split(text)
		assert.Len(t, spans, 5)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, DefaultChunker().Split(" \n\t "))
	})

	t.Run("zero value uses defaults", func(t *testing.T) {
		spans := Chunker{}.Split(text)
		require.Len(t, spans, 1)
		assert.Equal(t, text, spans[0].Text)
	})
}

func TestChunker_LongSentence(t *testing.T) {
	text := strings.Repeat("word ", 50) + "end"
	spans := Chunker{MaxSentences: 5, MaxChars: 32}.Split(text)

	require.Greater(t, len(spans), 1)
	for _, s := range spans {
		assert.LessOrEqual(t, len(s.Text), 32)
		assert.False(t, strings.HasPrefix(s.Text, "ord"), "cut inside a word: %q", s.Text)
	}
	assertSpansPointIntoText(t, text, spans)
	assert.Equal(t, len(text), spans[len(spans)-1].End)
}

func TestChunker_UnbrokenRunes(t *testing.T) {
	text := strings.Repeat("é", 40)
	spans := Chunker{MaxChars: 7}.Split(text)

	total := 0
	for _, s := range spans {
		assert.LessOrEqual(t, len(s.Text), 7)
		assert.True(t, strings.Trim(s.Text, "é") == "", "broken rune in %q", s.Text)
		total += len(s.Text)
	}
	assert.Equal(t, len(text), total)
}
