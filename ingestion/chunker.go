package ingestion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a slice of a source text. Start and End are byte offsets, so
// text[Start:End] == Text.
type Span struct {
	Text  string
	Start int
	End   int
}

// Chunker splits text into windows of consecutive sentences.
type Chunker struct {
	// MaxSentences caps the sentences in one window.
	MaxSentences int
	// MaxChars caps a window's length in bytes. A single sentence longer
	// than this is cut at word boundaries.
	MaxChars int
	// Overlap is the number of trailing sentences repeated at the start of
	// the next window.
	Overlap int
}

// DefaultChunker returns the chunker used when none is configured.
func DefaultChunker() Chunker {
	return Chunker{
		MaxSentences: 5,
		MaxChars:     1200,
		Overlap:      1,
	}
}

func (c Chunker) normalized() Chunker {
	d := DefaultChunker()
	if c.MaxSentences < 1 {
		c.MaxSentences = d.MaxSentences
	}
	if c.MaxChars < 1 {
		c.MaxChars = d.MaxChars
	}
	c.Overlap = max(0, min(c.Overlap, c.MaxSentences-1))
	return c
}

// Split cuts text into windows. Windows follow source order and whitespace
// between sentences is kept, so offsets always point back into text.
func (c Chunker) Split(text string) []Span {
	c = c.normalized()
	sentences := c.sentences(text)

	var windows []Span
	for i := 0; i < len(sentences); {
		j := i + 1
		for j < len(sentences) && j-i < c.MaxSentences && sentences[j].End-sentences[i].Start <= c.MaxChars {
			j++
		}

		start, end := sentences[i].Start, sentences[j-1].End
		windows = append(windows, Span{Text: text[start:end], Start: start, End: end})
		if j == len(sentences) {
			break
		}
		i = max(j-c.Overlap, i+1)
	}
	return windows
}

// sentences finds sentence spans, trimmed of surrounding whitespace.
// A sentence ends at terminal punctuation followed by whitespace, or at a
// blank line.
func (c Chunker) sentences(text string) []Span {
	var spans []Span
	add := func(start, end int) {
		end = start + len(strings.TrimRightFunc(text[start:end], unicode.IsSpace))
		for end-start > c.MaxChars {
			cut := splitPoint(text[start:end], c.MaxChars)
			piece := start + len(strings.TrimRightFunc(text[start:start+cut], unicode.IsSpace))
			if piece > start {
				spans = append(spans, Span{Text: text[start:piece], Start: start, End: piece})
			}
			start += cut
			for start < end {
				r, size := utf8.DecodeRuneInString(text[start:])
				if !unicode.IsSpace(r) {
					break
				}
				start += size
			}
		}
		if end > start {
			spans = append(spans, Span{Text: text[start:end], Start: start, End: end})
		}
	}

	start := -1
	for i, r := range text {
		if start < 0 {
			if unicode.IsSpace(r) {
				continue
			}
			start = i
		}

		next := i + utf8.RuneLen(r)
		boundary := false
		switch r {
		case '.', '!', '?':
			boundary = next == len(text) || isSpaceAt(text, next)
		case '\n':
			boundary = next < len(text) && text[next] == '\n'
		}
		if boundary {
			add(start, next)
			start = -1
		}
	}
	if start >= 0 {
		add(start, len(text))
	}
	return spans
}

// splitPoint returns where to cut s so the head is at most limit bytes,
// preferring the last whitespace and never splitting a rune.
func splitPoint(s string, limit int) int {
	if idx := strings.LastIndexFunc(s[:limit], unicode.IsSpace); idx > 0 {
		return idx
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return cut
}

func isSpaceAt(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}
