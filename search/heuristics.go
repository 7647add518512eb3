package search

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/groundwork/core"
)

const (
	exactPhraseBonus = 0.5
	termDensityBonus = 0.3
	leadChunkBonus   = 0.15

	// Query terms of this many characters or fewer don't count toward density.
	minTermLength = 3
)

// queryTerms splits a query into distinct lowercased words longer than
// minTermLength, with surrounding punctuation trimmed.
func queryTerms(query string) []string {
	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if utf8.RuneCountInString(cleaned) <= minTermLength || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		terms = append(terms, cleaned)
	}

	return terms
}

// heuristicBonus scores structural cues independent of either lane.
// phrase must already be lowercased.
func heuristicBonus(phrase string, terms []string, c *core.Chunk) float64 {
	text := strings.ToLower(c.Text)
	bonus := 0.0

	if phrase != "" && strings.Contains(text, phrase) {
		bonus += exactPhraseBonus
	}

	if len(terms) > 0 {
		present := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				present++
			}
		}
		bonus += termDensityBonus * float64(present) / float64(len(terms))
	}

	if c.ChunkIndex == 0 {
		bonus += leadChunkBonus
	}

	return bonus
}

// heuristicBonuses computes bonuses for chunks, omitting those that earn none.
func heuristicBonuses(query string, chunks []*core.Chunk) map[core.ID]float64 {
	phrase := strings.ToLower(strings.TrimSpace(query))
	terms := queryTerms(query)

	bonuses := make(map[core.ID]float64)
	for _, c := range chunks {
		if b := heuristicBonus(phrase, terms, c); b > 0 {
			bonuses[c.Id] = b
		}
	}
	return bonuses
}

// candidateUnion returns the distinct chunks ranked by either lane.
func candidateUnion(lanes ...[]laneHit) []*core.Chunk {
	seen := make(map[core.ID]bool)
	var out []*core.Chunk
	for _, lane := range lanes {
		for _, h := range lane {
			if !seen[h.chunk.Id] {
				seen[h.chunk.Id] = true
				out = append(out, h.chunk)
			}
		}
	}
	return out
}
