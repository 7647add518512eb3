package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/ingestion"
	"github.com/poiesic/groundwork/search"
	"github.com/poiesic/groundwork/storage"
)

// maxSnippet caps how much chunk text a result prints.
const maxSnippet = 280

var (
	headerColor  = lipgloss.Color("#F780FF") // Bright pink
	sourceColor  = lipgloss.Color("#BD93F9") // Purple
	scoreColor   = lipgloss.Color("#FF79C6") // Pink
	textColor    = lipgloss.Color("#E9E9F4") // Light purple/white
	mutedColor   = lipgloss.Color("#6272A4") // Muted purple
	warningColor = lipgloss.Color("#FF5555") // Red

	headerStyle = lipgloss.NewStyle().
			Foreground(headerColor).
			Bold(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(sourceColor)

	scoreStyle = lipgloss.NewStyle().
			Foreground(scoreColor)

	textStyle = lipgloss.NewStyle().
			Foreground(textColor).
			PaddingLeft(4)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)
)

func renderResults(w io.Writer, query string, results []*core.RetrievalResult, explain bool) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d results for %q", len(results), query)))
	for i, r := range results {
		fmt.Fprintf(w, "%2d. %s %s\n", i+1,
			sourceStyle.Render(fmt.Sprintf("[%s] %s#%d", r.SourceType, r.SourceId, r.Chunk.ChunkIndex)),
			scoreStyle.Render(fmt.Sprintf("%.4f", r.Score)))
		if explain {
			fmt.Fprintln(w, mutedStyle.Render("    "+explainSignals(r.Signals)))
		}
		fmt.Fprintln(w, textStyle.Render(snippet(r.Chunk.Text)))
	}
}

func explainSignals(s core.Signals) string {
	rank := func(r int) string {
		if r < 0 {
			return "-"
		}
		return fmt.Sprintf("#%d", r+1)
	}
	return fmt.Sprintf("lexical %s  semantic %s  bonus %.2f", rank(s.LexicalRank), rank(s.SemanticRank), s.Bonus)
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxSnippet {
		return text
	}
	return string(runes[:maxSnippet]) + "…"
}

func renderDiagnostics(w io.Writer, m *explainMonitor) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Lanes"))
	fmt.Fprintf(w, "  lexical:  %d hits\n", m.lexicalHits)
	if m.semanticRan {
		scan := "seeded"
		if m.exhaustive {
			scan = "exhaustive"
		}
		fmt.Fprintf(w, "  semantic: %d hits (%s)\n", m.semanticHits, scan)
	}
	fmt.Fprintf(w, "  boosted:  %d candidates\n", m.boosted)

	lanes := make([]string, 0, len(m.skipped))
	for lane := range m.skipped {
		lanes = append(lanes, lane)
	}
	slices.Sort(lanes)
	for _, lane := range lanes {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("  %s lane skipped: %v", lane, m.skipped[lane])))
	}
}

func renderReport(w io.Writer, r *ingestion.Report) {
	fmt.Fprintln(w, headerStyle.Render("Ingested"))
	fmt.Fprintf(w, "  sources:  %d\n", r.Sources)
	fmt.Fprintf(w, "  chunks:   %d\n", r.Chunks)
	fmt.Fprintf(w, "  embedded: %d\n", r.Embedded)
	if r.Replaced > 0 {
		fmt.Fprintf(w, "  replaced: %d\n", r.Replaced)
	}
	if n := r.Unembedded(); n > 0 {
		fmt.Fprintln(w, warningStyle.Render(
			fmt.Sprintf("  %d chunks have no embedding, run 'groundwork reembed --missing-only' later", n)))
	}
}

func renderStats(w io.Writer, model string, s *storage.Stats, cached int) {
	fmt.Fprintln(w, headerStyle.Render("Corpus"))
	fmt.Fprintf(w, "  model:    %s\n", model)
	fmt.Fprintf(w, "  sources:  %d\n", s.Sources)
	fmt.Fprintf(w, "  chunks:   %d\n", s.Chunks)
	fmt.Fprintf(w, "  embedded: %d\n", s.Embedded)
	fmt.Fprintf(w, "  cached:   %d vectors\n", cached)
	for _, st := range core.SourceTypes {
		if n := s.BySourceType[st]; n > 0 {
			fmt.Fprintf(w, "  %-9s %d\n", st+":", n)
		}
	}
}

// explainMonitor collects lane diagnostics for --explain.
type explainMonitor struct {
	lexicalHits  int
	semanticHits int
	semanticRan  bool
	exhaustive   bool
	boosted      int
	skipped      map[string]error
}

var _ search.SearchMonitor = (*explainMonitor)(nil)

func (m *explainMonitor) Start(_ string) {
	m.skipped = make(map[string]error)
}

func (m *explainMonitor) AfterLexicalLane(ids []core.ID, _ []float64) {
	m.lexicalHits = len(ids)
}

func (m *explainMonitor) AfterSemanticLane(ids []core.ID, _ []float64, exhaustive bool) {
	m.semanticRan = true
	m.semanticHits = len(ids)
	m.exhaustive = exhaustive
}

func (m *explainMonitor) LaneSkipped(lane string, err error) {
	m.skipped[lane] = err
}

func (m *explainMonitor) AfterHeuristics(bonuses map[core.ID]float64) {
	m.boosted = len(bonuses)
}

func (m *explainMonitor) Finish(_ []*core.RetrievalResult) {}
