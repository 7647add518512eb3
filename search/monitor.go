package search

import (
	"github.com/poiesic/groundwork/core"
)

// Lane names passed to SearchMonitor.LaneSkipped.
const (
	LaneLexical  = "lexical"
	LaneSemantic = "semantic"
)

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	// AfterLexicalLane receives the normalized, filtered lexical ranking.
	AfterLexicalLane(ids []core.ID, scores []float64)
	// AfterSemanticLane receives the cosine ranking. exhaustive is true
	// when the candidate set fell back to a full corpus scan.
	AfterSemanticLane(ids []core.ID, scores []float64, exhaustive bool)
	LaneSkipped(lane string, err error)
	AfterHeuristics(bonuses map[core.ID]float64)
	Finish(results []*core.RetrievalResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                     {}
func (n *noopMonitor) AfterLexicalLane(_ []core.ID, _ []float64)          {}
func (n *noopMonitor) AfterSemanticLane(_ []core.ID, _ []float64, _ bool) {}
func (n *noopMonitor) LaneSkipped(_ string, _ error)                      {}
func (n *noopMonitor) AfterHeuristics(_ map[core.ID]float64)              {}
func (n *noopMonitor) Finish(_ []*core.RetrievalResult)                   {}
