package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

const (
	// DefaultTopK is the result count used when a caller passes topK <= 0.
	DefaultTopK = 10

	// DefaultLaneTimeout bounds each lane's calls to the store and embedder.
	DefaultLaneTimeout = 5 * time.Second
)

// Searcher provides hybrid lexical and semantic retrieval over an evidence store.
// A Searcher holds no per-query state and is safe for concurrent use.
type Searcher struct {
	store       storage.EvidenceStore
	embedder    ai.Embedder
	domain      string
	defaultTopK int
	laneTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDomain restricts every lane to chunks tagged with domain.
// Used to scope a searcher over a shared, global corpus.
func WithDomain(domain string) Option {
	return func(s *Searcher) error {
		s.domain = strings.TrimSpace(domain)
		return nil
	}
}

// WithDefaultTopK sets the result count used when Search is called with topK <= 0.
// Default is DefaultTopK.
func WithDefaultTopK(topK int) Option {
	return func(s *Searcher) error {
		if topK < 1 {
			return ErrInvalidTopK
		}
		s.defaultTopK = topK
		return nil
	}
}

// WithLaneTimeout sets how long each lane may spend in the store or embedder.
// Default is DefaultLaneTimeout.
func WithLaneTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d <= 0 {
			return ErrInvalidLaneTimeout
		}
		s.laneTimeout = d
		return nil
	}
}

// NewSearcher creates a new searcher.
// embedder may be nil, in which case every search runs lexical-only.
func NewSearcher(store storage.EvidenceStore, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		store:       store,
		embedder:    embedder,
		defaultTopK: DefaultTopK,
		laneTimeout: DefaultLaneTimeout,
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")
	if s.domain != "" {
		s.logger = s.logger.With("domain", s.domain)
	}

	return s, nil
}

// Domain returns the domain tag the searcher is scoped to, or "" when unscoped.
func (s *Searcher) Domain() string {
	return s.domain
}

// Search returns up to topK chunks relevant to query, best first.
// filter restricts results to the given source types; nil or empty admits all.
// topK <= 0 uses the configured default.
//
// Search never fails: an unavailable lane degrades the ranking and an empty
// corpus yields an empty list.
func (s *Searcher) Search(ctx context.Context, query string, filter []core.SourceType, topK int) []*core.RetrievalResult {
	return s.SearchWithMonitor(ctx, query, filter, topK, nil)
}

// SearchWithMonitor is Search with a monitor that receives callbacks at each
// stage of retrieval.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, filter []core.SourceType, topK int, monitor SearchMonitor) []*core.RetrievalResult {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	results := []*core.RetrievalResult{}
	query = strings.TrimSpace(query)
	if query == "" {
		monitor.Finish(results)
		return results
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	logger := s.logger.With("query_id", uuid.NewString())
	f := &storage.Filter{SourceTypes: filter, Domain: s.domain}

	// The lexical lane and the query embedding are independent; the semantic
	// candidate build needs both.
	var (
		lex      lexicalOutcome
		queryVec []float32
		embedErr error
		g        errgroup.Group
	)
	g.Go(func() error {
		lex = s.lexicalLane(ctx, logger, query, f, topK)
		return nil
	})
	g.Go(func() error {
		queryVec, embedErr = s.embedQuery(ctx, query)
		return nil
	})
	_ = g.Wait()

	if lex.err != nil {
		monitor.LaneSkipped(LaneLexical, lex.err)
	}
	monitor.AfterLexicalLane(laneIDs(lex.ranked), laneScores(lex.ranked))

	var semantic []laneHit
	if embedErr != nil {
		logger.Warn("semantic lane skipped", "err", embedErr)
		monitor.LaneSkipped(LaneSemantic, embedErr)
	} else {
		sem, exhaustive, err := s.semanticLane(ctx, queryVec, lex.seeds, f, topK)
		if err != nil {
			logger.Warn("semantic lane failed", "err", err)
			monitor.LaneSkipped(LaneSemantic, err)
		} else {
			semantic = sem
			monitor.AfterSemanticLane(laneIDs(semantic), laneScores(semantic), exhaustive)
			logger.Debug("semantic lane", "hits", len(semantic), "exhaustive", exhaustive)
		}
	}
	logger.Debug("lexical lane", "hits", len(lex.ranked), "seeds", len(lex.seeds))

	bonuses := heuristicBonuses(query, candidateUnion(lex.ranked, semantic))
	monitor.AfterHeuristics(bonuses)

	results = fuse(lex.ranked, semantic, bonuses, topK)
	logger.Debug("search complete", "results", len(results))
	monitor.Finish(results)
	return results
}

// embedQuery embeds the query under the lane timeout.
func (s *Searcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.embedder == nil {
		return nil, ErrEmbedderUnavailable
	}
	laneCtx, cancel := context.WithTimeout(ctx, s.laneTimeout)
	defer cancel()

	vec, err := s.embedder.EmbedText(laneCtx, query)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vec, nil
}

func laneIDs(hits []laneHit) []core.ID {
	ids := make([]core.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.chunk.Id
	}
	return ids
}

func laneScores(hits []laneHit) []float64 {
	scores := make([]float64, len(hits))
	for i, h := range hits {
		scores[i] = h.score
	}
	return scores
}
