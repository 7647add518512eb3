package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// LexicalSearch runs query through the FTS5 index and returns up to limit
// hits ranked by BM25. Scores are negated BM25 values, so higher is better.
// The query uses FTS5 syntax; errors caused by malformed syntax are
// returned as *storage.IndexQueryError.
func (s *Store) LexicalSearch(ctx context.Context, query string, limit int) ([]storage.LexicalHit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if strings.TrimSpace(query) == "" {
		return nil, &storage.IndexQueryError{Query: query, Err: errors.New("empty query")}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.`+strings.ReplaceAll(chunkColumns, ", ", ", c.")+`, hits.score
		FROM (
			SELECT rowid AS id, -bm25(chunks_fts) AS score
			FROM chunks_fts
			WHERE chunks_fts MATCH ?
			ORDER BY rank
			LIMIT ?
		) AS hits
		JOIN chunks c ON c.id = hits.id
		ORDER BY hits.score DESC, c.id
	`, query, limit)
	if err != nil {
		return nil, s.classify(query, err)
	}
	defer rows.Close()

	var hits []storage.LexicalHit
	for rows.Next() {
		var (
			chunk core.Chunk
			hit   storage.LexicalHit
			rowID int64
			st    string
			vec   []byte
		)
		err := rows.Scan(&rowID, &chunk.SourceId, &st, &chunk.Domain, &chunk.ChunkIndex,
			&chunk.StartOffset, &chunk.EndOffset, &chunk.Text, &vec, &hit.Score)
		if err != nil {
			return nil, err
		}
		chunk.Id = fromRowID(rowID)
		chunk.SourceType = core.SourceType(st)
		if chunk.Embedding, err = storage.UnmarshalVector(vec); err != nil {
			return nil, err
		}
		hit.Chunk = &chunk
		hits = append(hits, hit)
	}
	// FTS5 may only report syntax problems once stepping starts
	if err := rows.Err(); err != nil {
		return nil, s.classify(query, err)
	}
	return hits, nil
}

func (s *Store) classify(query string, err error) error {
	if isFTSSyntaxError(err) {
		s.logger.Debug("fts query rejected", "query", query, "err", err)
		return &storage.IndexQueryError{Query: query, Err: err}
	}
	return err
}

// isFTSSyntaxError checks if an error is likely an FTS5 query syntax error.
func isFTSSyntaxError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "fts5") ||
		strings.Contains(msg, "syntax error") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "unterminated string") ||
		strings.Contains(msg, "unknown special query")
}
