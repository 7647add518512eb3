package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

const chunkColumns = "id, source_id, source_type, domain, chunk_index, start_offset, end_offset, text, embedding"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*core.Chunk, error) {
	var (
		c          core.Chunk
		rowID      int64
		sourceType string
		embedding  []byte
	)
	err := row.Scan(&rowID, &c.SourceId, &sourceType, &c.Domain, &c.ChunkIndex,
		&c.StartOffset, &c.EndOffset, &c.Text, &embedding)
	if err != nil {
		return nil, err
	}
	c.Id = fromRowID(rowID)
	c.SourceType = core.SourceType(sourceType)
	if c.Embedding, err = storage.UnmarshalVector(embedding); err != nil {
		return nil, fmt.Errorf("decoding embedding of chunk %d: %w", c.Id, err)
	}
	return &c, nil
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]*core.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*core.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// vectorArg binds missing embeddings as NULL.
func vectorArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return storage.MarshalVector(v)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// AddChunks stores chunks in a single transaction.
// Chunks whose ID already exists are skipped since chunks are immutable.
func (s *Store) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	_, err := s.ReplaceSources(ctx, nil, chunks...)
	return err
}

// ReplaceSources deletes every chunk of sourceIds and stores chunks in one
// transaction, returning how many chunks were deleted. When any insert fails
// the transaction rolls back and the old chunks stay in place.
func (s *Store) ReplaceSources(ctx context.Context, sourceIds []string, chunks ...*core.Chunk) (int, error) {
	for _, c := range chunks {
		if err := core.ValidateChunk(c); err != nil {
			return 0, err
		}
	}
	if len(sourceIds) == 0 && len(chunks) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	removed, err := deleteSources(ctx, tx, sourceIds)
	if err != nil {
		return 0, err
	}
	if err := insertChunks(ctx, tx, chunks); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing chunks: %w", err)
	}
	return removed, nil
}

func deleteSources(ctx context.Context, tx *sql.Tx, sourceIds []string) (int, error) {
	removed := 0
	for _, sourceId := range sourceIds {
		res, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_id = ?", sourceId)
		if err != nil {
			return 0, fmt.Errorf("deleting source %q: %w", sourceId, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		removed += int(n)
	}
	return removed, nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (`+chunkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx, toRowID(c.Id), c.SourceId, string(c.SourceType), c.Domain,
			c.ChunkIndex, c.StartOffset, c.EndOffset, c.Text, vectorArg(c.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Id, err)
		}
	}
	return nil
}

// GetChunks retrieves chunks by ID, ordered by ID.
func (s *Store) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = toRowID(id)
	}
	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE id IN ("+placeholders(len(ids))+") ORDER BY id", args...)
}

// UpdateEmbeddings replaces embeddings of existing chunks.
func (s *Store) UpdateEmbeddings(ctx context.Context, embeddings map[core.ID][]float32) error {
	if len(embeddings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE chunks SET embedding = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	for id, vector := range embeddings {
		res, err := stmt.ExecContext(ctx, vectorArg(vector), toRowID(id))
		if err != nil {
			return fmt.Errorf("updating embedding of chunk %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("chunk %d: %w", id, storage.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embeddings: %w", err)
	}
	return nil
}

// DeleteSource removes every chunk belonging to sourceId.
func (s *Store) DeleteSource(ctx context.Context, sourceId string) (int, error) {
	return s.ReplaceSources(ctx, []string{sourceId})
}

// ScanChunks returns up to limit chunks with ID >= from, ordered by ID.
func (s *Store) ScanChunks(ctx context.Context, from core.ID, limit int) ([]*core.Chunk, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE id >= ? ORDER BY id LIMIT ?", toRowID(from), limit)
}

// ChunksBySourceIds returns all chunks of the given sources.
func (s *Store) ChunksBySourceIds(ctx context.Context, sourceIds []string) ([]*core.Chunk, error) {
	if len(sourceIds) == 0 {
		return nil, nil
	}
	args := make([]any, len(sourceIds))
	for i, id := range sourceIds {
		args[i] = id
	}
	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE source_id IN ("+placeholders(len(sourceIds))+
			") ORDER BY source_id, chunk_index", args...)
}

// AllChunks returns every chunk passing filter, ordered by ID.
func (s *Store) AllChunks(ctx context.Context, filter *storage.Filter) ([]*core.Chunk, error) {
	var (
		where []string
		args  []any
	)
	if filter != nil {
		if len(filter.SourceTypes) > 0 {
			where = append(where, "source_type IN ("+placeholders(len(filter.SourceTypes))+")")
			for _, st := range filter.SourceTypes {
				args = append(args, string(st))
			}
		}
		if filter.Domain != "" {
			where = append(where, "domain = ?")
			args = append(args, filter.Domain)
		}
	}

	query := "SELECT " + chunkColumns + " FROM chunks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	return s.queryChunks(ctx, query, args...)
}

// Stats reports chunk, embedding, source and per-type counts.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := &storage.Stats{BySourceType: make(map[core.SourceType]int)}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(embedding),
		       COUNT(DISTINCT source_id)
		FROM chunks
	`)
	if err := row.Scan(&stats.Chunks, &stats.Embedded, &stats.Sources); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source_type, COUNT(*) FROM chunks GROUP BY source_type")
	if err != nil {
		return nil, fmt.Errorf("counting source types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			st    string
			count int
		)
		if err := rows.Scan(&st, &count); err != nil {
			return nil, err
		}
		stats.BySourceType[core.SourceType(st)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
