package storage

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/poiesic/groundwork/core"
)

// SnapshotMagic opens every snapshot stream. The version number changes
// whenever the chunk encoding does.
const SnapshotMagic = "groundwork-snapshot-1\n"

const (
	snapshotPageSize = 256

	// maxSnapshotRecord bounds one encoded chunk so a corrupt length prefix
	// cannot force a huge allocation.
	maxSnapshotRecord = 64 << 20
)

// ExportSnapshot writes every chunk in repo to w in ID order and returns how
// many chunks were written. Each record is a uvarint length followed by the
// chunk's mus encoding, embeddings included.
func ExportSnapshot(ctx context.Context, repo ChunkRepository, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(SnapshotMagic); err != nil {
		return 0, err
	}

	var (
		written int
		from    core.ID
		prefix  [binary.MaxVarintLen64]byte
	)
	for {
		chunks, err := repo.ScanChunks(ctx, from, snapshotPageSize)
		if err != nil {
			return written, fmt.Errorf("scanning chunks: %w", err)
		}
		for _, c := range chunks {
			data := MarshalChunk(c)
			n := binary.PutUvarint(prefix[:], uint64(len(data)))
			if _, err := bw.Write(prefix[:n]); err != nil {
				return written, err
			}
			if _, err := bw.Write(data); err != nil {
				return written, err
			}
			written++
		}

		if len(chunks) < snapshotPageSize {
			break
		}
		last := chunks[len(chunks)-1].Id
		if last == math.MaxUint64 {
			break
		}
		from = last + 1
	}
	return written, bw.Flush()
}

// ReadSnapshot decodes every chunk of a snapshot stream.
func ReadSnapshot(r io.Reader) ([]*core.Chunk, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(SnapshotMagic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != SnapshotMagic {
		return nil, fmt.Errorf("%w: missing snapshot header", ErrInvalidSnapshot)
	}

	var chunks []*core.Chunk
	for {
		size, err := binary.ReadUvarint(br)
		if errors.Is(err, io.EOF) {
			return chunks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidSnapshot, len(chunks), err)
		}
		if size == 0 || size > maxSnapshotRecord {
			return nil, fmt.Errorf("%w: record %d has length %d", ErrInvalidSnapshot, len(chunks), size)
		}

		data := make([]byte, size)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidSnapshot, len(chunks), err)
		}
		c, err := UnmarshalChunk(data)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidSnapshot, len(chunks), err)
		}
		chunks = append(chunks, c)
	}
}

// ImportSnapshot loads a snapshot into repo and returns how many chunks it
// stored. Every source present in the snapshot is replaced in a single
// ReplaceSources call; sources absent from it are left alone. A snapshot
// that fails to decode changes nothing.
func ImportSnapshot(ctx context.Context, repo ChunkRepository, r io.Reader) (int, error) {
	chunks, err := ReadSnapshot(r)
	if err != nil {
		return 0, err
	}

	var sourceIds []string
	seen := make(map[string]bool)
	for _, c := range chunks {
		if !seen[c.SourceId] {
			seen[c.SourceId] = true
			sourceIds = append(sourceIds, c.SourceId)
		}
	}

	if _, err := repo.ReplaceSources(ctx, sourceIds, chunks...); err != nil {
		return 0, fmt.Errorf("storing snapshot: %w", err)
	}
	return len(chunks), nil
}
