package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID derives the identifier of the chunk at index within a source.
// Re-ingesting the same source produces the same chunk IDs.
func ChunkID(sourceID string, index int) ID {
	return IDFromContent(sourceID + "#" + strconv.Itoa(index))
}

// SourceType classifies the document a chunk was cut from.
type SourceType string

const (
	SourceTypeSnapshot SourceType = "snapshot"
	SourceTypeArtifact SourceType = "artifact"
	SourceTypeCapture  SourceType = "capture"
	SourceTypeCode     SourceType = "code"
	SourceTypeDocument SourceType = "document"
	SourceTypeReport   SourceType = "report"
	SourceTypeStrategy SourceType = "strategy"
)

// SourceTypes lists every valid SourceType.
var SourceTypes = []SourceType{
	SourceTypeSnapshot,
	SourceTypeArtifact,
	SourceTypeCapture,
	SourceTypeCode,
	SourceTypeDocument,
	SourceTypeReport,
	SourceTypeStrategy,
}

// Chunk is a contiguous span of text from a source document, the unit of retrieval.
// Chunks are immutable once stored.
type Chunk struct {
	Id          ID
	SourceId    string // Lookup key of the originating document
	SourceType  SourceType
	Domain      string // Optional domain tag used by global corpora
	Text        string
	Embedding   []float32 // Nil when embedding failed or has not run
	ChunkIndex  int       // Ordinal within the source, 0 is the lead chunk
	StartOffset int       // Character span in the source text
	EndOffset   int
}

// HasEmbedding reports whether the chunk can take part in vector scoring.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Signals records how a result's score was assembled.
type Signals struct {
	LexicalRank  int     // Position in the lexical lane, -1 when absent
	SemanticRank int     // Position in the semantic lane, -1 when absent
	Bonus        float64 // Heuristic bonus before scaling
}

// RetrievalResult is one ranked hit returned by a search.
// Score is only comparable with other results of the same query.
type RetrievalResult struct {
	Chunk      *Chunk
	Score      float64
	SourceId   string
	SourceType SourceType
	Signals    Signals
}
