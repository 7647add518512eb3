// Codecs for the stored record types. Regenerate with go generate ./core.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

var SourceTypeMUS = sourceTypeMUS{}

type sourceTypeMUS struct{}

func (sourceTypeMUS) Marshal(v SourceType, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (sourceTypeMUS) Unmarshal(bs []byte) (v SourceType, n int, err error) {
	s, n, err := ord.String.Unmarshal(bs)
	return SourceType(s), n, err
}

func (sourceTypeMUS) Size(v SourceType) (size int) {
	return ord.String.Size(string(v))
}

var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.SourceId, bs[n:])
	n += SourceTypeMUS.Marshal(v.SourceType, bs[n:])
	n += ord.String.Marshal(v.Domain, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += VectorMUS.Marshal(v.Embedding, bs[n:])
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(v.StartOffset, bs[n:])
	n += varint.Int.Marshal(v.EndOffset, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var m int
	if v.Id, m, err = IDMUS.Unmarshal(bs); err != nil {
		return v, m, err
	}
	n = m
	if v.SourceId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.SourceType, m, err = SourceTypeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Domain, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Embedding, m, err = VectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ChunkIndex, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.StartOffset, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.EndOffset, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.SourceId)
	size += SourceTypeMUS.Size(v.SourceType)
	size += ord.String.Size(v.Domain)
	size += ord.String.Size(v.Text)
	size += VectorMUS.Size(v.Embedding)
	size += varint.Int.Size(v.ChunkIndex)
	size += varint.Int.Size(v.StartOffset)
	size += varint.Int.Size(v.EndOffset)
	return size
}
