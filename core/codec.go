package core

import (
	"fmt"

	"github.com/mus-format/mus-go/varint"
)

// VectorMUS serializes embedding vectors as a length prefix followed by
// varint-encoded float32 values. A nil vector round-trips as nil.
// It encodes the standalone embedding BLOBs, so it is kept out of the
// generated codecs.
var VectorMUS = vectorMUS{}

type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, f := range v {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	// every element takes at least one byte
	if length > uint64(len(bs)-n) {
		return nil, n, fmt.Errorf("%w: vector length %d", ErrTruncatedData, length)
	}
	v = make([]float32, length)
	for i := range v {
		f, m, err := varint.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[i] = f
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, f := range v {
		size += varint.Float32.Size(f)
	}
	return size
}
