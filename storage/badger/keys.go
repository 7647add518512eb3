package badger

import (
	"encoding/binary"

	"github.com/poiesic/groundwork/core"
)

// Key prefixes for different data types
const (
	vectorPrefix = "vec:"
)

// makeVectorKey generates a key for a cached vector by content hash.
// Format: prefix + BigEndian(hash)
func makeVectorKey(hash core.ID) []byte {
	buf := make([]byte, len(vectorPrefix)+8)
	offset := copy(buf, vectorPrefix)
	// BigEndian keeps keys sorted by hash
	binary.BigEndian.PutUint64(buf[offset:], uint64(hash))
	return buf
}

// vectorKeyHash extracts the content hash from a vector key.
func vectorKeyHash(key []byte) (core.ID, bool) {
	if len(key) != len(vectorPrefix)+8 || string(key[:len(vectorPrefix)]) != vectorPrefix {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(vectorPrefix):])), true
}
