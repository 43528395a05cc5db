// Package hash provides pooled blake3 hashing.
package hash

import (
	"sync"

	"github.com/zeebo/blake3"
)

// Size is the size of a digest in bytes.
const Size = 32

// Digest is a blake3 digest.
type Digest [Size]byte

// pool amortizes allocations of blake3 hashers over time.
var pool = &sync.Pool{
	New: func() any {
		return blake3.New()
	},
}

// GetHasher will get a blake3 hasher from the pool.
// It may or may not allocate a new one. The hasher must be returned with PutHasher.
func GetHasher() *blake3.Hasher {
	return pool.Get().(*blake3.Hasher)
}

// PutHasher resets the hasher and returns it back to the pool.
func PutHasher(hasher *blake3.Hasher) {
	hasher.Reset()
	pool.Put(hasher)
}

// Sum returns the digest of the concatenated chunks.
func Sum(chunks ...[]byte) (d Digest) {
	h := GetHasher()
	defer PutHasher(h)
	for _, c := range chunks {
		h.Write(c)
	}
	h.Sum(d[:0])
	return d
}
