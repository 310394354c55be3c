// Package hash provides the digests used by agewitness: sha256 for account
// commitments and blake3 for gossip message ids.
package hash

import (
	"sync"

	"github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
)

// Size of both digests in bytes.
const Size = sha256.Size

// Sum256 returns the sha256 digest of the concatenated chunks.
func Sum256(chunks ...[]byte) [Size]byte {
	hasher := sha256.New()
	for _, chunk := range chunks {
		hasher.Write(chunk)
	}
	var rst [Size]byte
	hasher.Sum(rst[:0])
	return rst
}

var blake3Pool = sync.Pool{
	New: func() any {
		return blake3.New()
	},
}

// Blake3 returns the blake3 digest of the concatenated chunks.
// Hashers are pooled since it is called for every gossip message.
func Blake3(chunks ...[]byte) [Size]byte {
	hasher := blake3Pool.Get().(*blake3.Hasher)
	defer func() {
		hasher.Reset()
		blake3Pool.Put(hasher)
	}()
	for _, chunk := range chunks {
		hasher.Write(chunk)
	}
	var rst [Size]byte
	hasher.Sum(rst[:0])
	return rst
}
