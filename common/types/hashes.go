package types

import (
	"encoding/hex"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-agewitness/hash"
)

const (
	// Hash32Length is 32, the expected length of the hash.
	Hash32Length = 32
)

// Hash32 represents the 32-byte sha256 hash of arbitrary data.
type Hash32 [Hash32Length]byte

// EmptyHash32 is a canonical empty Hash32.
var EmptyHash32 = Hash32{}

// CalcHash32 returns the 32-byte sha256 sum of the given chunks.
func CalcHash32(chunks ...[]byte) Hash32 {
	return hash.Sum256(chunks...)
}

// BytesToHash copies b into a Hash32. Shorter inputs are right-padded with zeros.
func BytesToHash(b []byte) (h Hash32) {
	copy(h[:], b)
	return h
}

// HexToHash32 parses a hex encoded hash. Only exact length inputs are accepted.
func HexToHash32(s string) (Hash32, error) {
	var h Hash32
	if hex.DecodedLen(len(s)) != Hash32Length {
		return h, fmt.Errorf("invalid hash length %d", len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("decode hash %q: %w", s, err)
	}
	return h, nil
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash32) Bytes() []byte { return h[:] }

// Hex converts a hash to a hex string.
func (h Hash32) Hex() string { return hex.EncodeToString(h[:]) }

// String implements the stringer interface.
func (h Hash32) String() string {
	return h.Hex()
}

// ShortString returns the first 10 characters of the hash, for logging purposes.
func (h Hash32) ShortString() string {
	return Shorten(h.Hex(), 10)
}

// Shorten shortens a string to a specified length.
func Shorten(s string, maxlen int) string {
	return s[:min(maxlen, len(s))]
}

// MarshalText returns the hex representation of h.
func (h Hash32) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash32) UnmarshalText(input []byte) error {
	parsed, err := HexToHash32(string(input))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// EncodeScale implements scale codec interface.
func (h *Hash32) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, h[:])
}

// DecodeScale implements scale codec interface.
func (h *Hash32) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, h[:])
}

