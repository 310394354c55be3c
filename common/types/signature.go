package types

import (
	"encoding/hex"

	"github.com/spacemeshos/go-scale"
)

const (
	// EdSignatureSize is the size of an ed25519 signature in bytes.
	EdSignatureSize = 64
	// NodeIDSize is the size of an ed25519 public key in bytes.
	NodeIDSize = Hash32Length
)

// EdSignature is an ed25519 signature.
type EdSignature [EdSignatureSize]byte

// EmptyEdSignature is a canonical empty signature.
var EmptyEdSignature EdSignature

// BytesToEdSignature copies buf into an EdSignature.
func BytesToEdSignature(buf []byte) (sig EdSignature) {
	copy(sig[:], buf)
	return sig
}

// Bytes returns the signature as a byte slice.
func (s EdSignature) Bytes() []byte { return s[:] }

// String returns the hex representation of the signature.
func (s EdSignature) String() string {
	return hex.EncodeToString(s[:])
}

// EncodeScale implements scale codec interface.
func (s *EdSignature) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, s[:])
}

// DecodeScale implements scale codec interface.
func (s *EdSignature) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, s[:])
}

// NodeID is the ed25519 public key of a signing identity.
type NodeID Hash32

// EmptyNodeID is a canonical empty NodeID.
var EmptyNodeID NodeID

// BytesToNodeID is a helper to copy buffer into NodeID struct.
func BytesToNodeID(buf []byte) (id NodeID) {
	copy(id[:], buf)
	return id
}

// Bytes returns the byte representation of the public key.
func (id NodeID) Bytes() []byte {
	return id[:]
}

// String returns a string representation of the NodeID, for logging purposes.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// ShortString returns the first 5 characters of the ID, for logging purposes.
func (id NodeID) ShortString() string {
	return Shorten(id.String(), 5)
}

// EncodeScale implements scale codec interface.
func (id *NodeID) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, id[:])
}

// DecodeScale implements scale codec interface.
func (id *NodeID) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, id[:])
}
