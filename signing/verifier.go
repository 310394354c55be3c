package signing

import (
	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/spacemeshos/go-agewitness/common/types"
)

// Domain separates signatures produced for different purposes with the same key.
type Domain byte

const (
	// WITNESS is used to sign the commitment of an age witness.
	WITNESS Domain = 0
	// NONCE is used to sign a verifier's liveness challenge.
	NONCE Domain = 1
)

// String returns the string representation of a domain.
func (d Domain) String() string {
	switch d {
	case WITNESS:
		return "WITNESS"
	case NONCE:
		return "NONCE"
	default:
		return "UNKNOWN"
	}
}

// signedMessage is prefix || domain || m.
func signedMessage(prefix []byte, d Domain, m []byte) []byte {
	msg := make([]byte, 0, len(prefix)+1+len(m))
	msg = append(msg, prefix...)
	msg = append(msg, byte(d))
	return append(msg, m...)
}

// VerifierOpt configures an EdVerifier.
type VerifierOpt func(*EdVerifier)

// WithVerifierPrefix sets the network prefix expected in signed messages.
func WithVerifierPrefix(prefix []byte) VerifierOpt {
	return func(v *EdVerifier) {
		v.prefix = prefix
	}
}

// EdVerifier verifies ed25519 signatures produced by an EdSigner with the same prefix.
type EdVerifier struct {
	prefix []byte
}

// NewEdVerifier creates an EdVerifier.
func NewEdVerifier(opts ...VerifierOpt) *EdVerifier {
	v := &EdVerifier{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify reports whether sig is a signature of m in domain d by nodeID.
func (v *EdVerifier) Verify(d Domain, nodeID types.NodeID, m []byte, sig types.EdSignature) bool {
	return ed25519.Verify(nodeID[:], signedMessage(v.prefix, d, m), sig[:])
}
