package witness

import (
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/signing"
)

//go:generate mockgen -typed -package=witness -destination=./mocks.go -source=./interface.go

// Signer is the signing identity of the account owner.
type Signer interface {
	Sign(signing.Domain, []byte) types.EdSignature
	NodeID() types.NodeID
}

type sigVerifier interface {
	Verify(signing.Domain, types.NodeID, []byte, types.EdSignature) bool
}
