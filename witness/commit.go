// Package witness implements account age witnesses: commitments to payment account
// data signed by the account owner and dated by the issuer.
package witness

import (
	"errors"

	"github.com/spacemeshos/go-agewitness/common/types"
)

var (
	// ErrEmptyAccountFields is returned when committing to empty account data.
	ErrEmptyAccountFields = errors.New("account fields are empty")
	// ErrEmptySalt is returned when committing without a salt.
	ErrEmptySalt = errors.New("salt is empty")
)

// AgeWitnessInput is implemented by payment accounts that can be committed to.
// The returned bytes are the identifying fields of the account in a layout defined
// by the account type.
type AgeWitnessInput interface {
	AgeWitnessInputBytes() []byte
}

// Commit returns sha256(accountFields || salt).
func Commit(accountFields, salt []byte) (types.Hash32, error) {
	if len(accountFields) == 0 {
		return types.EmptyHash32, ErrEmptyAccountFields
	}
	if len(salt) == 0 {
		return types.EmptyHash32, ErrEmptySalt
	}
	return types.CalcHash32(accountFields, salt), nil
}

// CommitAccount commits to the identifying fields of acc.
func CommitAccount(acc AgeWitnessInput, salt []byte) (types.Hash32, error) {
	return Commit(acc.AgeWitnessInputBytes(), salt)
}
