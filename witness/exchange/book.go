package exchange

import (
	"fmt"
	"sync"

	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/witness"
)

// Account is a locally owned payment account the node can prove.
type Account struct {
	Fields []byte
	Salt   []byte
	Signer witness.Signer
}

// AccountBook indexes local accounts by their commitment.
type AccountBook struct {
	mu       sync.RWMutex
	accounts map[types.Hash32]Account
}

// NewAccountBook creates an empty AccountBook.
func NewAccountBook() *AccountBook {
	return &AccountBook{accounts: map[types.Hash32]Account{}}
}

// Add registers the account and returns its commitment.
func (b *AccountBook) Add(account Account) (types.Hash32, error) {
	if account.Signer == nil {
		return types.Hash32{}, &witness.SigningError{Err: witness.ErrNoSigner}
	}
	if len(account.Fields) > MaxAccountFieldsSize || len(account.Salt) > MaxSaltSize {
		return types.Hash32{}, fmt.Errorf("account data exceeds %d/%d bytes", MaxAccountFieldsSize, MaxSaltSize)
	}
	digest, err := witness.Commit(account.Fields, account.Salt)
	if err != nil {
		return types.Hash32{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[digest] = account
	return digest, nil
}

// Get returns the account with the given commitment.
func (b *AccountBook) Get(id types.Hash32) (Account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	account, exists := b.accounts[id]
	return account, exists
}
