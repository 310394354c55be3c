package witness

import (
	"sync"

	"github.com/spacemeshos/go-agewitness/common/types"
)

// Store indexes witnesses by commitment.
//
// Presence in the store means the witness was observed, not that it was verified.
// Records are never removed during the process lifetime.
type Store struct {
	mu        sync.RWMutex
	witnesses map[types.Hash32]*types.Witness
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{witnesses: map[types.Hash32]*types.Witness{}}
}

// Add inserts w if no witness with the same commitment is stored.
// Returns false if w was dropped as a duplicate.
func (s *Store) Add(w *types.Witness) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.witnesses[w.ID()]; exists {
		return false
	}
	s.witnesses[w.ID()] = w
	storeSize.Set(float64(len(s.witnesses)))
	return true
}

// Get returns the witness with the given commitment.
func (s *Store) Get(id types.Hash32) (*types.Witness, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, exists := s.witnesses[id]
	return w, exists
}

// GetHex returns the witness with the hex encoded commitment.
func (s *Store) GetHex(digest string) (*types.Witness, bool) {
	id, err := types.HexToHash32(digest)
	if err != nil {
		return nil, false
	}
	return s.Get(id)
}

// Has checks if the witness with the given commitment is stored.
func (s *Store) Has(id types.Hash32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.witnesses[id]
	return exists
}

// Len returns number of stored witnesses.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.witnesses)
}
