package witness

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultNonceCacheSize is the number of issued nonces remembered by a NonceSource.
const DefaultNonceCacheSize = 1 << 16

// maxNonceAttempts bounds the number of draws when the random source repeats itself.
const maxNonceAttempts = 16

var errNonceExhausted = errors.New("failed to draw an unused nonce")

// Session is a single verification attempt.
type Session struct {
	ID    uuid.UUID
	Nonce uint64
}

// NonceSourceOpt configures NonceSource.
type NonceSourceOpt func(*NonceSource)

// WithNonceReader replaces crypto/rand as the source of nonces.
func WithNonceReader(r io.Reader) NonceSourceOpt {
	return func(s *NonceSource) {
		s.rand = r
	}
}

// NonceSource draws liveness challenges and never hands out the same nonce twice
// while it is remembered.
type NonceSource struct {
	mu     sync.Mutex
	rand   io.Reader
	issued *lru.Cache[uint64, uuid.UUID]
}

// NewNonceSource creates a NonceSource remembering up to size issued nonces.
func NewNonceSource(size int, opts ...NonceSourceOpt) (*NonceSource, error) {
	issued, err := lru.New[uint64, uuid.UUID](size)
	if err != nil {
		return nil, fmt.Errorf("create nonce cache: %w", err)
	}
	s := &NonceSource{rand: rand.Reader, issued: issued}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next starts a new session with a fresh nonce.
func (s *NonceSource) Next() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf [8]byte
	for range maxNonceAttempts {
		if _, err := io.ReadFull(s.rand, buf[:]); err != nil {
			return Session{}, fmt.Errorf("read nonce: %w", err)
		}
		nonce := binary.BigEndian.Uint64(buf[:])
		if s.issued.Contains(nonce) {
			continue
		}
		id := uuid.New()
		s.issued.Add(nonce, id)
		return Session{ID: id, Nonce: nonce}, nil
	}
	return Session{}, errNonceExhausted
}

// Session returns the session that the nonce was issued for.
func (s *NonceSource) Session(nonce uint64) (uuid.UUID, bool) {
	return s.issued.Peek(nonce)
}
