package witness

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/tradelimit"
)

// Subject is the witness a trade limit is computed for.
type Subject struct {
	witness *types.Witness
	trusted bool
}

// Self is the witness of a local account, trusted by construction.
func Self(w *types.Witness) Subject {
	return Subject{witness: w, trusted: w != nil}
}

// Peer is a counter-party witness together with the result of its verification.
// Unless the result is accepted the witness is treated as brand new.
func Peer(w *types.Witness, result Result) Subject {
	return Subject{witness: w, trusted: w != nil && result.Accepted()}
}

// ServiceOpt configures Service.
type ServiceOpt func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *zap.Logger) ServiceOpt {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithServiceClock sets the clock used to compute witness age.
func WithServiceClock(clock clockwork.Clock) ServiceOpt {
	return func(s *Service) {
		s.clock = clock
	}
}

// Service is the entry point for trade and offer logic.
type Service struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	issuer   *Issuer
	verifier *Verifier
	policy   *tradelimit.Policy
	nonces   *NonceSource
}

// NewService creates a Service.
func NewService(
	issuer *Issuer,
	verifier *Verifier,
	policy *tradelimit.Policy,
	nonces *NonceSource,
	opts ...ServiceOpt,
) *Service {
	s := &Service{
		logger:   zap.NewNop(),
		clock:    clockwork.NewRealClock(),
		issuer:   issuer,
		verifier: verifier,
		policy:   policy,
		nonces:   nonces,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateMyWitness returns the witness of a local account, issuing it on first use.
func (s *Service) GetOrCreateMyWitness(
	ctx context.Context,
	accountFields, salt []byte,
	signer Signer,
) (*types.Witness, error) {
	return s.issuer.GetOrCreate(ctx, accountFields, salt, signer)
}

// NewNonce starts a verification session.
func (s *Service) NewNonce() (Session, error) {
	return s.nonces.Next()
}

// VerifyPeerWitness runs the verification protocol.
func (s *Service) VerifyPeerWitness(in *VerificationInput) Result {
	return s.verifier.Verify(in)
}

// TradeLimit scales base by the age of the subject's witness. Untrusted subjects
// get the limit of a brand new account.
func (s *Service) TradeLimit(base uint64, class tradelimit.CurrencyClass, subject Subject) uint64 {
	var age time.Duration
	if subject.trusted {
		age = tradelimit.AgeOf(subject.witness, s.clock.Now())
	}
	return s.policy.TradeLimit(base, class, age)
}
