package witness

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/p2p"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub"
	"github.com/spacemeshos/go-agewitness/signing"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/sql/witnesses"
)

// HandlerOpt configures Handler.
type HandlerOpt func(*Handler)

// WithHandlerLogger sets the logger.
func WithHandlerLogger(logger *zap.Logger) HandlerOpt {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithHandlerClock sets the clock used to date received witnesses.
func WithHandlerClock(clock clockwork.Clock) HandlerOpt {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLocalPeer sets the identity of this node so that own broadcasts are accepted.
func WithLocalPeer(local p2p.Peer) HandlerOpt {
	return func(h *Handler) {
		h.local = local
	}
}

// WithSyntacticCheck makes the handler reject witnesses whose signature over the
// commitment doesn't verify. Without it witnesses are relayed unverified.
func WithSyntacticCheck(verifier *signing.EdVerifier) HandlerOpt {
	return func(h *Handler) {
		h.verifier = verifier
	}
}

// Handler admits witnesses received over gossip into the store and the database.
type Handler struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	local    p2p.Peer
	db       sql.Executor
	store    *Store
	verifier sigVerifier
}

// NewHandler creates a Handler.
func NewHandler(db sql.Executor, store *Store, opts ...HandlerOpt) *Handler {
	h := &Handler{
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
		local:  p2p.NoPeer,
		db:     db,
		store:  store,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleWitness handles the witness gossip data channel.
func (h *Handler) HandleWitness(ctx context.Context, peer p2p.Peer, msg []byte) error {
	err := h.handleWitness(peer, msg)
	switch {
	case errors.Is(err, errMalformedData):
		gossipMalformed.Inc()
		h.logger.Debug("malformed witness gossip", zap.Stringer("sender", peer), zap.Error(err))
		return fmt.Errorf("%w: %w", pubsub.ErrValidationReject, err)
	case errors.Is(err, errKnownWitness):
		gossipKnown.Inc()
		if peer == h.local {
			return nil
		}
		return err
	case err != nil:
		h.logger.Warn("failed to process witness gossip", zap.Stringer("sender", peer), zap.Error(err))
		return err
	}
	gossipNew.Inc()
	return nil
}

func (h *Handler) handleWitness(peer p2p.Peer, msg []byte) error {
	var w types.Witness
	if err := codec.Decode(msg, &w); err != nil {
		return fmt.Errorf("%w: %w", errMalformedData, err)
	}
	if h.store.Has(w.ID()) {
		return errKnownWitness
	}
	if h.verifier != nil &&
		!h.verifier.Verify(signing.WITNESS, w.PublicKey, w.Commitment.Bytes(), w.Signature) {
		return fmt.Errorf("%w: invalid signature over %s", errMalformedData, w.ID().ShortString())
	}
	err := witnesses.Add(h.db, &w, h.clock.Now(), false)
	switch {
	case errors.Is(err, sql.ErrObjectExists):
		stored, err := witnesses.Get(h.db, w.ID())
		if err != nil {
			return err
		}
		h.store.Add(stored)
		return errKnownWitness
	case err != nil:
		return err
	}
	if !h.store.Add(&w) {
		return errKnownWitness
	}
	h.logger.Debug("new witness", zap.Inline(&w), zap.Stringer("sender", peer))
	return nil
}
