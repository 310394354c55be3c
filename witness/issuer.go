package witness

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub"
	"github.com/spacemeshos/go-agewitness/signing"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/sql/witnesses"
)

// IssuerOpt configures Issuer.
type IssuerOpt func(*Issuer)

// WithIssuerLogger sets the logger.
func WithIssuerLogger(logger *zap.Logger) IssuerOpt {
	return func(i *Issuer) {
		i.logger = logger
	}
}

// WithIssuerClock sets the clock used to date new witnesses.
func WithIssuerClock(clock clockwork.Clock) IssuerOpt {
	return func(i *Issuer) {
		i.clock = clock
	}
}

// Issuer creates witnesses for local accounts and hands them to the broadcaster.
type Issuer struct {
	logger    *zap.Logger
	clock     clockwork.Clock
	db        sql.Executor
	store     *Store
	publisher pubsub.Publisher
	verifier  sigVerifier
}

// NewIssuer creates an Issuer. The verifier must use the same prefix as the signers
// passed to GetOrCreate.
func NewIssuer(
	db sql.Executor,
	store *Store,
	publisher pubsub.Publisher,
	verifier *signing.EdVerifier,
	opts ...IssuerOpt,
) *Issuer {
	i := &Issuer{
		logger:    zap.NewNop(),
		clock:     clockwork.NewRealClock(),
		db:        db,
		store:     store,
		publisher: publisher,
		verifier:  verifier,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// GetOrCreate returns the witness for the account, creating and publishing it
// if it is not known yet. A local witness that was not broadcast yet is published
// again, until one broadcast succeeds.
//
// A *SigningError is returned if signer is nil or produces an invalid signature.
// If the broadcast fails the witness is still returned together with the error,
// it stays in the store and in the database. Without a network
// (pubsub.ErrNoNetwork) the broadcast is deferred and no error is returned.
func (i *Issuer) GetOrCreate(
	ctx context.Context,
	accountFields, salt []byte,
	signer Signer,
) (*types.Witness, error) {
	digest, err := Commit(accountFields, salt)
	if err != nil {
		return nil, err
	}
	if w, exists := i.store.Get(digest); exists {
		issuedExisting.Inc()
		return w, i.publishPending(ctx, w)
	}
	w, err := i.create(digest, signer)
	if err != nil {
		issuedFailed.Inc()
		return nil, err
	}
	err = witnesses.Add(i.db, w, i.clock.Now(), true)
	switch {
	case errors.Is(err, sql.ErrObjectExists):
		// issued concurrently, the winner adds it to the store and publishes
		stored, err := witnesses.Get(i.db, digest)
		if err != nil {
			return nil, err
		}
		issuedExisting.Inc()
		return stored, nil
	case err != nil:
		issuedFailed.Inc()
		return nil, err
	}
	if !i.store.Add(w) {
		stored, _ := i.store.Get(digest)
		issuedExisting.Inc()
		return stored, nil
	}
	issuedNew.Inc()
	i.logger.Info("issued witness", zap.Inline(w))
	_, err = i.publish(ctx, w)
	return w, err
}

// PublishPending broadcasts every local witness that was not published yet and
// returns how many were published.
func (i *Issuer) PublishPending(ctx context.Context) (int, error) {
	var pending []*types.Witness
	if err := witnesses.IterateUnpublished(i.db, func(w *types.Witness) bool {
		pending = append(pending, w)
		return true
	}); err != nil {
		return 0, err
	}
	sent := 0
	for _, w := range pending {
		ok, err := i.publish(ctx, w)
		if err != nil {
			return sent, err
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

func (i *Issuer) publishPending(ctx context.Context, w *types.Witness) error {
	local, done, err := witnesses.Status(i.db, w.ID())
	switch {
	case errors.Is(err, sql.ErrNotFound):
		return nil
	case err != nil:
		return err
	case !local || done:
		return nil
	}
	_, err = i.publish(ctx, w)
	return err
}

// publish marks the witness as published only after the broadcaster accepted it.
// It returns false if the broadcast was deferred.
func (i *Issuer) publish(ctx context.Context, w *types.Witness) (bool, error) {
	err := i.publisher.Publish(ctx, pubsub.WitnessTopic, codec.MustEncode(w))
	switch {
	case errors.Is(err, pubsub.ErrNoNetwork):
		publishedDeferred.Inc()
		i.logger.Debug("witness broadcast deferred", zap.Stringer("id", w.ID()))
		return false, nil
	case err != nil:
		publishedFailed.Inc()
		i.logger.Error("failed to broadcast witness", zap.Stringer("id", w.ID()), zap.Error(err))
		return false, fmt.Errorf("broadcast witness: %w", err)
	}
	publishedOk.Inc()
	if err := witnesses.SetPublished(i.db, w.ID()); err != nil {
		return false, err
	}
	i.logger.Debug("witness published", zap.Stringer("id", w.ID()))
	return true, nil
}

func (i *Issuer) create(digest types.Hash32, signer Signer) (*types.Witness, error) {
	if es, ok := signer.(*signing.EdSigner); signer == nil || (ok && es == nil) {
		return nil, &SigningError{Err: ErrNoSigner}
	}
	w := &types.Witness{
		Commitment: digest,
		PublicKey:  signer.NodeID(),
		Signature:  signer.Sign(signing.WITNESS, digest.Bytes()),
		CreatedAt:  uint64(i.clock.Now().UnixMilli()),
	}
	if !i.verifier.Verify(signing.WITNESS, w.PublicKey, w.Commitment.Bytes(), w.Signature) {
		return nil, &SigningError{Err: ErrInvalidSignature}
	}
	return w, nil
}
