package witness

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub/mocks"
	"github.com/spacemeshos/go-agewitness/signing"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/sql/witnesses"
)

type testIssuer struct {
	*Issuer
	db        *sql.Database
	store     *Store
	publisher *mocks.MockPublisher
}

func newTestIssuer(tb testing.TB) *testIssuer {
	tb.Helper()
	ctrl := gomock.NewController(tb)
	db := newDB(tb)
	store := NewStore()
	publisher := mocks.NewMockPublisher(ctrl)
	issuer := NewIssuer(db, store, publisher, newEdVerifier(tb),
		WithIssuerLogger(zaptest.NewLogger(tb)),
		WithIssuerClock(newClock()),
	)
	return &testIssuer{Issuer: issuer, db: db, store: store, publisher: publisher}
}

func TestIssuerIdempotent(t *testing.T) {
	issuer := newTestIssuer(t)
	signer := newSigner(t)
	fields := []byte("IBAN:DE00123456780000000000")
	salt := exampleSalt()

	var broadcast []byte
	issuer.publisher.EXPECT().
		Publish(gomock.Any(), pubsub.WitnessTopic, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg []byte) error {
			broadcast = msg
			return nil
		}).
		Times(1)

	w, err := issuer.GetOrCreate(context.Background(), fields, salt, signer)
	require.NoError(t, err)
	digest, err := Commit(fields, salt)
	require.NoError(t, err)
	require.Equal(t, digest, w.Commitment)
	require.Equal(t, signer.NodeID(), w.PublicKey)
	require.Equal(t, uint64(testNow.UnixMilli()), w.CreatedAt)
	require.Empty(t, w.Extension)

	var decoded types.Witness
	require.NoError(t, codec.Decode(broadcast, &decoded))
	require.Equal(t, *w, decoded)

	again, err := issuer.GetOrCreate(context.Background(), fields, salt, signer)
	require.NoError(t, err)
	require.Same(t, w, again)
	require.Equal(t, 1, issuer.store.Len())

	stored, err := witnesses.Get(issuer.db, digest)
	require.NoError(t, err)
	require.Equal(t, w, stored)
}

func TestIssuerNoSigner(t *testing.T) {
	issuer := newTestIssuer(t)

	var signingErr *SigningError
	_, err := issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), nil)
	require.ErrorAs(t, err, &signingErr)
	require.ErrorIs(t, err, ErrNoSigner)

	var nilSigner *signing.EdSigner
	_, err = issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), nilSigner)
	require.ErrorIs(t, err, ErrNoSigner)
	require.Zero(t, issuer.store.Len())
}

func TestIssuerCorruptedKey(t *testing.T) {
	issuer := newTestIssuer(t)
	signer := NewMockSigner(gomock.NewController(t))
	signer.EXPECT().NodeID().Return(newSigner(t).NodeID())
	signer.EXPECT().Sign(signing.WITNESS, gomock.Any()).Return(types.EdSignature{1, 2, 3})

	_, err := issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), signer)
	var signingErr *SigningError
	require.ErrorAs(t, err, &signingErr)
	require.ErrorIs(t, err, ErrInvalidSignature)
	require.Zero(t, issuer.store.Len())

	total, err := witnesses.Count(issuer.db)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestIssuerWrongPrefix(t *testing.T) {
	issuer := newTestIssuer(t)
	signer, err := signing.NewEdSigner(signing.WithPrefix([]byte("other")))
	require.NoError(t, err)

	_, err = issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), signer)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestIssuerMalformedInput(t *testing.T) {
	issuer := newTestIssuer(t)
	_, err := issuer.GetOrCreate(context.Background(), nil, []byte("salt"), newSigner(t))
	require.ErrorIs(t, err, ErrEmptyAccountFields)
	_, err = issuer.GetOrCreate(context.Background(), []byte("fields"), nil, newSigner(t))
	require.ErrorIs(t, err, ErrEmptySalt)
}

func TestIssuerPublishFailure(t *testing.T) {
	issuer := newTestIssuer(t)
	failure := errors.New("no peers")
	issuer.publisher.EXPECT().Publish(gomock.Any(), pubsub.WitnessTopic, gomock.Any()).Return(failure)

	w, err := issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), newSigner(t))
	require.ErrorIs(t, err, failure)
	require.NotNil(t, w)
	require.True(t, issuer.store.Has(w.ID()))

	// not published yet, so the broadcast is retried
	issuer.publisher.EXPECT().Publish(gomock.Any(), pubsub.WitnessTopic, codec.MustEncode(w))
	again, err := issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), newSigner(t))
	require.NoError(t, err)
	require.Same(t, w, again)

	_, published, err := witnesses.Status(issuer.db, w.ID())
	require.NoError(t, err)
	require.True(t, published)

	again, err = issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), newSigner(t))
	require.NoError(t, err)
	require.Same(t, w, again)
}

func TestIssuerPublishDeferred(t *testing.T) {
	issuer := newTestIssuer(t)
	signer := newSigner(t)
	offline := NewIssuer(issuer.db, issuer.store, &pubsub.NullPubSub{}, newEdVerifier(t),
		WithIssuerClock(newClock()),
	)

	w, err := offline.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), signer)
	require.NoError(t, err)
	local, published, err := witnesses.Status(issuer.db, w.ID())
	require.NoError(t, err)
	require.True(t, local)
	require.False(t, published)

	sent, err := offline.PublishPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)

	issuer.publisher.EXPECT().Publish(gomock.Any(), pubsub.WitnessTopic, codec.MustEncode(w))
	sent, err = issuer.PublishPending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	sent, err = issuer.PublishPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
}

func TestIssuerPublishPendingSkipsRemote(t *testing.T) {
	issuer := newTestIssuer(t)
	signer := newSigner(t)
	remote := &types.Witness{
		Commitment: types.Hash32{1},
		PublicKey:  signer.NodeID(),
		Signature:  signer.Sign(signing.WITNESS, types.Hash32{1}.Bytes()),
		CreatedAt:  uint64(testNow.UnixMilli()),
	}
	require.NoError(t, witnesses.Add(issuer.db, remote, testNow, false))

	sent, err := issuer.PublishPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
}

func TestIssuerConcurrent(t *testing.T) {
	issuer := newTestIssuer(t)
	signer := newSigner(t)
	issuer.publisher.EXPECT().Publish(gomock.Any(), pubsub.WitnessTopic, gomock.Any()).MinTimes(1)

	const n = 8
	var (
		wg      sync.WaitGroup
		results = make([]*types.Witness, n)
		errs    = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), signer)
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		require.Equal(t, results[0], results[i])
	}
	require.Equal(t, 1, issuer.store.Len())
}

func TestIssuerRestoresFromStore(t *testing.T) {
	issuer := newTestIssuer(t)
	signer := newSigner(t)
	issuer.publisher.EXPECT().Publish(gomock.Any(), pubsub.WitnessTopic, gomock.Any())

	w, err := issuer.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), signer)
	require.NoError(t, err)

	store := NewStore()
	require.NoError(t, Warmup(context.Background(), issuer.db, store))
	restarted := NewIssuer(issuer.db, store, issuer.publisher, newEdVerifier(t))
	again, err := restarted.GetOrCreate(context.Background(), []byte("fields"), []byte("salt"), signer)
	require.NoError(t, err)
	require.Equal(t, w, again)
}
