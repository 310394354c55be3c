package witness

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/sql/witnesses"
)

const (
	localPeer  = peer.ID("local")
	remotePeer = peer.ID("remote")
)

type testHandler struct {
	*Handler
	db    *sql.Database
	store *Store
}

func newTestHandler(tb testing.TB, opts ...HandlerOpt) *testHandler {
	tb.Helper()
	db := newDB(tb)
	store := NewStore()
	opts = append([]HandlerOpt{
		WithHandlerLogger(zaptest.NewLogger(tb)),
		WithHandlerClock(newClock()),
		WithLocalPeer(localPeer),
	}, opts...)
	return &testHandler{Handler: NewHandler(db, store, opts...), db: db, store: store}
}

func TestHandleWitness(t *testing.T) {
	h := newTestHandler(t)
	w := newBundle(t).w
	w.Extension = map[string]string{"v": "2"}
	msg := codec.MustEncode(w)

	require.NoError(t, h.HandleWitness(context.Background(), remotePeer, msg))
	stored, exists := h.store.Get(w.ID())
	require.True(t, exists)
	require.Equal(t, w, stored)

	persisted, err := witnesses.Get(h.db, w.ID())
	require.NoError(t, err)
	require.Equal(t, w, persisted)

	err = h.HandleWitness(context.Background(), remotePeer, msg)
	require.ErrorIs(t, err, errKnownWitness)
	require.NotErrorIs(t, err, pubsub.ErrValidationReject)

	// own broadcasts are accepted
	require.NoError(t, h.HandleWitness(context.Background(), localPeer, msg))
}

func TestHandleWitnessMalformed(t *testing.T) {
	h := newTestHandler(t)
	w := newBundle(t).w
	msg := codec.MustEncode(w)

	for _, tc := range []struct {
		desc string
		msg  []byte
	}{
		{"empty", nil},
		{"truncated", msg[:len(msg)-1]},
		{"trailing bytes", append(append([]byte(nil), msg...), 0)},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			err := h.HandleWitness(context.Background(), remotePeer, tc.msg)
			require.ErrorIs(t, err, pubsub.ErrValidationReject)
		})
	}
	require.Zero(t, h.store.Len())
}

func TestHandleWitnessExtensionLimit(t *testing.T) {
	h := newTestHandler(t)
	w := newBundle(t).w
	w.Extension = map[string]string{}
	for i := range types.MaxExtensionEntries {
		w.Extension[string(rune('a'+i))] = "x"
	}
	require.NoError(t, h.HandleWitness(context.Background(), remotePeer, codec.MustEncode(w)))

	w = newBundle(t).w
	msg := codec.MustEncode(w)
	// replace the empty extension with a count above the limit
	msg[len(msg)-1] = byte((types.MaxExtensionEntries + 1) << 2)
	err := h.HandleWitness(context.Background(), remotePeer, msg)
	require.ErrorIs(t, err, pubsub.ErrValidationReject)
	require.ErrorIs(t, err, types.ErrExtensionTooLarge)
}

func TestHandleWitnessSyntacticCheck(t *testing.T) {
	h := newTestHandler(t, WithSyntacticCheck(newEdVerifier(t)))

	valid := newBundle(t).w
	require.NoError(t, h.HandleWitness(context.Background(), remotePeer, codec.MustEncode(valid)))

	forged := *newBundle(t).w
	forged.Commitment[0] ^= 0xff
	err := h.HandleWitness(context.Background(), remotePeer, codec.MustEncode(&forged))
	require.ErrorIs(t, err, pubsub.ErrValidationReject)
	require.False(t, h.store.Has(forged.ID()))
}

func TestHandleWitnessUnverifiedByDefault(t *testing.T) {
	h := newTestHandler(t)
	forged := *newBundle(t).w
	forged.Signature[0] ^= 0xff
	require.NoError(t, h.HandleWitness(context.Background(), remotePeer, codec.MustEncode(&forged)))
	require.True(t, h.store.Has(forged.ID()))
}

func TestHandleWitnessPersistedBefore(t *testing.T) {
	h := newTestHandler(t)
	w := newBundle(t).w
	require.NoError(t, witnesses.Add(h.db, w, time.Now(), true))

	err := h.HandleWitness(context.Background(), remotePeer, codec.MustEncode(w))
	require.ErrorIs(t, err, errKnownWitness)
	require.True(t, h.store.Has(w.ID()))
}

func TestWarmup(t *testing.T) {
	db := newDB(t)
	expected := map[types.Hash32]struct{}{}
	for i := range 5 {
		w := newBundle(t).w
		w.Commitment[0] = byte(i)
		require.NoError(t, witnesses.Add(db, w, time.Now(), i%2 == 0))
		expected[w.ID()] = struct{}{}
	}

	store := NewStore()
	require.NoError(t, Warmup(context.Background(), db, store))
	require.Equal(t, len(expected), store.Len())
	for id := range expected {
		require.True(t, store.Has(id))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Warmup(ctx, db, NewStore()), context.Canceled)
}
