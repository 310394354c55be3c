package exchange

import (
	"context"
	"fmt"
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/jonboulle/clockwork"
	"github.com/libp2p/go-libp2p/core/host"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub/mocks"
	"github.com/spacemeshos/go-agewitness/signing"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/witness"
)

var (
	prefix      = []byte("exchange")
	releaseDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now         = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
)

type tester struct {
	prover, verifier host.Host
	book             *AccountBook
	store            *witness.Store
	issuer           *witness.Issuer
	client           *Client
}

func newTester(tb testing.TB) *tester {
	tb.Helper()
	mesh, err := mocknet.FullMeshConnected(2)
	require.NoError(tb, err)
	tb.Cleanup(func() { require.NoError(tb, mesh.Close()) })

	edVerifier := signing.NewEdVerifier(signing.WithVerifierPrefix(prefix))
	clock := clockwork.NewFakeClockAt(now)

	db := sql.InMemory()
	tb.Cleanup(func() { require.NoError(tb, db.Close()) })
	publisher := mocks.NewMockPublisher(gomock.NewController(tb))
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	t := &tester{
		prover:   mesh.Hosts()[0],
		verifier: mesh.Hosts()[1],
		book:     NewAccountBook(),
		store:    witness.NewStore(),
	}
	t.issuer = witness.NewIssuer(db, t.store, publisher, edVerifier, witness.WithIssuerClock(clock))

	server := NewServer(t.prover, t.book, t.store, WithLogger(zaptest.NewLogger(tb)))
	server.Start()
	tb.Cleanup(server.Stop)

	nonces, err := witness.NewNonceSource(16)
	require.NoError(tb, err)
	verifier := witness.NewVerifier(edVerifier, releaseDate, witness.WithVerifierClock(clock))
	t.client = NewClient(t.verifier, verifier, nonces,
		WithLogger(zaptest.NewLogger(tb)),
		WithTimeout(5*time.Second),
	)
	return t
}

func (t *tester) newSigner(tb testing.TB) *signing.EdSigner {
	tb.Helper()
	signer, err := signing.NewEdSigner(signing.WithPrefix(prefix))
	require.NoError(tb, err)
	return signer
}

func (t *tester) addAccount(tb testing.TB, fields string, issue bool) (types.Hash32, *signing.EdSigner) {
	tb.Helper()
	signer := t.newSigner(tb)
	account := Account{Fields: []byte(fields), Salt: []byte("salt-" + fields), Signer: signer}
	id, err := t.book.Add(account)
	require.NoError(tb, err)
	if issue {
		w, err := t.issuer.GetOrCreate(context.Background(), account.Fields, account.Salt, signer)
		require.NoError(tb, err)
		require.Equal(tb, id, w.ID())
	}
	return id, signer
}

func TestExchangeAccepted(t *testing.T) {
	tt := newTester(t)
	id, signer := tt.addAccount(t, "IBAN:DE00...", true)

	first, err := tt.client.Verify(context.Background(), tt.prover.ID(), id)
	require.NoError(t, err)
	require.True(t, first.Result.Accepted(), first.Result)
	require.Equal(t, id, first.Witness.ID())
	require.Equal(t, signer.NodeID(), first.Witness.PublicKey)

	second, err := tt.client.Verify(context.Background(), tt.prover.ID(), id)
	require.NoError(t, err)
	require.True(t, second.Result.Accepted())
	require.NotEqual(t, first.Session.Nonce, second.Session.Nonce)
	require.NotEqual(t, first.Session.ID, second.Session.ID)
}

func TestExchangeUnknownAccount(t *testing.T) {
	tt := newTester(t)
	_, err := tt.client.Verify(context.Background(), tt.prover.ID(), types.Hash32{1})
	require.ErrorIs(t, err, ErrPeerResponse)
	require.ErrorContains(t, err, ErrUnknownAccount.Error())
}

func TestExchangeNotIssued(t *testing.T) {
	tt := newTester(t)
	id, _ := tt.addAccount(t, "IBAN:FR00...", false)
	_, err := tt.client.Verify(context.Background(), tt.prover.ID(), id)
	require.ErrorIs(t, err, ErrPeerResponse)
}

func TestExchangeKeyMismatch(t *testing.T) {
	tt := newTester(t)
	id, _ := tt.addAccount(t, "IBAN:NL00...", true)
	// the prover answers with a key other than the one that signed the witness
	account, exists := tt.book.Get(id)
	require.True(t, exists)
	account.Signer = tt.newSigner(t)
	_, err := tt.book.Add(account)
	require.NoError(t, err)

	outcome, err := tt.client.Verify(context.Background(), tt.prover.ID(), id)
	require.NoError(t, err)
	require.Equal(t, witness.KeyMismatch, outcome.Result.Reason)
}

func TestExchangeNoProtocol(t *testing.T) {
	tt := newTester(t)
	tt.prover.RemoveStreamHandler(ProtocolID)
	_, err := tt.client.Verify(context.Background(), tt.prover.ID(), types.Hash32{1})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPeerResponse)
}

func TestAccountBook(t *testing.T) {
	book := NewAccountBook()
	_, err := book.Add(Account{Fields: []byte("a"), Salt: []byte("b")})
	var signingErr *witness.SigningError
	require.ErrorAs(t, err, &signingErr)

	signer, err := signing.NewEdSigner()
	require.NoError(t, err)
	_, err = book.Add(Account{Fields: nil, Salt: []byte("b"), Signer: signer})
	require.ErrorIs(t, err, witness.ErrEmptyAccountFields)

	_, err = book.Add(Account{Fields: make([]byte, MaxAccountFieldsSize+1), Salt: []byte("b"), Signer: signer})
	require.Error(t, err)

	id, err := book.Add(Account{Fields: []byte("a"), Salt: []byte("b"), Signer: signer})
	require.NoError(t, err)
	expected, err := witness.Commit([]byte("a"), []byte("b"))
	require.NoError(t, err)
	require.Equal(t, expected, id)
	_, exists := book.Get(id)
	require.True(t, exists)
}

func TestResponseEncoding(t *testing.T) {
	resp := Response{Proof: Proof{
		AccountFields: []byte("fields"),
		Salt:          []byte("salt"),
		Witness:       types.Witness{CreatedAt: 7, Extension: map[string]string{"k": "v"}},
	}}
	var decoded Response
	require.NoError(t, codec.Decode(codec.MustEncode(&resp), &decoded))
	require.Equal(t, resp, decoded)

	resp.Proof.Salt = make([]byte, MaxSaltSize+1)
	_, err := codec.Encode(&resp)
	require.Error(t, err)
}

func TestMessagesEncoding(t *testing.T) {
	f := fuzz.NewWithSeed(1001).NilChance(0).Funcs(func(ext *map[string]string, c fuzz.Continue) {
		*ext = nil
		if n := c.Intn(types.MaxExtensionEntries); n > 0 {
			*ext = make(map[string]string, n)
			for range n {
				(*ext)[fmt.Sprintf("key-%d", c.Intn(1000))] = c.RandString()
			}
		}
	})
	for range 50 {
		var challenge Challenge
		f.Fuzz(&challenge)
		var decodedChallenge Challenge
		require.NoError(t, codec.Decode(codec.MustEncode(&challenge), &decodedChallenge))
		require.Equal(t, challenge, decodedChallenge)

		var resp Response
		f.Fuzz(&resp)
		var decodedResp Response
		require.NoError(t, codec.Decode(codec.MustEncode(&resp), &decodedResp))
		require.Equal(t, resp, decodedResp)
	}
}
