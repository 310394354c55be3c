package witness

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spacemeshos/go-agewitness/p2p/pubsub"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub/mocks"
	"github.com/spacemeshos/go-agewitness/signing"
	"github.com/spacemeshos/go-agewitness/sql"
)

var (
	testPrefix  = []byte("test")
	releaseDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	testNow     = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
)

func exampleSalt() []byte {
	salt := make([]byte, 32)
	for i := range salt {
		salt[i] = byte(i + 1)
	}
	return salt
}

func newSigner(tb testing.TB) *signing.EdSigner {
	tb.Helper()
	signer, err := signing.NewEdSigner(signing.WithPrefix(testPrefix))
	require.NoError(tb, err)
	return signer
}

func newEdVerifier(tb testing.TB) *signing.EdVerifier {
	tb.Helper()
	return signing.NewEdVerifier(signing.WithVerifierPrefix(testPrefix))
}

func newDB(tb testing.TB) *sql.Database {
	tb.Helper()
	db := sql.InMemory()
	tb.Cleanup(func() { require.NoError(tb, db.Close()) })
	return db
}

func newClock() clockwork.FakeClock {
	return clockwork.NewFakeClockAt(testNow)
}

func newPublisher(tb testing.TB) *mocks.MockPublisher {
	tb.Helper()
	publisher := mocks.NewMockPublisher(gomock.NewController(tb))
	publisher.EXPECT().Publish(gomock.Any(), pubsub.WitnessTopic, gomock.Any()).AnyTimes()
	return publisher
}
