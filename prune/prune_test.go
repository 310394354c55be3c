package prune

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/sql/witnesses"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func addWitness(tb testing.TB, db sql.Executor, id byte, received time.Time, local bool) types.Hash32 {
	tb.Helper()
	w := &types.Witness{CreatedAt: uint64(received.UnixMilli())}
	w.Commitment[0] = id
	require.NoError(tb, witnesses.Add(db, w, received, local))
	return w.ID()
}

func TestPrune(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	expired := addWitness(t, db, 1, now.Add(-MinRetention-time.Hour), false)
	fresh := addWitness(t, db, 2, now.Add(-MinRetention+time.Hour), false)
	own := addWitness(t, db, 3, now.Add(-10*MinRetention), true)

	p := New(db, time.Hour, WithLogger(zaptest.NewLogger(t)), WithClock(clockwork.NewFakeClockAt(now)))
	n, err := p.Prune()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	for id, exists := range map[types.Hash32]bool{expired: false, fresh: true, own: true} {
		has, err := witnesses.Has(db, id)
		require.NoError(t, err)
		require.Equal(t, exists, has, id.ShortString())
	}

	n, err = p.Prune()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPruneRetention(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	retention := 2 * MinRetention
	addWitness(t, db, 1, now.Add(-retention+time.Hour), false)
	addWitness(t, db, 2, now.Add(-retention-time.Hour), false)

	n, err := New(db, retention, WithClock(clockwork.NewFakeClockAt(now))).Prune()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRun(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	id := addWitness(t, db, 1, now.Add(-MinRetention-time.Hour), false)

	clock := clockwork.NewFakeClockAt(now)
	p := New(db, 0, WithLogger(zaptest.NewLogger(t)), WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, time.Minute)
	}()

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool {
		has, err := witnesses.Has(db, id)
		return err == nil && !has
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
