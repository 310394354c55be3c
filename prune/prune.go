package prune

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/sql/witnesses"
)

// MinRetention is the shortest time a received witness is kept in the database.
const MinRetention = 30 * 24 * time.Hour

type Opt func(*Pruner)

func WithLogger(logger *zap.Logger) Opt {
	return func(p *Pruner) {
		p.logger = logger
	}
}

func WithClock(clock clockwork.Clock) Opt {
	return func(p *Pruner) {
		p.clock = clock
	}
}

// New creates a Pruner. Retention below MinRetention is raised to MinRetention.
func New(db sql.Executor, retention time.Duration, opts ...Opt) *Pruner {
	p := &Pruner{
		logger:    zap.NewNop(),
		clock:     clockwork.NewRealClock(),
		db:        db,
		retention: max(retention, MinRetention),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pruner removes witnesses received from peers once they are older than the retention.
// Witnesses issued locally are never pruned.
type Pruner struct {
	logger    *zap.Logger
	clock     clockwork.Clock
	db        sql.Executor
	retention time.Duration
}

func (p *Pruner) Run(ctx context.Context, interval time.Duration) {
	p.logger.Info("db pruning launched",
		zap.Duration("retention", p.retention),
		zap.Duration("interval", interval),
	)
	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if _, err := p.Prune(); err != nil {
				p.logger.Error("failed to prune", zap.Duration("retention", p.retention), zap.Error(err))
			}
		}
	}
}

// Prune deletes expired witnesses and returns how many were deleted.
func (p *Pruner) Prune() (int, error) {
	start := time.Now()
	cutoff := p.clock.Now().Add(-p.retention)
	n, err := witnesses.PruneReceivedBefore(p.db, cutoff)
	if err != nil {
		return 0, err
	}
	witnessLatency.Observe(time.Since(start).Seconds())
	prunedWitnesses.Add(float64(n))
	if n > 0 {
		p.logger.Debug("pruned witnesses", zap.Int("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}
