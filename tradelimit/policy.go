package tradelimit

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Opt configures Policy.
type Opt func(*Policy)

// WithClock sets the clock used to select the active schedule step.
func WithClock(clock clockwork.Clock) Opt {
	return func(p *Policy) {
		p.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(p *Policy) {
		p.logger = logger
	}
}

// Policy scales trade limits according to a schedule.
type Policy struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	schedule Schedule
}

// New creates a Policy. The schedule is copied.
func New(schedule Schedule, opts ...Opt) (*Policy, error) {
	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}
	p := &Policy{
		logger:   zap.NewNop(),
		clock:    clockwork.NewRealClock(),
		schedule: append(Schedule(nil), schedule...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Factor returns the factor currently applied to category c.
func (p *Policy) Factor(c Category) Factor {
	step := p.schedule.Active(p.clock.Now())
	return step.Factor(c)
}

// TradeLimit scales base by the factor of the age category. Crypto limits are
// returned unscaled.
func (p *Policy) TradeLimit(base uint64, class CurrencyClass, age time.Duration) uint64 {
	if class == Crypto {
		return base
	}
	category := Categorize(age)
	factor := p.Factor(category)
	limit := Scale(base, factor)
	p.logger.Debug("trade limit",
		zap.Uint64("base", base),
		zap.Duration("age", age),
		zap.Stringer("category", category),
		zap.Uint32("factor", uint32(factor)),
		zap.Uint64("limit", limit),
	)
	return limit
}
