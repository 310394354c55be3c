package tradelimit

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"go.uber.org/multierr"
)

// Factor is a scaling factor in basis points.
type Factor uint32

// FullFactor leaves the limit unchanged.
const FullFactor Factor = 10_000

// Scale multiplies base by f rounding half-up to the smallest unit.
func Scale(base uint64, f Factor) uint64 {
	if f >= FullFactor {
		return base
	}
	hi, lo := bits.Mul64(base, uint64(f))
	lo, carry := bits.Add64(lo, uint64(FullFactor/2), 0)
	hi += carry
	// hi < FullFactor since f < FullFactor, so the quotient fits
	q, _ := bits.Div64(hi, lo, uint64(FullFactor))
	return q
}

// Step is a set of factors that is in effect from EffectiveFrom until the next step.
type Step struct {
	EffectiveFrom  time.Time `mapstructure:"effective-from"`
	UnderOneMonth  Factor    `mapstructure:"under-one-month"`
	OneToTwoMonths Factor    `mapstructure:"one-to-two-months"`
}

// Factor returns the factor for category c.
func (s *Step) Factor(c Category) Factor {
	switch c {
	case UnderOneMonth:
		return s.UnderOneMonth
	case OneToTwoMonths:
		return s.OneToTwoMonths
	default:
		return FullFactor
	}
}

// Schedule is a fade-in curve, ordered by EffectiveFrom.
type Schedule []Step

// DefaultSchedule restricts young accounts to a quarter and a half of the base limit.
func DefaultSchedule() Schedule {
	return Schedule{
		{UnderOneMonth: 2_500, OneToTwoMonths: 5_000},
	}
}

// Validate checks that the schedule is not empty, ordered and that factors never
// exceed FullFactor or decrease with age.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return errors.New("schedule is empty")
	}
	var err error
	for i, step := range s {
		if i > 0 && !step.EffectiveFrom.After(s[i-1].EffectiveFrom) {
			err = multierr.Append(err, fmt.Errorf("step %d is not after step %d", i, i-1))
		}
		if step.UnderOneMonth > FullFactor || step.OneToTwoMonths > FullFactor {
			err = multierr.Append(err, fmt.Errorf("step %d: factor above %d", i, FullFactor))
		}
		if step.UnderOneMonth > step.OneToTwoMonths {
			err = multierr.Append(err, fmt.Errorf("step %d: factor decreases with age", i))
		}
	}
	return err
}

// Active returns the latest step with EffectiveFrom not after now. Before the first
// step is effective the first step applies.
func (s Schedule) Active(now time.Time) Step {
	active := s[0]
	for _, step := range s[1:] {
		if step.EffectiveFrom.After(now) {
			break
		}
		active = step
	}
	return active
}
