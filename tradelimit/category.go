// Package tradelimit scales trade limits by the age of an account's witness.
package tradelimit

import (
	"fmt"
	"time"

	"github.com/spacemeshos/go-agewitness/common/types"
)

// Month is the unit of witness age categories.
const Month = 30 * 24 * time.Hour

// Category of witness age.
type Category uint8

const (
	UnderOneMonth Category = iota
	OneToTwoMonths
	TwoMonthsOrMore
)

func (c Category) String() string {
	switch c {
	case UnderOneMonth:
		return "under-one-month"
	case OneToTwoMonths:
		return "one-to-two-months"
	case TwoMonthsOrMore:
		return "two-months-or-more"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Categorize maps witness age to its category.
func Categorize(age time.Duration) Category {
	switch {
	case age < Month:
		return UnderOneMonth
	case age < 2*Month:
		return OneToTwoMonths
	default:
		return TwoMonthsOrMore
	}
}

// AgeOf returns the age of w at now. Witnesses dated in the future have zero age.
func AgeOf(w *types.Witness, now time.Time) time.Duration {
	return w.Age(now)
}

// CurrencyClass of the payment method a trade limit applies to.
type CurrencyClass uint8

const (
	// Fiat limits are scaled by witness age.
	Fiat CurrencyClass = iota
	// Crypto limits are never scaled.
	Crypto
)

func (c CurrencyClass) String() string {
	switch c {
	case Fiat:
		return "fiat"
	case Crypto:
		return "crypto"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c CurrencyClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CurrencyClass) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fiat":
		*c = Fiat
	case "crypto":
		*c = Crypto
	default:
		return fmt.Errorf("unknown currency class %q", text)
	}
	return nil
}
