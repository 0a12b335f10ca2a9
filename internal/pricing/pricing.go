// Package pricing converts percentage expressions into price multipliers and
// applies them with ceiling-to-cent rounding.
//
// All arithmetic is exact fixed-point via shopspring/decimal. Values never
// pass through float64, so prices that already sit on a cent boundary stay
// put: adjusting 9.995 by 0% yields 10.00, never 10.01.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPercent indicates a percentage expression that cannot be parsed.
var ErrInvalidPercent = errors.New("pricing: invalid percentage format")

var one = decimal.NewFromInt(1)

// Multiplier is the factor applied to every adjusted price. It is derived
// once per run from a percentage expression and is read-only afterwards.
type Multiplier struct {
	factor decimal.Decimal
}

// NewMultiplier builds a Multiplier from a raw factor. Most callers should
// use ParsePercent instead.
func NewMultiplier(factor decimal.Decimal) Multiplier {
	return Multiplier{factor: factor}
}

// ParsePercent converts a percentage expression into a Multiplier.
//
// Accepted forms are a decimal number with an optional sign and at most one
// trailing '%': "6", "6%", "-1.5%", " 7.25 % ". The resulting factor is
// 1 + value/100, so "6" and "6%" both yield 1.06. No bounds are enforced;
// factors of zero or below are accepted and propagated.
func ParsePercent(expr string) (Multiplier, error) {
	s := strings.TrimSpace(expr)

	if strings.HasSuffix(s, "%") {
		if strings.Count(s, "%") != 1 {
			return Multiplier{}, fmt.Errorf("%w: %q", ErrInvalidPercent, expr)
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	} else if strings.Contains(s, "%") {
		// A '%' anywhere but the tail ("%6", "6%5") is malformed.
		return Multiplier{}, fmt.Errorf("%w: %q", ErrInvalidPercent, expr)
	}

	if s == "" {
		return Multiplier{}, fmt.Errorf("%w: %q", ErrInvalidPercent, expr)
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return Multiplier{}, fmt.Errorf("%w: %q", ErrInvalidPercent, expr)
	}

	return Multiplier{factor: one.Add(value.Shift(-2))}, nil
}

// Factor returns the raw multiplication factor (1 + percent/100).
func (m Multiplier) Factor() decimal.Decimal {
	return m.factor
}

// Adjust multiplies value by the factor and rounds the result up to the
// next whole cent. The multiply is exact, so a raw result that already is a
// whole number of cents is returned unchanged rather than bumped a cent.
func (m Multiplier) Adjust(value decimal.Decimal) decimal.Decimal {
	return value.Mul(m.factor).Shift(2).Ceil().Shift(-2)
}

// PercentChange renders the signed percentage for display: "+6.0%", "-1.5%".
func (m Multiplier) PercentChange() string {
	change := m.factor.Sub(one).Shift(2)
	if change.IsNegative() {
		return change.StringFixed(1) + "%"
	}
	return "+" + change.StringFixed(1) + "%"
}
