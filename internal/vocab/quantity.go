package vocab

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Quantities are stored as NUMERIC(14,3).
const QuantityScale = 3

// MaxQuantity is the first value the column cannot hold.
var MaxQuantity = decimal.New(1, 14-QuantityScale)

var (
	ErrQuantityScale = errors.New("quantity has more than 3 decimal places")
	ErrQuantityRange = errors.New("quantity is out of range")
)

// CheckQuantity reports whether q fits a quantity column as is, without
// rounding. Sign is the caller's concern.
func CheckQuantity(q decimal.Decimal) error {
	if !q.Equal(q.Round(QuantityScale)) {
		return ErrQuantityScale
	}
	if q.Abs().GreaterThanOrEqual(MaxQuantity) {
		return ErrQuantityRange
	}
	return nil
}

// CheckQuantityFloat is CheckQuantity for a value decoded from JSON.
func CheckQuantityFloat(v float64) error {
	return CheckQuantity(decimal.NewFromFloat(v))
}
