package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

// CheckTransaction decides whether in may be applied to the batch as it is
// now. A result below zero is refused, never clamped.
func CheckTransaction(b BatchState, in *TransactionInput) error {
	if in.Delta == 0 {
		return ErrZeroDelta
	}
	if err := vocab.CheckQuantityFloat(in.Delta); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	if b.MaterialID != in.MaterialID {
		return ErrBatchMismatch
	}
	if in.NarcoticLog != nil {
		in.NarcoticLog.PatientInfo = strings.TrimSpace(in.NarcoticLog.PatientInfo)
		in.NarcoticLog.Reason = strings.TrimSpace(in.NarcoticLog.Reason)
	}
	// журнал ведётся только на списание наркотических средств
	if b.IsNarcotic && in.Delta < 0 {
		if in.NarcoticLog == nil || in.NarcoticLog.PatientInfo == "" || in.NarcoticLog.Reason == "" {
			return ErrComplianceRequired
		}
	} else if in.NarcoticLog != nil {
		return ErrLogOnPlain
	}
	if b.Current+in.Delta < 0 {
		return fmt.Errorf("%w: available %g, requested %g", ErrInsufficientQuantity, b.Current, -in.Delta)
	}
	// приход не должен переполнить остаток партии
	if err := vocab.CheckQuantity(decimal.NewFromFloat(b.Current).Add(decimal.NewFromFloat(in.Delta))); err != nil {
		return fmt.Errorf("%w: resulting balance: %v", ErrInvalidQuantity, err)
	}
	return nil
}
