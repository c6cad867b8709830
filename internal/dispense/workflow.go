// Package dispense removes stock from one batch of a material, enforcing the
// narcotic compliance log. The server applies the delta; the workflow never
// computes the resulting balance itself.
package dispense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/clinic-stock/internal/apperr"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

type State int

const (
	Idle State = iota
	BatchSelection
	QuantityEntry
	ComplianceCapture
	Submitting
)

var stateNames = [...]string{"idle", "batch_selection", "quantity_entry", "compliance_capture", "submitting"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrWrongState = errors.New("operation not allowed in the current step")
	ErrBusy       = errors.New("submission in progress")
)

// API is what the workflow needs from the gateway.
type API interface {
	Material(ctx context.Context, id int64) (client.Material, error)
	Batches(ctx context.Context, materialID int64) ([]client.Batch, error)
	CreateTransaction(ctx context.Context, in client.TransactionCreate) (client.Transaction, error)
}

// Receipt is what a successful submission leaves behind: the recorded
// transaction and the listing as the server now reports it.
type Receipt struct {
	Transaction client.Transaction
	Material    client.Material
	Batches     []client.Batch
	// RefreshErr is set when the dispense went through but the listing
	// could not be reloaded.
	RefreshErr error
}

type Workflow struct {
	api API
	log *slog.Logger

	state    State
	material client.Material
	batches  []client.Batch
	batch    *client.Batch
	quantity decimal.Decimal
	patient  string
	reason   string
	lastErr  string
}

func New(api API, log *slog.Logger) *Workflow {
	return &Workflow{api: api, log: log}
}

func (w *Workflow) State() State              { return w.state }
func (w *Workflow) Material() client.Material { return w.material }

// Batches returns the preloaded batches of the scoped material.
func (w *Workflow) Batches() []client.Batch { return w.batches }

// Available returns the batches that can still be dispensed from.
func (w *Workflow) Available() []client.Batch {
	var out []client.Batch
	for _, b := range w.batches {
		if b.CurrentQuantity > 0 {
			out = append(out, b)
		}
	}
	return out
}

func (w *Workflow) Batch() *client.Batch { return w.batch }

func (w *Workflow) Quantity() decimal.Decimal { return w.quantity }

// NeedsCompliance reports whether a compliance record must accompany the dispense.
func (w *Workflow) NeedsCompliance() bool { return w.material.IsNarcotic }

// LastError is the server's message from the last failed submission.
func (w *Workflow) LastError() string { return w.lastErr }

// SelectMaterial scopes the workflow to m and preloads its batches.
func (w *Workflow) SelectMaterial(ctx context.Context, m client.Material) error {
	if w.state == Submitting {
		return ErrBusy
	}
	w.reset()
	batches, err := w.api.Batches(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("load batches: %w", err)
	}
	w.material = m
	w.batches = batches
	w.state = BatchSelection
	return nil
}

// ChooseBatch constrains validation to one batch. The batch must still hold stock.
func (w *Workflow) ChooseBatch(batchID int64) error {
	switch w.state {
	case BatchSelection, QuantityEntry, ComplianceCapture:
	case Submitting:
		return ErrBusy
	default:
		return ErrWrongState
	}
	for i := range w.batches {
		if w.batches[i].ID != batchID {
			continue
		}
		if w.batches[i].CurrentQuantity <= 0 {
			return apperr.Invalid("batch", "batch #%d is exhausted", batchID)
		}
		b := w.batches[i]
		w.batch = &b
		w.state = QuantityEntry
		return nil
	}
	return apperr.Invalid("batch", "batch #%d does not belong to %s", batchID, w.material.Name)
}

// SetQuantity records the amount to dispense.
func (w *Workflow) SetQuantity(q decimal.Decimal) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.quantity = q
	return nil
}

// EnterQuantity parses a typed amount; both "2.5" and "2,5" are accepted.
func (w *Workflow) EnterQuantity(text string) error {
	q, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil {
		return apperr.Invalid("quantity", "not a number: %q", text)
	}
	return w.SetQuantity(q)
}

// SetCompliance records the narcotic-log fields.
func (w *Workflow) SetCompliance(patientInfo, reason string) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.patient = strings.TrimSpace(patientInfo)
	w.reason = strings.TrimSpace(reason)
	return nil
}

func (w *Workflow) editable() error {
	switch w.state {
	case QuantityEntry, ComplianceCapture:
		return nil
	case Submitting:
		return ErrBusy
	default:
		return ErrWrongState
	}
}

// Validate checks the quantity against the chosen batch. The check is
// advisory; the server re-applies it when the transaction is committed.
// On success a narcotic material moves on to compliance capture.
func (w *Workflow) Validate() error {
	if err := w.check(); err != nil {
		if w.state == ComplianceCapture {
			w.state = QuantityEntry
		}
		return err
	}
	if w.state == QuantityEntry && w.NeedsCompliance() {
		w.state = ComplianceCapture
	}
	return nil
}

func (w *Workflow) check() error {
	if w.batch == nil {
		return apperr.Invalid("batch", "no batch chosen")
	}
	if !w.quantity.IsPositive() {
		return apperr.Invalid("quantity", "must be greater than zero")
	}
	if err := vocab.CheckQuantity(w.quantity); err != nil {
		return apperr.Invalid("quantity", "%v", err)
	}
	if w.quantity.GreaterThan(decimal.NewFromFloat(w.batch.CurrentQuantity)) {
		return apperr.Invalid("quantity", "only %s left in batch #%d",
			decimal.NewFromFloat(w.batch.CurrentQuantity).String(), w.batch.ID)
	}
	return nil
}

// Submission builds the payload for the current inputs without sending it.
func (w *Workflow) Submission() (Submission, error) {
	if err := w.check(); err != nil {
		return nil, err
	}
	plain := Plain{
		BatchID:    w.batch.ID,
		MaterialID: w.material.ID,
		Delta:      w.quantity.Neg().InexactFloat64(),
	}
	if !w.NeedsCompliance() {
		return plain, nil
	}
	var missing []string
	if w.patient == "" {
		missing = append(missing, "patient_info")
	}
	if w.reason == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return nil, &apperr.ComplianceError{Missing: missing}
	}
	return Controlled{Plain: plain, PatientInfo: w.patient, Reason: w.reason}, nil
}

// Submit sends the transaction as one call. On failure every input is kept
// and the workflow waits in QuantityEntry for the user to retry or cancel.
func (w *Workflow) Submit(ctx context.Context) (*Receipt, error) {
	if err := w.editable(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	sub, err := w.Submission()
	if err != nil {
		var ce *apperr.ComplianceError
		if errors.As(err, &ce) {
			w.state = ComplianceCapture
		}
		return nil, err
	}

	w.state = Submitting
	tr, err := w.api.CreateTransaction(ctx, sub.Request())
	if err != nil {
		w.state = QuantityEntry
		w.lastErr = apperr.Describe(err)
		var sr *apperr.ServerRejection
		if errors.As(err, &sr) {
			w.lastErr = sr.Message
		}
		w.log.Warn("dispense rejected",
			"material_id", w.material.ID, "batch_id", w.batch.ID, "err", err)
		return nil, err
	}

	w.log.Info("dispensed",
		"transaction_id", tr.ID, "material_id", w.material.ID,
		"batch_id", w.batch.ID, "delta", tr.Delta, "narcotic", w.material.IsNarcotic)

	rc := &Receipt{Transaction: tr}
	rc.Material, rc.RefreshErr = w.api.Material(ctx, w.material.ID)
	if rc.RefreshErr == nil {
		rc.Batches, rc.RefreshErr = w.api.Batches(ctx, w.material.ID)
	}
	if rc.RefreshErr != nil {
		w.log.Warn("refresh after dispense failed", "material_id", w.material.ID, "err", rc.RefreshErr)
	}
	w.reset()
	return rc, nil
}

// Cancel discards everything entered. It is refused while submitting.
func (w *Workflow) Cancel() error {
	if w.state == Submitting {
		return ErrBusy
	}
	w.reset()
	return nil
}

func (w *Workflow) reset() {
	*w = Workflow{api: w.api, log: w.log}
}
