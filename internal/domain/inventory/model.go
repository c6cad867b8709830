package inventory

import (
	"errors"
	"time"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

var (
	ErrBatchNotFound        = errors.New("batch not found")
	ErrBatchMismatch        = errors.New("batch does not belong to the material")
	ErrZeroDelta            = errors.New("delta must not be zero")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInsufficientQuantity = errors.New("not enough quantity in batch")
	ErrComplianceRequired   = errors.New("narcotic dispense requires patient_info and reason")
	ErrLogOnPlain           = errors.New("narcotic log is only allowed for narcotic materials")
)

type NarcoticLogInput struct {
	PatientInfo string `json:"patient_info"`
	Reason      string `json:"reason"`
}

// TransactionInput is one atomic stock movement on one batch.
type TransactionInput struct {
	BatchID     int64             `json:"batch_id"`
	MaterialID  int64             `json:"material_id"`
	Delta       float64           `json:"delta"`
	Note        string            `json:"note,omitempty"`
	NarcoticLog *NarcoticLogInput `json:"narcotic_log,omitempty"`
}

type Transaction struct {
	ID         int64     `json:"id"`
	BatchID    int64     `json:"batch_id"`
	MaterialID int64     `json:"material_id"`
	Delta      float64   `json:"delta"`
	Note       string    `json:"note,omitempty"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type JournalMaterial struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Unit       vocab.Unit `json:"unit"`
	IsNarcotic bool       `json:"is_narcotic"`
}

type JournalUser struct {
	ID       int64      `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     vocab.Role `json:"role"`
	IsActive bool       `json:"is_active"`
}

// NarcoticLog is one line of the narcotic journal.
type NarcoticLog struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	PatientInfo   string          `json:"patient_info"`
	Reason        string          `json:"reason"`
	Delta         float64         `json:"delta"`
	CreatedAt     time.Time       `json:"created_at"`
	Material      JournalMaterial `json:"material"`
	User          JournalUser     `json:"user"`
}

// BatchState is the locked row a transaction is checked against.
type BatchState struct {
	MaterialID int64
	Current    float64
	IsNarcotic bool
}
