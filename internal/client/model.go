package client

import (
	"time"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

type Material struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Unit          vocab.Unit `json:"unit"`
	MinQuantity   float64    `json:"min_quantity"`
	IsNarcotic    bool       `json:"is_narcotic"`
	TotalQuantity float64    `json:"total_quantity"`
}

// LowStock reports whether the total on hand fell under the minimum.
func (m Material) LowStock() bool { return m.TotalQuantity < m.MinQuantity }

type MaterialInput struct {
	Name            string     `json:"name"`
	Unit            vocab.Unit `json:"unit"`
	MinQuantity     float64    `json:"min_quantity"`
	IsNarcotic      bool       `json:"is_narcotic"`
	InitialQuantity float64    `json:"initial_quantity,omitempty"`
}

type Batch struct {
	ID              int64      `json:"id"`
	MaterialID      int64      `json:"material_id"`
	InitialQuantity float64    `json:"initial_quantity"`
	CurrentQuantity float64    `json:"current_quantity"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Material        *Material  `json:"material,omitempty"`
}

type NarcoticLogInput struct {
	PatientInfo string `json:"patient_info"`
	Reason      string `json:"reason"`
}

// TransactionCreate is the body of POST /transactions/.
type TransactionCreate struct {
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

type NarcoticLog struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transaction_id"`
	PatientInfo   string    `json:"patient_info"`
	Reason        string    `json:"reason"`
	Delta         float64   `json:"delta"`
	CreatedAt     time.Time `json:"created_at"`
	Material      Material  `json:"material"`
	User          User      `json:"user"`
}

type RequestItem struct {
	MaterialName   string     `json:"material_name"`
	Quantity       float64    `json:"quantity"`
	Unit           vocab.Unit `json:"unit"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
)

type Request struct {
	ID          int64         `json:"id"`
	RequesterID int64         `json:"requester_id"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	Items       []RequestItem `json:"items"`
}

type User struct {
	ID       int64      `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     vocab.Role `json:"role"`
	IsActive bool       `json:"is_active"`
}

// DisplayName falls back to the e-mail when no name was given.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

type UserCreate struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name,omitempty"`
	Role     vocab.Role `json:"role"`
}

type Activity struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type DistributionItem struct {
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"total_quantity"`
}

type DashboardStats struct {
	LowStockItems        []Material         `json:"low_stock_items"`
	ExpiringSoonBatches  []Batch            `json:"expiring_soon_batches"`
	MaterialDistribution []DistributionItem `json:"material_distribution"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
