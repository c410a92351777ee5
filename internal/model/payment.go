package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
)

type PaymentMethod string

const (
	PaymentMethodMpesa PaymentMethod = "mpesa"
)

// Payment is the ledger record written when a transaction is matched to a
// tenant. Reference carries the mpesa receipt number and is unique, which is
// what makes payment creation idempotent.
type Payment struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"   db:"owner_id"`
	TenantID  uuid.UUID       `json:"tenant_id"  db:"tenant_id"`
	UnitID    *uuid.UUID      `json:"unit_id"    db:"unit_id"`
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	Method    PaymentMethod   `json:"method"     db:"method"`
	Status    PaymentStatus   `json:"status"     db:"status"`
	Reference string          `json:"reference"  db:"reference"`
	PaidAt    time.Time       `json:"paid_at"    db:"paid_at"`
	Metadata  string          `json:"metadata"   db:"metadata"` // JSON blob
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
