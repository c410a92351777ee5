package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrValidation marks malformed ingest payloads. It is rejected before
// anything is persisted.
var ErrValidation = errors.New("validation error")

// ReconciliationStatus is the lifecycle state of a transaction.
type ReconciliationStatus string

const (
	StatusPending   ReconciliationStatus = "pending"
	StatusMatched   ReconciliationStatus = "matched"
	StatusPartial   ReconciliationStatus = "partial"
	StatusDuplicate ReconciliationStatus = "duplicate"
	StatusDisputed  ReconciliationStatus = "disputed"
	StatusUnmatched ReconciliationStatus = "unmatched"
)

// Terminal reports whether the pipeline treats a re-run as a no-op.
func (s ReconciliationStatus) Terminal() bool {
	return s == StatusMatched || s == StatusPartial || s == StatusDuplicate
}

// NormalizeStatus maps any stringly-typed status spelling onto the one
// canonical enum so internal logic never needs dual checks.
func NormalizeStatus(s string) (ReconciliationStatus, error) {
	switch ReconciliationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusMatched:
		return StatusMatched, nil
	case StatusPartial:
		return StatusPartial, nil
	case StatusDuplicate:
		return StatusDuplicate, nil
	case StatusDisputed:
		return StatusDisputed, nil
	case StatusUnmatched:
		return StatusUnmatched, nil
	}
	return "", fmt.Errorf("%w: unknown reconciliation status %q", ErrValidation, s)
}

// ReconciliationAction is what the decision engine did about a transaction.
type ReconciliationAction string

const (
	ActionAutoMatched   ReconciliationAction = "auto_matched"
	ActionManualMatched ReconciliationAction = "manual_matched"
	ActionFlagged       ReconciliationAction = "flagged"
	ActionDisputed      ReconciliationAction = "disputed"
)

// Transaction is one inbound mobile-money payment event. Created on gateway
// callback receipt, mutated only by the reconciliation pipeline, never deleted.
type Transaction struct {
	ID      uuid.UUID `json:"id"       db:"id"`
	OwnerID uuid.UUID `json:"owner_id" db:"owner_id"`

	ReceiptNumber    string          `json:"mpesa_receipt_number" db:"mpesa_receipt_number"`
	PhoneNumber      string          `json:"phone_number"         db:"phone_number"`
	Amount           decimal.Decimal `json:"amount"               db:"amount"`
	AccountReference string          `json:"account_reference"    db:"account_reference"`
	TransactionDate  time.Time       `json:"transaction_date"     db:"transaction_date"`

	// Resolved links, nil until reconciled.
	TenantID   *uuid.UUID `json:"tenant_id"          db:"tenant_id"`
	UnitID     *uuid.UUID `json:"unit_id"            db:"unit_id"`
	PropertyID *uuid.UUID `json:"property_id"        db:"property_id"`
	PaymentID  *uuid.UUID `json:"matched_payment_id" db:"matched_payment_id"`

	Status     ReconciliationStatus `json:"reconciliation_status"     db:"reconciliation_status"`
	Confidence int                  `json:"reconciliation_confidence" db:"reconciliation_confidence"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IngestRequest is the raw payload received from the payment gateway
// callback or a statement import.
type IngestRequest struct {
	OwnerID          uuid.UUID
	PhoneNumber      string
	Amount           decimal.Decimal
	ReceiptNumber    string
	AccountReference string
	TransactionDate  time.Time
}

func (p IngestRequest) Validate() error {
	if p.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner_id is required", ErrValidation)
	}
	if strings.TrimSpace(p.ReceiptNumber) == "" {
		return fmt.Errorf("%w: mpesa_receipt_number is required", ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return nil
}

// TransactionFilter controls List queries.
type TransactionFilter struct {
	OwnerID  *uuid.UUID
	Statuses []ReconciliationStatus // IN (...)
	Phone    *string
	From     *time.Time
	To       *time.Time
	Limit    int  // default 50
	Offset   int  // for pagination
	Desc     bool // order by transaction_date
}
