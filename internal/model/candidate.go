package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantCandidate is a read-only snapshot of an active tenant used during
// scoring. It is derived per reconciliation run and never persisted.
type TenantCandidate struct {
	TenantID   uuid.UUID
	PropertyID *uuid.UUID
	UnitID     *uuid.UUID
	UnitNumber string
	FullName   string
	Phone      string
	RentAmount decimal.Decimal
}
