package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wanjohi/rent-reconciler/internal/model"
)

var (
	OwnerA = uuid.MustParse("0d1f6a3e-0000-4000-8000-000000000001")
	OwnerB = uuid.MustParse("0d1f6a3e-0000-4000-8000-000000000002")
)

// RentDay is a transaction date inside the expected payment window.
var RentDay = time.Date(2026, time.March, 5, 10, 30, 0, 0, time.UTC)

func NewIngestRequest(ownerID uuid.UUID, receipt, phone string, amount int64) model.IngestRequest {
	return model.IngestRequest{
		OwnerID:         ownerID,
		ReceiptNumber:   receipt,
		PhoneNumber:     phone,
		Amount:          decimal.NewFromInt(amount),
		TransactionDate: RentDay,
	}
}

func NewCandidate(tenantID uuid.UUID, name, phone, unitNumber string, rent int64) model.TenantCandidate {
	return model.TenantCandidate{
		TenantID:   tenantID,
		FullName:   name,
		Phone:      phone,
		UnitNumber: unitNumber,
		RentAmount: decimal.NewFromInt(rent),
	}
}

func FilterByOwner(ownerID uuid.UUID) model.TransactionFilter {
	return model.TransactionFilter{
		OwnerID: &ownerID,
		Limit:   50,
	}
}

func FilterByStatus(ownerID uuid.UUID, statuses ...model.ReconciliationStatus) model.TransactionFilter {
	return model.TransactionFilter{
		OwnerID:  &ownerID,
		Statuses: statuses,
		Limit:    50,
	}
}

var (
	ValidPhoneNumbers = []string{
		"254712345678",
		"+254712345678",
		"0712345678",
		"712345678",
	}

	ValidReceipts = []string{
		"SAL1AB2CD3",
		"SBM9XY8WV7",
		"SCN4EF5GH6",
	}
)
