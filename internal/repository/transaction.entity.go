package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wanjohi/rent-reconciler/internal/model"
)

type TransactionEntity struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index:ix_txn_owner_status"`

	ReceiptNumber    string          `gorm:"column:mpesa_receipt_number;uniqueIndex;not null"`
	PhoneNumber      string          `gorm:"column:phone_number;not null;index:ix_txn_phone_date"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	AccountReference string          `gorm:"column:account_reference"`
	TransactionDate  time.Time       `gorm:"column:transaction_date;not null;index:ix_txn_phone_date"`

	TenantID   *uuid.UUID `gorm:"column:tenant_id;type:uuid"`
	UnitID     *uuid.UUID `gorm:"column:unit_id;type:uuid"`
	PropertyID *uuid.UUID `gorm:"column:property_id;type:uuid"`
	PaymentID  *uuid.UUID `gorm:"column:matched_payment_id;type:uuid"`

	Status     string `gorm:"column:reconciliation_status;not null;default:pending;index:ix_txn_owner_status"`
	Confidence int    `gorm:"column:reconciliation_confidence;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TransactionEntity) TableName() string {
	return "mpesa_transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		ReceiptNumber:    m.ReceiptNumber,
		PhoneNumber:      m.PhoneNumber,
		Amount:           m.Amount,
		AccountReference: m.AccountReference,
		TransactionDate:  m.TransactionDate,
		TenantID:         m.TenantID,
		UnitID:           m.UnitID,
		PropertyID:       m.PropertyID,
		PaymentID:        m.PaymentID,
		Status:           string(m.Status),
		Confidence:       m.Confidence,
		CreatedAt:        m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:               e.ID,
		OwnerID:          e.OwnerID,
		ReceiptNumber:    e.ReceiptNumber,
		PhoneNumber:      e.PhoneNumber,
		Amount:           e.Amount,
		AccountReference: e.AccountReference,
		TransactionDate:  e.TransactionDate,
		TenantID:         e.TenantID,
		UnitID:           e.UnitID,
		PropertyID:       e.PropertyID,
		PaymentID:        e.PaymentID,
		Status:           model.ReconciliationStatus(e.Status),
		Confidence:       e.Confidence,
		CreatedAt:        e.CreatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
