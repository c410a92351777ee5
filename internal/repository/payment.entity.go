package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wanjohi/rent-reconciler/internal/model"
)

type PaymentEntity struct {
	ID        uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	OwnerID   uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index"`
	UnitID    *uuid.UUID      `gorm:"column:unit_id;type:uuid"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Method    string          `gorm:"column:method;not null"`
	Status    string          `gorm:"column:status;not null"`
	Reference string          `gorm:"column:reference;uniqueIndex;not null"`
	PaidAt    time.Time       `gorm:"column:paid_at;not null"`
	Metadata  string          `gorm:"column:metadata"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (PaymentEntity) TableName() string {
	return "payments"
}

func toPaymentEntity(m *model.Payment) *PaymentEntity {
	if m == nil {
		return nil
	}
	return &PaymentEntity{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		TenantID:  m.TenantID,
		UnitID:    m.UnitID,
		Amount:    m.Amount,
		Method:    string(m.Method),
		Status:    string(m.Status),
		Reference: m.Reference,
		PaidAt:    m.PaidAt,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
}

func toPaymentModel(e *PaymentEntity) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		TenantID:  e.TenantID,
		UnitID:    e.UnitID,
		Amount:    e.Amount,
		Method:    model.PaymentMethod(e.Method),
		Status:    model.PaymentStatus(e.Status),
		Reference: e.Reference,
		PaidAt:    e.PaidAt,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}
