package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TenantEntity struct {
	ID         uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	OwnerID    uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index:ix_tenant_owner_status"`
	PropertyID *uuid.UUID      `gorm:"column:property_id;type:uuid"`
	UnitID     *uuid.UUID      `gorm:"column:unit_id;type:uuid"`
	FullName   string          `gorm:"column:full_name;not null"`
	Phone      string          `gorm:"column:phone"`
	RentAmount decimal.Decimal `gorm:"column:rent_amount;type:numeric(14,2)"`
	Status     string          `gorm:"column:status;not null;default:active;index:ix_tenant_owner_status"`

	LastPaymentDate *time.Time `gorm:"column:last_payment_date"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (TenantEntity) TableName() string {
	return "tenants"
}

type UnitEntity struct {
	ID         uuid.UUID  `gorm:"primaryKey;type:uuid;column:id"`
	PropertyID *uuid.UUID `gorm:"column:property_id;type:uuid"`
	UnitNumber string     `gorm:"column:unit_number;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (UnitEntity) TableName() string {
	return "units"
}

// candidateRow is the join shape returned by FindActiveCandidates.
type candidateRow struct {
	ID         uuid.UUID       `gorm:"column:id"`
	PropertyID *uuid.UUID      `gorm:"column:property_id"`
	UnitID     *uuid.UUID      `gorm:"column:unit_id"`
	UnitNumber string          `gorm:"column:unit_number"`
	FullName   string          `gorm:"column:full_name"`
	Phone      string          `gorm:"column:phone"`
	RentAmount decimal.Decimal `gorm:"column:rent_amount"`
}
