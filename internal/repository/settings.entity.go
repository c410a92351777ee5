package repository

import (
	"time"

	"github.com/google/uuid"
)

type OwnerSettingsEntity struct {
	OwnerID                uuid.UUID `gorm:"primaryKey;type:uuid;column:owner_id"`
	AccountReferenceFormat string    `gorm:"column:account_reference_format"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (OwnerSettingsEntity) TableName() string {
	return "owner_settings"
}
