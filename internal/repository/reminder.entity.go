package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/wanjohi/rent-reconciler/internal/model"
)

type ReminderEntity struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	OwnerID        uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	TenantID       uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index:ix_reminder_tenant_month"`
	Status         string    `gorm:"column:status;not null;default:pending;index"`
	ReferenceMonth string    `gorm:"column:reference_month;index:ix_reminder_tenant_month"`
	ScheduledFor   time.Time `gorm:"column:scheduled_for;not null"`
	Message        string    `gorm:"column:message"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ReminderEntity) TableName() string {
	return "reminders"
}

func toReminderEntity(m *model.Reminder) *ReminderEntity {
	if m == nil {
		return nil
	}
	return &ReminderEntity{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		TenantID:       m.TenantID,
		Status:         string(m.Status),
		ReferenceMonth: m.ReferenceMonth,
		ScheduledFor:   m.ScheduledFor,
		Message:        m.Message,
		CreatedAt:      m.CreatedAt,
	}
}

func toReminderModel(e *ReminderEntity) *model.Reminder {
	if e == nil {
		return nil
	}
	return &model.Reminder{
		ID:             e.ID,
		OwnerID:        e.OwnerID,
		TenantID:       e.TenantID,
		Status:         model.ReminderStatus(e.Status),
		ReferenceMonth: e.ReferenceMonth,
		ScheduledFor:   e.ScheduledFor,
		Message:        e.Message,
		CreatedAt:      e.CreatedAt,
	}
}
