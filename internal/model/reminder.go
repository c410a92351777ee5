package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusSent      ReminderStatus = "sent"
	ReminderStatusFailed    ReminderStatus = "failed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// Reminder is one scheduled payment-reminder dispatch. The reconciliation
// pipeline cancels pending rows for a tenant once the month's rent arrives.
type Reminder struct {
	ID       uuid.UUID      `json:"id"        db:"id"`
	OwnerID  uuid.UUID      `json:"owner_id"  db:"owner_id"`
	TenantID uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	Status   ReminderStatus `json:"status"    db:"status"`

	// Month the reminder refers to, "YYYY-MM".
	ReferenceMonth string    `json:"reference_month" db:"reference_month"`
	ScheduledFor   time.Time `json:"scheduled_for"   db:"scheduled_for"`
	Message        string    `json:"message"         db:"message"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
}
