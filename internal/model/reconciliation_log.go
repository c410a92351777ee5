package model

import (
	"time"

	"github.com/google/uuid"
)

// PerformedBySystem is the actor recorded for automated decisions.
const PerformedBySystem = "system"

// ReconciliationLogEntry is the immutable audit record written once per
// decision. Entries are never updated or deleted.
type ReconciliationLogEntry struct {
	ID            uuid.UUID            `json:"id"             db:"id"`
	TransactionID uuid.UUID            `json:"transaction_id" db:"transaction_id"`
	Action        ReconciliationAction `json:"action"         db:"action"`
	Confidence    int                  `json:"confidence_score" db:"confidence_score"`
	Reason        string               `json:"match_reason"   db:"match_reason"`
	PerformedBy   string               `json:"performed_by"   db:"performed_by"`
	CreatedAt     time.Time            `json:"created_at"     db:"created_at"`
}
