package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/wanjohi/rent-reconciler/internal/model"
)

type ReconciliationLogEntity struct {
	ID            uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;index"`
	Action        string    `gorm:"column:action;not null"`
	Confidence    int       `gorm:"column:confidence_score;not null;default:0"`
	Reason        string    `gorm:"column:match_reason"`
	PerformedBy   string    `gorm:"column:performed_by;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ReconciliationLogEntity) TableName() string {
	return "reconciliation_logs"
}

func toReconciliationLogEntity(m *model.ReconciliationLogEntry) *ReconciliationLogEntity {
	if m == nil {
		return nil
	}
	return &ReconciliationLogEntity{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		Action:        string(m.Action),
		Confidence:    m.Confidence,
		Reason:        m.Reason,
		PerformedBy:   m.PerformedBy,
		CreatedAt:     m.CreatedAt,
	}
}

func toReconciliationLogModel(e *ReconciliationLogEntity) *model.ReconciliationLogEntry {
	if e == nil {
		return nil
	}
	return &model.ReconciliationLogEntry{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		Action:        model.ReconciliationAction(e.Action),
		Confidence:    e.Confidence,
		Reason:        e.Reason,
		PerformedBy:   e.PerformedBy,
		CreatedAt:     e.CreatedAt,
	}
}
