package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/pkg/pg"
)

// ReconciliationLogRepository is append-only: entries are never updated or
// deleted once written.
type ReconciliationLogRepository struct {
	*pg.DB
}

func NewReconciliationLogRepository(db *pg.DB) *ReconciliationLogRepository {
	return &ReconciliationLogRepository{
		db,
	}
}

func (r *ReconciliationLogRepository) Append(ctx context.Context, entry *model.ReconciliationLogEntry) (*model.ReconciliationLogEntry, error) {
	entity := toReconciliationLogEntity(entry)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toReconciliationLogModel(entity), nil
}

func (r *ReconciliationLogRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*model.ReconciliationLogEntry, error) {
	var entities []*ReconciliationLogEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	entries := make([]*model.ReconciliationLogEntry, len(entities))
	for i, e := range entities {
		entries[i] = toReconciliationLogModel(e)
	}
	return entries, nil
}
