package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/pkg/pg"
)

type ReminderRepository struct {
	*pg.DB
}

func NewReminderRepository(db *pg.DB) *ReminderRepository {
	return &ReminderRepository{
		db,
	}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) (*model.Reminder, error) {
	entity := toReminderEntity(reminder)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toReminderModel(entity), nil
}

// CancelPending cancels every still-pending reminder for the tenant in the
// given "YYYY-MM" month. Returns how many rows were cancelled.
func (r *ReminderRepository) CancelPending(ctx context.Context, tenantID uuid.UUID, month string) (int64, error) {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ReminderEntity{}).
		Where("tenant_id = ? AND reference_month = ? AND status = ?",
			tenantID, month, string(model.ReminderStatusPending)).
		Update("status", string(model.ReminderStatusCancelled))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *ReminderRepository) ListByTenantMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]*model.Reminder, error) {
	var entities []*ReminderEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tenant_id = ? AND reference_month = ?", tenantID, month).
		Order("scheduled_for ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	reminders := make([]*model.Reminder, len(entities))
	for i, e := range entities {
		reminders[i] = toReminderModel(e)
	}
	return reminders, nil
}
