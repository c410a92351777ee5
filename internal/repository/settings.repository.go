package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/pkg/pg"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	*pg.DB
}

func NewSettingsRepository(db *pg.DB) *SettingsRepository {
	return &SettingsRepository{
		db,
	}
}

// GetAccountReferenceFormat returns the owner's configured template, or the
// default when the owner has no settings row.
func (r *SettingsRepository) GetAccountReferenceFormat(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var entity OwnerSettingsEntity
	err := r.Read(ctx).WithContext(ctx).Where("owner_id = ?", ownerID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultAccountReferenceFormat, nil
		}
		return "", err
	}
	if entity.AccountReferenceFormat == "" {
		return model.DefaultAccountReferenceFormat, nil
	}
	return entity.AccountReferenceFormat, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *model.OwnerSettings) error {
	entity := &OwnerSettingsEntity{
		OwnerID:                settings.OwnerID,
		AccountReferenceFormat: settings.AccountReferenceFormat,
	}
	return r.Write(ctx).WithContext(ctx).Save(entity).Error
}
