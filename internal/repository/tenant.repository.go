package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrTenantNotFound is returned when a tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")
)

const tenantStatusActive = "active"

type TenantRepository struct {
	*pg.DB
}

func NewTenantRepository(db *pg.DB) *TenantRepository {
	return &TenantRepository{
		db,
	}
}

// FindActiveCandidates loads the owner's current candidate pool: every
// active tenant joined with its unit. Read fresh on every run, no caching.
func (r *TenantRepository) FindActiveCandidates(ctx context.Context, ownerID uuid.UUID) ([]model.TenantCandidate, error) {
	var rows []candidateRow
	err := r.Read(ctx).WithContext(ctx).
		Table("tenants AS t").
		Select(`
            t.id          AS id,
            t.property_id AS property_id,
            t.unit_id     AS unit_id,
            t.full_name   AS full_name,
            t.phone       AS phone,
            t.rent_amount AS rent_amount,
            COALESCE(u.unit_number, '') AS unit_number
        `).
		Joins("LEFT JOIN units AS u ON u.id = t.unit_id").
		Where("t.owner_id = ? AND t.status = ?", ownerID, tenantStatusActive).
		Order("t.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]model.TenantCandidate, len(rows))
	for i, row := range rows {
		candidates[i] = model.TenantCandidate{
			TenantID:   row.ID,
			PropertyID: row.PropertyID,
			UnitID:     row.UnitID,
			UnitNumber: row.UnitNumber,
			FullName:   row.FullName,
			Phone:      row.Phone,
			RentAmount: row.RentAmount,
		}
	}
	return candidates, nil
}

// GetCandidate loads one tenant as a candidate snapshot, used by manual match.
func (r *TenantRepository) GetCandidate(ctx context.Context, tenantID uuid.UUID) (*model.TenantCandidate, error) {
	var entity TenantEntity
	err := r.Read(ctx).WithContext(ctx).Where("id = ?", tenantID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	unitNumber := ""
	if entity.UnitID != nil {
		var unit UnitEntity
		if err := r.Read(ctx).WithContext(ctx).Where("id = ?", *entity.UnitID).First(&unit).Error; err == nil {
			unitNumber = unit.UnitNumber
		}
	}

	return &model.TenantCandidate{
		TenantID:   entity.ID,
		PropertyID: entity.PropertyID,
		UnitID:     entity.UnitID,
		UnitNumber: unitNumber,
		FullName:   entity.FullName,
		Phone:      entity.Phone,
		RentAmount: entity.RentAmount,
	}, nil
}

func (r *TenantRepository) SetLastPaymentDate(ctx context.Context, tenantID uuid.UUID, paidAt time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&TenantEntity{}).
		Where("id = ?", tenantID).
		Update("last_payment_date", paidAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}
