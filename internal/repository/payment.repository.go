package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrPaymentNotFound is returned when a payment does not exist.
	ErrPaymentNotFound = errors.New("payment not found")
)

type PaymentRepository struct {
	*pg.DB
}

func NewPaymentRepository(db *pg.DB) *PaymentRepository {
	return &PaymentRepository{
		db,
	}
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var entity PaymentEntity
	err := r.Read(ctx).WithContext(ctx).Where("reference = ?", reference).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return toPaymentModel(&entity), nil
}

// CreateIfAbsent inserts the payment unless one already exists for the same
// reference, in which case the stored row is returned. This is what makes
// payment creation safe to re-run for a receipt. The lookup and insert run in
// one transaction on the write connection so a lagging read replica cannot
// miss a reference that was just written.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, payment *model.Payment) (*model.Payment, bool, error) {
	var result *model.Payment
	created := false

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var existing PaymentEntity
		err := r.Write(ctx).Where("reference = ?", payment.Reference).First(&existing).Error
		if err == nil {
			result = toPaymentModel(&existing)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entity := toPaymentEntity(payment)
		if entity.ID == uuid.Nil {
			entity.ID = uuid.New()
		}
		if err := r.Write(ctx).Create(entity).Error; err != nil {
			return err
		}
		result = toPaymentModel(entity)
		created = true
		return nil
	})
	if err != nil {
		// Lost a race on the unique reference index: re-read the winner.
		if stored, getErr := r.GetByReference(ctx, payment.Reference); getErr == nil {
			return stored, false, nil
		}
		return nil, false, err
	}
	return result, created, nil
}
