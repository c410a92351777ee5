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
	// ErrTransactionNotFound is returned when a transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// duplicateWindow is how far apart two transfers from the same phone for the
// same amount may be and still count as one logical payment.
const duplicateWindow = time.Hour

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

func (r *TransactionRepository) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

func (r *TransactionRepository) GetByReceipt(ctx context.Context, receipt string) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("mpesa_receipt_number = ?", receipt).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

// Update persists the mutable reconciliation fields of an already stored
// transaction. Identity and raw gateway fields never change.
func (r *TransactionRepository) Update(ctx context.Context, txn *model.Transaction) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&TransactionEntity{}).
		Where("id = ?", txn.ID).
		Updates(map[string]interface{}{
			"tenant_id":                 txn.TenantID,
			"unit_id":                   txn.UnitID,
			"property_id":               txn.PropertyID,
			"matched_payment_id":        txn.PaymentID,
			"reconciliation_status":     string(txn.Status),
			"reconciliation_confidence": txn.Confidence,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&TransactionEntity{})

	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("reconciliation_status IN ?", statuses)
	}
	if f.Phone != nil && *f.Phone != "" {
		q = q.Where("phone_number = ?", *f.Phone)
	}
	if f.From != nil {
		q = q.Where("transaction_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("transaction_date < ?", *f.To)
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "transaction_date"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*TransactionEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toTransactionModels(entities), total, nil
}

// FindDuplicate reports whether txn collides with an already stored row:
// either the same receipt number on a different row, or the same phone and
// amount within one hour of each other where the other row has not itself
// been marked duplicate. Returns the rule that fired.
func (r *TransactionRepository) FindDuplicate(ctx context.Context, txn *model.Transaction) (bool, string, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&TransactionEntity{}).
		Where("mpesa_receipt_number = ? AND id <> ?", txn.ReceiptNumber, txn.ID).
		Count(&count).Error
	if err != nil {
		return false, "", err
	}
	if count > 0 {
		return true, "duplicate receipt number", nil
	}

	err = r.Read(ctx).WithContext(ctx).
		Model(&TransactionEntity{}).
		Where("phone_number = ? AND amount = ?", txn.PhoneNumber, txn.Amount).
		Where("transaction_date >= ? AND transaction_date <= ?",
			txn.TransactionDate.Add(-duplicateWindow), txn.TransactionDate.Add(duplicateWindow)).
		Where("id <> ?", txn.ID).
		Where("reconciliation_status <> ?", string(model.StatusDuplicate)).
		Count(&count).Error
	if err != nil {
		return false, "", err
	}
	if count > 0 {
		return true, "same phone and amount within one hour", nil
	}

	return false, "", nil
}
