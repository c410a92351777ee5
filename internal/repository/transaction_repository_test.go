package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/rent-reconciler/internal/model"
)

func newTxn(ownerID uuid.UUID, receipt, phone string, amount int64, date time.Time) *model.Transaction {
	return &model.Transaction{
		OwnerID:          ownerID,
		ReceiptNumber:    receipt,
		PhoneNumber:      phone,
		Amount:           decimal.NewFromInt(amount),
		AccountReference: "UNIT-A4",
		TransactionDate:  date,
		Status:           model.StatusPending,
	}
}

func TestTransactionRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	created, err := repo.Create(ctx, newTxn(ownerID, "SAL11AAAA", "254712345678", 15000, time.Now().UTC()))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.NotZero(t, created.CreatedAt)
}

func TestTransactionRepository_GetForOwner(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	created, err := repo.Create(ctx, newTxn(ownerID, "SAL11AAAA", "254712345678", 15000, time.Now().UTC()))
	require.NoError(t, err)

	t.Run("found for owner", func(t *testing.T) {
		got, err := repo.GetForOwner(ctx, created.ID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("hidden from other owners", func(t *testing.T) {
		_, err := repo.GetForOwner(ctx, created.ID, uuid.New())
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}

func TestTransactionRepository_GetByReceipt(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTxn(uuid.New(), "SAL11AAAA", "254712345678", 15000, time.Now().UTC()))
	require.NoError(t, err)

	got, err := repo.GetByReceipt(ctx, "SAL11AAAA")
	require.NoError(t, err)
	assert.Equal(t, "SAL11AAAA", got.ReceiptNumber)

	_, err = repo.GetByReceipt(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestTransactionRepository_Update(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTxn(uuid.New(), "SAL11AAAA", "254712345678", 15000, time.Now().UTC()))
	require.NoError(t, err)

	tenantID := uuid.New()
	created.Status = model.StatusMatched
	created.Confidence = 100
	created.TenantID = &tenantID

	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMatched, got.Status)
	assert.Equal(t, 100, got.Confidence)
	require.NotNil(t, got.TenantID)
	assert.Equal(t, tenantID, *got.TenantID)

	t.Run("missing row", func(t *testing.T) {
		ghost := newTxn(uuid.New(), "SAL11GONE", "254712345678", 1, time.Now().UTC())
		ghost.ID = uuid.New()
		assert.ErrorIs(t, repo.Update(ctx, ghost), ErrTransactionNotFound)
	})
}

func TestTransactionRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		txn := newTxn(ownerID, "SAL11AAA"+string(rune('A'+i)), "254712345678", 15000, base.AddDate(0, 0, i))
		if i >= 3 {
			txn.Status = model.StatusUnmatched
		}
		_, err := repo.Create(ctx, txn)
		require.NoError(t, err)
	}

	t.Run("by owner", func(t *testing.T) {
		items, total, err := repo.List(ctx, model.TransactionFilter{OwnerID: &ownerID})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, items, 5)
	})

	t.Run("by status", func(t *testing.T) {
		items, total, err := repo.List(ctx, model.TransactionFilter{
			OwnerID:  &ownerID,
			Statuses: []model.ReconciliationStatus{model.StatusUnmatched},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("by date range", func(t *testing.T) {
		from := base.AddDate(0, 0, 3)
		items, _, err := repo.List(ctx, model.TransactionFilter{OwnerID: &ownerID, From: &from})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("pagination and ordering", func(t *testing.T) {
		items, total, err := repo.List(ctx, model.TransactionFilter{OwnerID: &ownerID, Limit: 2, Desc: true})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, items, 2)
		assert.True(t, items[0].TransactionDate.After(items[1].TransactionDate))
	})
}

func TestTransactionRepository_FindDuplicate(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	base := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	first, err := repo.Create(ctx, newTxn(ownerID, "SAL11AAAA", "254712345678", 15000, base))
	require.NoError(t, err)

	t.Run("no duplicate for unrelated transfer", func(t *testing.T) {
		other, err := repo.Create(ctx, newTxn(ownerID, "SAL11BBBB", "254722000000", 9000, base))
		require.NoError(t, err)

		isDup, _, err := repo.FindDuplicate(ctx, other)
		require.NoError(t, err)
		assert.False(t, isDup)
	})

	t.Run("same phone and amount within an hour", func(t *testing.T) {
		near, err := repo.Create(ctx, newTxn(ownerID, "SAL11CCCC", "254712345678", 15000, base.Add(30*time.Minute)))
		require.NoError(t, err)

		isDup, rule, err := repo.FindDuplicate(ctx, near)
		require.NoError(t, err)
		assert.True(t, isDup)
		assert.Equal(t, "same phone and amount within one hour", rule)
	})

	t.Run("same phone and amount outside the window", func(t *testing.T) {
		far, err := repo.Create(ctx, newTxn(ownerID, "SAL11DDDD", "254712345678", 15000, base.Add(3*time.Hour)))
		require.NoError(t, err)

		isDup, _, err := repo.FindDuplicate(ctx, far)
		require.NoError(t, err)
		assert.False(t, isDup)
	})

	t.Run("rows already marked duplicate do not trigger the activity rule", func(t *testing.T) {
		// Mark the sibling duplicate, then the survivor no longer collides.
		near, err := repo.GetByReceipt(ctx, "SAL11CCCC")
		require.NoError(t, err)
		near.Status = model.StatusDuplicate
		require.NoError(t, repo.Update(ctx, near))

		isDup, _, err := repo.FindDuplicate(ctx, first)
		require.NoError(t, err)
		assert.False(t, isDup)
	})

	t.Run("same receipt on another row", func(t *testing.T) {
		clone := newTxn(ownerID, "SAL11AAAA", "254799000000", 100, base)
		clone.ID = uuid.New()

		isDup, rule, err := repo.FindDuplicate(ctx, clone)
		require.NoError(t, err)
		assert.True(t, isDup)
		assert.Equal(t, "duplicate receipt number", rule)
	})
}
