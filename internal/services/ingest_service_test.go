package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/internal/repository"
)

type MockTransactionWriter struct {
	mock.Mock
}

func (m *MockTransactionWriter) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionWriter) GetByReceipt(ctx context.Context, receipt string) (*model.Transaction, error) {
	args := m.Called(ctx, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionWriter) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Transaction), args.Get(1).(int64), args.Error(2)
}

func validIngestRequest(ownerID uuid.UUID) model.IngestRequest {
	return model.IngestRequest{
		OwnerID:          ownerID,
		PhoneNumber:      "+254712345678",
		Amount:           decimal.NewFromInt(15000),
		ReceiptNumber:    "SAL12XYZ9",
		AccountReference: "UNIT-A4",
		TransactionDate:  time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
	}
}

func TestIngest_CreatesPending(t *testing.T) {
	repo := new(MockTransactionWriter)
	service := NewIngestService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	req := validIngestRequest(ownerID)

	repo.On("GetByReceipt", ctx, req.ReceiptNumber).Return(nil, repository.ErrTransactionNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*model.Transaction")).
		Return(&model.Transaction{ID: uuid.New(), Status: model.StatusPending}, nil)

	txn, created, err := service.Ingest(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.StatusPending, txn.Status)

	stored := repo.Calls[1].Arguments.Get(1).(*model.Transaction)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Equal(t, req.ReceiptNumber, stored.ReceiptNumber)
	assert.Equal(t, ownerID, stored.OwnerID)
}

func TestIngest_ValidationFailures(t *testing.T) {
	repo := new(MockTransactionWriter)
	service := NewIngestService(repo)
	ctx := context.Background()
	ownerID := uuid.New()

	cases := []struct {
		name   string
		mutate func(*model.IngestRequest)
	}{
		{"missing owner", func(r *model.IngestRequest) { r.OwnerID = uuid.Nil }},
		{"missing receipt", func(r *model.IngestRequest) { r.ReceiptNumber = "  " }},
		{"zero amount", func(r *model.IngestRequest) { r.Amount = decimal.Zero }},
		{"negative amount", func(r *model.IngestRequest) { r.Amount = decimal.NewFromInt(-100) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validIngestRequest(ownerID)
			tc.mutate(&req)

			txn, created, err := service.Ingest(ctx, req)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.False(t, created)
			assert.Nil(t, txn)
		})
	}

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_ReplayedReceiptReturnsExisting(t *testing.T) {
	repo := new(MockTransactionWriter)
	service := NewIngestService(repo)
	ctx := context.Background()

	req := validIngestRequest(uuid.New())
	existing := &model.Transaction{ID: uuid.New(), ReceiptNumber: req.ReceiptNumber, Status: model.StatusMatched}

	repo.On("GetByReceipt", ctx, req.ReceiptNumber).Return(existing, nil)

	txn, created, err := service.Ingest(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, txn.ID)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

const sampleStatement = `Receipt No,Completion Time,Details,Transaction Amount,Other Party Info
SAL11AAAA,01/03/2026 09:15:00,UNIT-A4 rent,"15,000.00",0712345678 - JOHN DOE
SAL11BBBB,02/03/2026 14:30:00,B7 march,7500.00,0722000000 - JANE ROE
,03/03/2026 10:00:00,missing receipt,5000.00,0733000000 - NO ONE
`

func TestImportStatement(t *testing.T) {
	repo := new(MockTransactionWriter)
	service := NewIngestService(repo)
	ctx := context.Background()
	ownerID := uuid.New()

	repo.On("GetByReceipt", ctx, "SAL11AAAA").Return(nil, repository.ErrTransactionNotFound)
	repo.On("GetByReceipt", ctx, "SAL11BBBB").Return(nil, repository.ErrTransactionNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*model.Transaction")).
		Return(&model.Transaction{ID: uuid.New(), Status: model.StatusPending}, nil)

	result, err := service.ImportStatement(ctx, ownerID, strings.NewReader(sampleStatement))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Ingested)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "mpesa_receipt_number is required")

	first := repo.Calls[1].Arguments.Get(1).(*model.Transaction)
	assert.Equal(t, "SAL11AAAA", first.ReceiptNumber)
	assert.Equal(t, "0712345678", first.PhoneNumber)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "UNIT-A4 rent", first.AccountReference)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC), first.TransactionDate)
}

func TestImportStatement_MissingColumn(t *testing.T) {
	repo := new(MockTransactionWriter)
	service := NewIngestService(repo)

	bad := "Receipt No,Details\nSAL11AAAA,rent\n"
	result, err := service.ImportStatement(context.Background(), uuid.New(), strings.NewReader(bad))
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Nil(t, result)
}

func TestImportStatement_ReplayedRowsCountAsSkipped(t *testing.T) {
	repo := new(MockTransactionWriter)
	service := NewIngestService(repo)
	ctx := context.Background()

	repo.On("GetByReceipt", ctx, "SAL11AAAA").
		Return(&model.Transaction{ID: uuid.New(), ReceiptNumber: "SAL11AAAA"}, nil)

	statement := "Receipt No,Completion Time,Details,Transaction Amount,Other Party Info\n" +
		"SAL11AAAA,01/03/2026 09:15:00,UNIT-A4 rent,15000.00,0712345678 - JOHN DOE\n"

	result, err := service.ImportStatement(ctx, uuid.New(), strings.NewReader(statement))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Ingested)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
