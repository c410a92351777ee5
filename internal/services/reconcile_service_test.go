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

type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionStore) Update(ctx context.Context, txn *model.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionStore) FindDuplicate(ctx context.Context, txn *model.Transaction) (bool, string, error) {
	args := m.Called(ctx, txn)
	return args.Bool(0), args.String(1), args.Error(2)
}

type MockTenantStore struct {
	mock.Mock
}

func (m *MockTenantStore) FindActiveCandidates(ctx context.Context, ownerID uuid.UUID) ([]model.TenantCandidate, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TenantCandidate), args.Error(1)
}

func (m *MockTenantStore) GetCandidate(ctx context.Context, tenantID uuid.UUID) (*model.TenantCandidate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TenantCandidate), args.Error(1)
}

func (m *MockTenantStore) SetLastPaymentDate(ctx context.Context, tenantID uuid.UUID, paidAt time.Time) error {
	args := m.Called(ctx, tenantID, paidAt)
	return args.Error(0)
}

type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) CreateIfAbsent(ctx context.Context, payment *model.Payment) (*model.Payment, bool, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Payment), args.Bool(1), args.Error(2)
}

type MockReminderStore struct {
	mock.Mock
}

func (m *MockReminderStore) CancelPending(ctx context.Context, tenantID uuid.UUID, month string) (int64, error) {
	args := m.Called(ctx, tenantID, month)
	return args.Get(0).(int64), args.Error(1)
}

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) GetAccountReferenceFormat(ctx context.Context, ownerID uuid.UUID) (string, error) {
	args := m.Called(ctx, ownerID)
	return args.String(0), args.Error(1)
}

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Append(ctx context.Context, entry *model.ReconciliationLogEntry) (*model.ReconciliationLogEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconciliationLogEntry), args.Error(1)
}

type reconcileFixture struct {
	txns      *MockTransactionStore
	tenants   *MockTenantStore
	payments  *MockPaymentStore
	reminders *MockReminderStore
	settings  *MockSettingsStore
	audit     *MockAuditStore
	service   *ReconcileService
}

func newReconcileFixture() *reconcileFixture {
	f := &reconcileFixture{
		txns:      new(MockTransactionStore),
		tenants:   new(MockTenantStore),
		payments:  new(MockPaymentStore),
		reminders: new(MockReminderStore),
		settings:  new(MockSettingsStore),
		audit:     new(MockAuditStore),
	}
	f.service = NewReconcileService(f.txns, f.tenants, f.payments, f.reminders, f.settings, f.audit)
	return f
}

func pendingTxn(ownerID uuid.UUID, phone, ref string, amount int64, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		ReceiptNumber:    "SAL7QWERTY",
		PhoneNumber:      phone,
		Amount:           decimal.NewFromInt(amount),
		AccountReference: ref,
		TransactionDate:  date,
		Status:           model.StatusPending,
	}
}

func TestReconcile_AutoMatch(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	date := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "+254712345678", "UNIT-A4", 15000, date)
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{tenant}, nil)

	payment := &model.Payment{ID: uuid.New(), Reference: txn.ReceiptNumber}
	f.payments.On("CreateIfAbsent", ctx, mock.AnythingOfType("*model.Payment")).Return(payment, true, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.AnythingOfType("*model.ReconciliationLogEntry")).Return(&model.ReconciliationLogEntry{}, nil)
	f.tenants.On("SetLastPaymentDate", ctx, tenant.TenantID, date).Return(nil)
	f.reminders.On("CancelPending", ctx, tenant.TenantID, "2026-03").Return(int64(1), nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusMatched, result.Status)
	assert.Equal(t, MaxScore, result.Confidence)
	require.NotNil(t, result.TenantID)
	assert.Equal(t, tenant.TenantID, *result.TenantID)
	require.NotNil(t, result.PaymentID)
	assert.Equal(t, payment.ID, *result.PaymentID)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionAutoMatched, entry.Action)
	assert.Equal(t, MaxScore, entry.Confidence)
	assert.False(t, strings.HasPrefix(entry.Reason, reviewFlagPrefix))
	assert.Equal(t, model.PerformedBySystem, entry.PerformedBy)

	f.txns.AssertExpectations(t)
	f.reminders.AssertExpectations(t)
}

func TestReconcile_AutoMatchAtExactThreshold(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	// Phone + exact amount + reference, outside the rent window: score 90,
	// the lowest score that auto-matches without the review flag.
	date := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "0712345678", "UNIT-A4", 15000, date)
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{tenant}, nil)
	f.payments.On("CreateIfAbsent", ctx, mock.Anything).Return(&model.Payment{ID: uuid.New()}, true, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)
	f.tenants.On("SetLastPaymentDate", ctx, tenant.TenantID, date).Return(nil)
	f.reminders.On("CancelPending", ctx, tenant.TenantID, "2026-03").Return(int64(0), nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusMatched, result.Status)
	assert.Equal(t, thresholdAutoMatch, result.Confidence)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionAutoMatched, entry.Action)
	assert.NotContains(t, entry.Reason, reviewFlagPrefix)
}

func TestReconcile_ReviewBand_FlagsReason(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	// Phone + exact amount, no reference, outside the rent window: score 70.
	date := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "0712345678", "", 15000, date)
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{tenant}, nil)
	f.payments.On("CreateIfAbsent", ctx, mock.Anything).Return(&model.Payment{ID: uuid.New()}, true, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)
	f.tenants.On("SetLastPaymentDate", ctx, tenant.TenantID, date).Return(nil)
	f.reminders.On("CancelPending", ctx, tenant.TenantID, "2026-03").Return(int64(0), nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusMatched, result.Status)
	assert.Equal(t, ScorePhoneMatch+ScoreAmountExact, result.Confidence)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionAutoMatched, entry.Action)
	assert.True(t, strings.HasPrefix(entry.Reason, reviewFlagPrefix))
}

func TestReconcile_SuggestBand_StaysUnmatched(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	// Phone only: score 40. Candidate links recorded, no payment.
	date := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "0712345678", "", 9999, date)
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{tenant}, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusUnmatched, result.Status)
	assert.Equal(t, ScorePhoneMatch, result.Confidence)
	require.NotNil(t, result.TenantID)
	assert.Equal(t, tenant.TenantID, *result.TenantID)
	assert.Nil(t, result.PaymentID)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionFlagged, entry.Action)
	assert.Contains(t, entry.Reason, "Suggested match")

	f.payments.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	f.reminders.AssertNotCalled(t, "CancelPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_NoMatch(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	// Exact amount only: score 30, below the suggest band.
	date := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "0799000000", "", 15000, date)
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{tenant}, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusUnmatched, result.Status)
	assert.Equal(t, ScoreAmountExact, result.Confidence)
	assert.Nil(t, result.TenantID)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionFlagged, entry.Action)
	assert.Contains(t, entry.Reason, "No confident match")
}

func TestReconcile_PartialPayment(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	// Phone + reference + timing: 70, lands in the review band, and the
	// amount is short of the rent.
	date := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "0712345678", "UNIT-A4", 7000, date)
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{tenant}, nil)
	f.payments.On("CreateIfAbsent", ctx, mock.Anything).Return(&model.Payment{ID: uuid.New()}, true, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)
	f.tenants.On("SetLastPaymentDate", ctx, tenant.TenantID, date).Return(nil)
	f.reminders.On("CancelPending", ctx, tenant.TenantID, "2026-03").Return(int64(0), nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusPartial, result.Status)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Contains(t, entry.Reason, "Partial payment")
}

func TestReconcile_Duplicate(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	txn := pendingTxn(ownerID, "0712345678", "A4", 15000, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(true, "duplicate receipt number", nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusDuplicate, result.Status)
	assert.Equal(t, 0, result.Confidence)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionFlagged, entry.Action)
	assert.Contains(t, entry.Reason, "duplicate receipt number")

	f.tenants.AssertNotCalled(t, "FindActiveCandidates", mock.Anything, mock.Anything)
}

func TestReconcile_TerminalStatusIsNoop(t *testing.T) {
	ctx := context.Background()

	for _, status := range []model.ReconciliationStatus{
		model.StatusMatched, model.StatusPartial, model.StatusDuplicate,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newReconcileFixture()
			ownerID := uuid.New()
			txn := pendingTxn(ownerID, "0712345678", "A4", 15000, time.Now())
			txn.Status = status

			f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)

			result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
			require.NoError(t, err)
			assert.Equal(t, status, result.Status)

			f.txns.AssertNotCalled(t, "FindDuplicate", mock.Anything, mock.Anything)
			f.txns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestReconcile_PaymentFailureDoesNotUnwindMatch(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	date := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "+254712345678", "UNIT-A4", 15000, date)
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{tenant}, nil)
	f.payments.On("CreateIfAbsent", ctx, mock.Anything).Return(nil, false, assert.AnError)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)
	f.tenants.On("SetLastPaymentDate", ctx, tenant.TenantID, date).Return(assert.AnError)
	f.reminders.On("CancelPending", ctx, tenant.TenantID, "2026-03").Return(int64(0), assert.AnError)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusMatched, result.Status)
	assert.Nil(t, result.PaymentID)
}

func TestReconcile_TieBreaksOnSmallestTenantID(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	date := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "0712345678", "", 9999, date)

	// Two tenants sharing a phone line, both score 40.
	a := candidate("0712345678", "A1", "John Doe", 15000)
	b := candidate("0712345678", "A2", "Jane Doe", 20000)
	a.TenantID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	b.TenantID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("FindDuplicate", ctx, txn).Return(false, "", nil)
	f.settings.On("GetAccountReferenceFormat", ctx, ownerID).Return(model.DefaultAccountReferenceFormat, nil)
	f.tenants.On("FindActiveCandidates", ctx, ownerID).Return([]model.TenantCandidate{b, a}, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)

	result, err := f.service.Reconcile(ctx, txn.ID, ownerID)
	require.NoError(t, err)

	require.NotNil(t, result.TenantID)
	assert.Equal(t, a.TenantID, *result.TenantID)
}

func TestReconcile_NotFound(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	id, ownerID := uuid.New(), uuid.New()
	f.txns.On("GetForOwner", ctx, id, ownerID).Return(nil, repository.ErrTransactionNotFound)

	result, err := f.service.Reconcile(ctx, id, ownerID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, result)
}

func TestManualMatch(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	date := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	txn := pendingTxn(ownerID, "0799000000", "", 15000, date)
	txn.Status = model.StatusUnmatched
	txn.Confidence = 30
	tenant := candidate("0712345678", "A4", "John Doe", 15000)

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.tenants.On("GetCandidate", ctx, tenant.TenantID).Return(&tenant, nil)
	f.payments.On("CreateIfAbsent", ctx, mock.Anything).Return(&model.Payment{ID: uuid.New()}, true, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)
	f.tenants.On("SetLastPaymentDate", ctx, tenant.TenantID, date).Return(nil)
	f.reminders.On("CancelPending", ctx, tenant.TenantID, "2026-03").Return(int64(1), nil)

	result, err := f.service.ManualMatch(ctx, txn.ID, ownerID, tenant.TenantID, "owner:jane")
	require.NoError(t, err)

	assert.Equal(t, model.StatusMatched, result.Status)
	assert.Equal(t, MaxScore, result.Confidence)
	require.NotNil(t, result.TenantID)
	assert.Equal(t, tenant.TenantID, *result.TenantID)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionManualMatched, entry.Action)
	assert.Equal(t, "owner:jane", entry.PerformedBy)
}

func TestDispute(t *testing.T) {
	f := newReconcileFixture()
	ctx := context.Background()

	ownerID := uuid.New()
	txn := pendingTxn(ownerID, "0712345678", "A4", 15000, time.Now())
	txn.Status = model.StatusMatched
	txn.Confidence = 95

	f.txns.On("GetForOwner", ctx, txn.ID, ownerID).Return(txn, nil)
	f.txns.On("Update", ctx, txn).Return(nil)
	f.audit.On("Append", ctx, mock.Anything).Return(&model.ReconciliationLogEntry{}, nil)

	result, err := f.service.Dispute(ctx, txn.ID, ownerID, "tenant says amount is wrong", "owner:jane")
	require.NoError(t, err)

	assert.Equal(t, model.StatusDisputed, result.Status)

	entry := f.audit.Calls[0].Arguments.Get(1).(*model.ReconciliationLogEntry)
	assert.Equal(t, model.ActionDisputed, entry.Action)
	assert.Equal(t, 95, entry.Confidence)
	assert.Contains(t, entry.Reason, "tenant says amount is wrong")
}
