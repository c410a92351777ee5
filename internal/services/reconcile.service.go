package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/internal/repository"
	"github.com/wanjohi/rent-reconciler/pkg/logger"
	"github.com/wanjohi/rent-reconciler/pkg/prom"
)

var (
	ErrNotFound = errors.New("transaction not found")
)

// Decision thresholds. At or above thresholdAutoMatch the engine links the
// payment on its own; the review band still links but flags the reason;
// the suggest band only records candidates for the owner to confirm.
const (
	thresholdAutoMatch = 90
	thresholdReview    = 70
	thresholdSuggest   = 40
)

const reviewFlagPrefix = "[REVIEW FLAGGED] "

type TransactionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Transaction, error)
	Update(ctx context.Context, txn *model.Transaction) error
	FindDuplicate(ctx context.Context, txn *model.Transaction) (bool, string, error)
}

type TenantStore interface {
	FindActiveCandidates(ctx context.Context, ownerID uuid.UUID) ([]model.TenantCandidate, error)
	GetCandidate(ctx context.Context, tenantID uuid.UUID) (*model.TenantCandidate, error)
	SetLastPaymentDate(ctx context.Context, tenantID uuid.UUID, paidAt time.Time) error
}

type PaymentStore interface {
	CreateIfAbsent(ctx context.Context, payment *model.Payment) (*model.Payment, bool, error)
}

type ReminderStore interface {
	CancelPending(ctx context.Context, tenantID uuid.UUID, month string) (int64, error)
}

type SettingsStore interface {
	GetAccountReferenceFormat(ctx context.Context, ownerID uuid.UUID) (string, error)
}

type AuditStore interface {
	Append(ctx context.Context, entry *model.ReconciliationLogEntry) (*model.ReconciliationLogEntry, error)
}

// ReconcileService runs the matching pipeline for a single transaction and
// carries the manual override operations.
type ReconcileService struct {
	txns      TransactionStore
	tenants   TenantStore
	payments  PaymentStore
	reminders ReminderStore
	settings  SettingsStore
	audit     AuditStore
}

func NewReconcileService(
	txns TransactionStore,
	tenants TenantStore,
	payments PaymentStore,
	reminders ReminderStore,
	settings SettingsStore,
	audit AuditStore,
) *ReconcileService {
	return &ReconcileService{
		txns:      txns,
		tenants:   tenants,
		payments:  payments,
		reminders: reminders,
		settings:  settings,
		audit:     audit,
	}
}

// Reconcile runs the full pipeline: duplicate check, candidate scoring,
// decision, side effects, audit. Transactions already in a terminal state
// are returned unchanged.
func (s *ReconcileService) Reconcile(ctx context.Context, transactionID, ownerID uuid.UUID) (*model.Transaction, error) {
	start := time.Now()
	txn, err := s.txns.GetForOwner(ctx, transactionID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if txn.Status.Terminal() {
		logger.Info("Transaction already in terminal state, skipping", "transaction_id", txn.ID, "status", txn.Status)
		return txn, nil
	}

	isDup, rule, err := s.txns.FindDuplicate(ctx, txn)
	if err != nil {
		return nil, err
	}
	if isDup {
		return s.markDuplicate(ctx, txn, rule)
	}

	refFormat, err := s.settings.GetAccountReferenceFormat(ctx, txn.OwnerID)
	if err != nil {
		logger.Warn("Account reference format lookup failed, using default", "owner_id", txn.OwnerID, "error", err)
		refFormat = model.DefaultAccountReferenceFormat
	}

	candidates, err := s.tenants.FindActiveCandidates(ctx, txn.OwnerID)
	if err != nil {
		return nil, err
	}

	best, bestScore, bestReasons := pickBest(txn, candidates, refFormat)
	txn.Confidence = bestScore

	switch {
	case best != nil && bestScore >= thresholdAutoMatch:
		err = s.autoMatch(ctx, txn, *best, bestScore, bestReasons, false)
	case best != nil && bestScore >= thresholdReview:
		err = s.autoMatch(ctx, txn, *best, bestScore, bestReasons, true)
	case best != nil && bestScore >= thresholdSuggest:
		err = s.suggestMatch(ctx, txn, *best, bestScore, bestReasons)
	default:
		err = s.noMatch(ctx, txn, bestScore)
	}
	if err != nil {
		return nil, err
	}

	prom.ObserveHistogramVec(prom.SystemReconciliation, prom.MetricPipelineDuration, time.Since(start).Seconds(), string(txn.Status))
	prom.ObserveHistogramVec(prom.SystemReconciliation, prom.MetricConfidenceScore, float64(bestScore), string(txn.Status))
	return txn, nil
}

// pickBest scores every candidate and keeps the highest. Ties go to the
// lexicographically smallest tenant ID so reruns are deterministic.
func pickBest(txn *model.Transaction, candidates []model.TenantCandidate, refFormat string) (*model.TenantCandidate, int, []string) {
	var (
		best        *model.TenantCandidate
		bestScore   int
		bestReasons []string
	)
	for i := range candidates {
		c := candidates[i]
		score, reasons := ScoreCandidate(txn, c, refFormat)
		if best == nil || score > bestScore ||
			(score == bestScore && c.TenantID.String() < best.TenantID.String()) {
			best, bestScore, bestReasons = &candidates[i], score, reasons
		}
	}
	return best, bestScore, bestReasons
}

func (s *ReconcileService) markDuplicate(ctx context.Context, txn *model.Transaction, rule string) (*model.Transaction, error) {
	txn.Status = model.StatusDuplicate
	txn.Confidence = 0
	if err := s.txns.Update(ctx, txn); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, txn, model.ActionFlagged, 0, "Duplicate transaction: "+rule, model.PerformedBySystem)
	s.countDecision(txn.Status, model.ActionFlagged)
	return txn, nil
}

// autoMatch links the transaction to the winning tenant. A payment below the
// expected rent becomes PARTIAL rather than MATCHED. Side effects (payment
// record, last-payment-date, reminder cancellation) are best-effort: failures
// are logged and never undo the match itself.
func (s *ReconcileService) autoMatch(ctx context.Context, txn *model.Transaction, c model.TenantCandidate, score int, reasons []string, review bool) error {
	txn.TenantID = ptrUUID(c.TenantID)
	txn.UnitID = c.UnitID
	txn.PropertyID = c.PropertyID

	txn.Status = model.StatusMatched
	if c.RentAmount.IsPositive() && txn.Amount.LessThan(c.RentAmount) {
		txn.Status = model.StatusPartial
	}

	if payment := s.recordPayment(ctx, txn, c); payment != nil {
		txn.PaymentID = ptrUUID(payment.ID)
	}

	if err := s.txns.Update(ctx, txn); err != nil {
		return err
	}

	reason := fmt.Sprintf("Matched to %s (score %d): %s", c.FullName, score, strings.Join(reasons, ", "))
	if txn.Status == model.StatusPartial {
		reason = fmt.Sprintf("Partial payment of %s against expected %s. %s", txn.Amount, c.RentAmount, reason)
	}
	if review {
		reason = reviewFlagPrefix + reason
	}
	s.appendAudit(ctx, txn, model.ActionAutoMatched, score, reason, model.PerformedBySystem)
	s.countDecision(txn.Status, model.ActionAutoMatched)

	s.touchTenant(ctx, c.TenantID, txn.TransactionDate)
	s.cancelReminders(ctx, c.TenantID, txn.TransactionDate)
	return nil
}

// suggestMatch records the candidate links but leaves the transaction
// unmatched for the owner to confirm.
func (s *ReconcileService) suggestMatch(ctx context.Context, txn *model.Transaction, c model.TenantCandidate, score int, reasons []string) error {
	txn.TenantID = ptrUUID(c.TenantID)
	txn.UnitID = c.UnitID
	txn.PropertyID = c.PropertyID
	txn.Status = model.StatusUnmatched

	if err := s.txns.Update(ctx, txn); err != nil {
		return err
	}
	reason := fmt.Sprintf("Suggested match: %s (score %d): %s. Needs manual confirmation.", c.FullName, score, strings.Join(reasons, ", "))
	s.appendAudit(ctx, txn, model.ActionFlagged, score, reason, model.PerformedBySystem)
	s.countDecision(txn.Status, model.ActionFlagged)
	return nil
}

func (s *ReconcileService) noMatch(ctx context.Context, txn *model.Transaction, score int) error {
	txn.Status = model.StatusUnmatched
	if err := s.txns.Update(ctx, txn); err != nil {
		return err
	}
	reason := fmt.Sprintf("No confident match found (best score %d). Manual resolution required.", score)
	s.appendAudit(ctx, txn, model.ActionFlagged, score, reason, model.PerformedBySystem)
	s.countDecision(txn.Status, model.ActionFlagged)
	return nil
}

// ManualMatch links a transaction to the tenant the owner chose. Always
// confidence 100 regardless of what the scorer thought.
func (s *ReconcileService) ManualMatch(ctx context.Context, transactionID, ownerID, tenantID uuid.UUID, performedBy string) (*model.Transaction, error) {
	txn, err := s.txns.GetForOwner(ctx, transactionID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c, err := s.tenants.GetCandidate(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	txn.TenantID = ptrUUID(c.TenantID)
	txn.UnitID = c.UnitID
	txn.PropertyID = c.PropertyID
	txn.Confidence = MaxScore
	txn.Status = model.StatusMatched
	if c.RentAmount.IsPositive() && txn.Amount.LessThan(c.RentAmount) {
		txn.Status = model.StatusPartial
	}

	if payment := s.recordPayment(ctx, txn, *c); payment != nil {
		txn.PaymentID = ptrUUID(payment.ID)
	}

	if err := s.txns.Update(ctx, txn); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, txn, model.ActionManualMatched, MaxScore, "Manually matched to "+c.FullName, performedBy)
	s.countDecision(txn.Status, model.ActionManualMatched)

	s.touchTenant(ctx, c.TenantID, txn.TransactionDate)
	s.cancelReminders(ctx, c.TenantID, txn.TransactionDate)
	return txn, nil
}

// Dispute marks a transaction as contested. Any prior links stay in place so
// the dispute can be reviewed against them.
func (s *ReconcileService) Dispute(ctx context.Context, transactionID, ownerID uuid.UUID, reason, performedBy string) (*model.Transaction, error) {
	txn, err := s.txns.GetForOwner(ctx, transactionID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	txn.Status = model.StatusDisputed
	if err := s.txns.Update(ctx, txn); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, txn, model.ActionDisputed, txn.Confidence, "Disputed: "+reason, performedBy)
	s.countDecision(txn.Status, model.ActionDisputed)
	return txn, nil
}

// recordPayment writes the idempotent payment record keyed on the receipt
// number. Returns nil on failure; a payment-ledger hiccup must not unwind
// an otherwise correct match.
func (s *ReconcileService) recordPayment(ctx context.Context, txn *model.Transaction, c model.TenantCandidate) *model.Payment {
	payment := &model.Payment{
		OwnerID:   txn.OwnerID,
		TenantID:  c.TenantID,
		UnitID:    c.UnitID,
		Amount:    txn.Amount,
		Method:    model.PaymentMethodMpesa,
		Status:    model.PaymentStatusCompleted,
		Reference: txn.ReceiptNumber,
		PaidAt:    txn.TransactionDate,
		Metadata:  fmt.Sprintf(`{"transaction_id":%q,"phone_number":%q}`, txn.ID, txn.PhoneNumber),
	}
	created, fresh, err := s.payments.CreateIfAbsent(ctx, payment)
	if err != nil {
		logger.Error("Payment record creation failed", "receipt", txn.ReceiptNumber, "error", err)
		return nil
	}
	if !fresh {
		logger.Info("Payment already recorded for receipt, reusing", "receipt", txn.ReceiptNumber, "payment_id", created.ID)
	}
	return created
}

func (s *ReconcileService) touchTenant(ctx context.Context, tenantID uuid.UUID, paidAt time.Time) {
	if err := s.tenants.SetLastPaymentDate(ctx, tenantID, paidAt); err != nil {
		logger.Error("Last payment date update failed", "tenant_id", tenantID, "error", err)
	}
}

func (s *ReconcileService) cancelReminders(ctx context.Context, tenantID uuid.UUID, txnDate time.Time) {
	month := txnDate.Format("2006-01")
	n, err := s.reminders.CancelPending(ctx, tenantID, month)
	if err != nil {
		logger.Error("Reminder cancellation failed", "tenant_id", tenantID, "month", month, "error", err)
		return
	}
	if n > 0 {
		logger.Info("Cancelled pending reminders", "count", n, "tenant_id", tenantID, "month", month)
	}
}

func (s *ReconcileService) appendAudit(ctx context.Context, txn *model.Transaction, action model.ReconciliationAction, confidence int, reason, performedBy string) {
	_, err := s.audit.Append(ctx, &model.ReconciliationLogEntry{
		TransactionID: txn.ID,
		Action:        action,
		Confidence:    confidence,
		Reason:        reason,
		PerformedBy:   performedBy,
	})
	if err != nil {
		logger.Error("Audit log append failed", "transaction_id", txn.ID, "error", err)
	}
}

func (s *ReconcileService) countDecision(status model.ReconciliationStatus, action model.ReconciliationAction) {
	prom.IncCounterVec(prom.SystemReconciliation, prom.MetricDecisions, string(status), string(action))
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
