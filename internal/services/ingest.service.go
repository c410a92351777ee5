package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/internal/repository"
	"github.com/wanjohi/rent-reconciler/pkg/logger"
	"github.com/wanjohi/rent-reconciler/pkg/prom"
)

type TransactionWriter interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetByReceipt(ctx context.Context, receipt string) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

// IngestService accepts transactions from gateway callbacks and statement
// imports and persists them as PENDING.
type IngestService struct {
	txns TransactionWriter
}

func NewIngestService(txns TransactionWriter) *IngestService {
	return &IngestService{txns: txns}
}

// Ingest validates and stores one transaction. Replayed callbacks with a
// receipt number we already hold return the stored row untouched.
func (s *IngestService) Ingest(ctx context.Context, req model.IngestRequest) (*model.Transaction, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.txns.GetByReceipt(ctx, req.ReceiptNumber)
	if err == nil {
		logger.Info("Receipt already stored, skipping", "receipt", req.ReceiptNumber, "transaction_id", existing.ID)
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, false, err
	}

	txnDate := req.TransactionDate
	if txnDate.IsZero() {
		txnDate = time.Now().UTC()
	}

	txn, err := s.txns.Create(ctx, &model.Transaction{
		OwnerID:          req.OwnerID,
		ReceiptNumber:    req.ReceiptNumber,
		PhoneNumber:      req.PhoneNumber,
		Amount:           req.Amount,
		AccountReference: req.AccountReference,
		TransactionDate:  txnDate,
		Status:           model.StatusPending,
	})
	if err != nil {
		return nil, false, err
	}

	prom.IncCounter(prom.SystemReconciliation, prom.MetricTransactionsIngested)
	return txn, true, nil
}

// List proxies transaction queries with the service's filter defaults.
func (s *IngestService) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	return s.txns.List(ctx, f)
}

// ImportResult summarises one statement import run.
type ImportResult struct {
	Ingested int      `json:"ingested"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Safaricom statement export column headers.
const (
	csvColReceipt = "receipt no"
	csvColTime    = "completion time"
	csvColDetails = "details"
	csvColAmount  = "transaction amount"
	csvColParty   = "other party info"
)

var statementTimeLayouts = []string{
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ImportStatement parses a Safaricom CSV statement export and ingests each
// row. Rows that fail validation are skipped with their error collected, not
// aborted on; a half-good statement still yields its good rows.
func (s *IngestService) ImportStatement(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("statement import: reading header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{csvColReceipt, csvColTime, csvColAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: statement missing column %q", model.ErrValidation, required)
		}
	}

	result := &ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		req, err := statementRow(ownerID, record, cols)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		_, created, err := s.Ingest(ctx, req)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if created {
			result.Ingested++
		} else {
			result.Skipped++
		}
	}

	logger.Info("Statement import finished", "owner_id", ownerID, "ingested", result.Ingested, "skipped", result.Skipped)
	return result, nil
}

func statementRow(ownerID uuid.UUID, record []string, cols map[string]int) (model.IngestRequest, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	amount, err := parseStatementAmount(field(csvColAmount))
	if err != nil {
		return model.IngestRequest{}, err
	}
	txnDate, err := parseStatementTime(field(csvColTime))
	if err != nil {
		return model.IngestRequest{}, err
	}

	return model.IngestRequest{
		OwnerID:          ownerID,
		ReceiptNumber:    field(csvColReceipt),
		PhoneNumber:      partyPhone(field(csvColParty)),
		Amount:           amount,
		AccountReference: field(csvColDetails),
		TransactionDate:  txnDate,
	}, nil
}

// parseStatementAmount handles the thousands separators Safaricom exports
// use ("12,500.00").
func parseStatementAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad amount %q", raw)
	}
	return d, nil
}

func parseStatementTime(raw string) (time.Time, error) {
	for _, layout := range statementTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad completion time %q", raw)
}

// partyPhone pulls the MSISDN out of "0712345678 - JOHN DOE".
func partyPhone(party string) string {
	phone, _, _ := strings.Cut(party, " - ")
	return strings.TrimSpace(phone)
}
