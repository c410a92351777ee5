package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wanjohi/rent-reconciler/internal/model"
	"github.com/wanjohi/rent-reconciler/internal/services"
	xhttp "github.com/wanjohi/rent-reconciler/pkg/http"
)

type IngestService interface {
	Ingest(ctx context.Context, req model.IngestRequest) (*model.Transaction, bool, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
	ImportStatement(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*services.ImportResult, error)
}

type ReconcileOps interface {
	Reconcile(ctx context.Context, transactionID, ownerID uuid.UUID) (*model.Transaction, error)
	ManualMatch(ctx context.Context, transactionID, ownerID, tenantID uuid.UUID, performedBy string) (*model.Transaction, error)
	Dispute(ctx context.Context, transactionID, ownerID uuid.UUID, reason, performedBy string) (*model.Transaction, error)
}

type TransactionReader interface {
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Transaction, error)
}

type AuditReader interface {
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*model.ReconciliationLogEntry, error)
}

// RateLimiter guards the public webhook per owner.
type RateLimiter interface {
	Allow(key string) (bool, error)
}

type TransactionHandler struct {
	ingest    IngestService
	reconcile ReconcileOps
	txns      TransactionReader
	audit     AuditReader
	limiter   RateLimiter
}

func RegisterTransactionRoutes(e *router.Group, h *TransactionHandler) {
	e.POST("/webhooks/c2b/{owner_id}", h.C2BConfirmation)
	e.POST("/transactions", h.CreateTransaction)
	e.POST("/transactions/import", h.ImportStatement)
	e.GET("/transactions", h.ListTransactions)
	e.GET("/transactions/{id}", h.GetTransaction)
	e.GET("/transactions/{id}/logs", h.ListTransactionLogs)
	e.POST("/transactions/{id}/reconcile", h.ReconcileTransaction)
	e.POST("/transactions/{id}/match", h.ManualMatch)
	e.POST("/transactions/{id}/dispute", h.Dispute)
}

func NewTransactionHandler(ingest IngestService, reconcile ReconcileOps, txns TransactionReader, audit AuditReader) *TransactionHandler {
	return &TransactionHandler{
		ingest:    ingest,
		reconcile: reconcile,
		txns:      txns,
		audit:     audit,
	}
}

// SetRateLimiter enables per-owner webhook rate limiting. Nil means off.
func (h *TransactionHandler) SetRateLimiter(l RateLimiter) {
	h.limiter = l
}

type createTransactionRequest struct {
	OwnerID          string `json:"owner_id"`
	PhoneNumber      string `json:"phone_number"`
	Amount           string `json:"amount"`
	ReceiptNumber    string `json:"mpesa_receipt_number"`
	AccountReference string `json:"account_reference"`
	TransactionDate  string `json:"transaction_date"`
}

// c2bConfirmation is the Daraja C2B confirmation payload shape.
type c2bConfirmation struct {
	TransID       string          `json:"TransID"`
	TransAmount   json.Number     `json:"TransAmount"`
	MSISDN        string          `json:"MSISDN"`
	BillRefNumber string          `json:"BillRefNumber"`
	TransTime     string          `json:"TransTime"`
}

type manualMatchRequest struct {
	TenantID    string `json:"tenant_id"`
	PerformedBy string `json:"performed_by"`
}

type disputeRequest struct {
	Reason      string `json:"reason"`
	PerformedBy string `json:"performed_by"`
}

type listTransactionsResponse struct {
	Items []*model.Transaction `json:"items"`
	Total int64                `json:"total"`
}

type logsResponse struct {
	Items []*model.ReconciliationLogEntry `json:"items"`
}

/* --------------------------------- Routes ----------------------------------- */

// C2BConfirmation accepts the gateway's confirmation callback. Mpesa retries
// until it sees the ResultCode 0 acknowledgement, so everything short of a
// storage failure still acks.
func (h *TransactionHandler) C2BConfirmation(ctx *xhttp.RequestCtx) {
	ownerID, err := pathUUID(ctx, "owner_id")
	if err != nil {
		writeError(ctx, 400, "invalid owner_id")
		return
	}

	if h.limiter != nil {
		if ok, _ := h.limiter.Allow(ownerID.String()); !ok {
			writeError(ctx, 429, "rate limit exceeded")
			return
		}
	}

	// Payload problems are acked with ResultCode 1 so the gateway stops
	// retrying a body that can never parse. Non-200 is reserved for
	// infrastructure failures and rate limiting.
	var req c2bConfirmation
	if err := readJSON(ctx, &req); err != nil {
		writeJSON(ctx, 200, map[string]any{"ResultCode": 1, "ResultDesc": "invalid payload: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.TransAmount.String())
	if err != nil {
		writeJSON(ctx, 200, map[string]any{"ResultCode": 1, "ResultDesc": "invalid TransAmount"})
		return
	}

	p := model.IngestRequest{
		OwnerID:          ownerID,
		PhoneNumber:      req.MSISDN,
		Amount:           amount,
		ReceiptNumber:    req.TransID,
		AccountReference: req.BillRefNumber,
		TransactionDate:  parseTransTime(req.TransTime),
	}
	txn, created, err := h.ingest.Ingest(ctx, p)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			writeJSON(ctx, 200, map[string]any{"ResultCode": 1, "ResultDesc": err.Error()})
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}

	if created {
		if _, err := h.reconcile.Reconcile(ctx, txn.ID, ownerID); err != nil {
			writeError(ctx, 500, err.Error())
			return
		}
	}

	writeJSON(ctx, 200, map[string]any{"ResultCode": 0, "ResultDesc": "Accepted"})
}

func (h *TransactionHandler) CreateTransaction(ctx *xhttp.RequestCtx) {
	var req createTransactionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(ctx, 400, "invalid owner_id")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(ctx, 400, "invalid amount")
		return
	}
	var txnDate time.Time
	if req.TransactionDate != "" {
		if txnDate, err = parseTime(req.TransactionDate); err != nil {
			writeError(ctx, 400, "invalid transaction_date")
			return
		}
	}

	p := model.IngestRequest{
		OwnerID:          ownerID,
		PhoneNumber:      req.PhoneNumber,
		Amount:           amount,
		ReceiptNumber:    req.ReceiptNumber,
		AccountReference: req.AccountReference,
		TransactionDate:  txnDate,
	}
	txn, created, err := h.ingest.Ingest(ctx, p)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	if !created {
		writeJSON(ctx, 200, txn)
		return
	}
	writeJSON(ctx, 201, txn)
}

func (h *TransactionHandler) ImportStatement(ctx *xhttp.RequestCtx) {
	ownerID, err := uuid.Parse(query(ctx, "owner_id"))
	if err != nil {
		writeError(ctx, 400, "invalid owner_id")
		return
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, 400, "empty statement body")
		return
	}

	result, err := h.ingest.ImportStatement(ctx, ownerID, bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			writeError(ctx, 400, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, result)
}

func (h *TransactionHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	var f model.TransactionFilter

	if v := query(ctx, "owner_id"); v != "" {
		if id, e := uuid.Parse(v); e == nil {
			f.OwnerID = &id
		}
	}
	if v := query(ctx, "status"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			if s, e := model.NormalizeStatus(parts[i]); e == nil {
				f.Statuses = append(f.Statuses, s)
			}
		}
	}
	if v := query(ctx, "phone"); v != "" {
		f.Phone = &v
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.ingest.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, listTransactionsResponse{Items: items, Total: total})
}

func (h *TransactionHandler) GetTransaction(ctx *xhttp.RequestCtx) {
	id, ownerID, ok := txnScope(ctx)
	if !ok {
		return
	}
	txn, err := h.txns.GetForOwner(ctx, id, ownerID)
	if err != nil {
		writeError(ctx, 404, "transaction not found")
		return
	}
	writeJSON(ctx, 200, txn)
}

func (h *TransactionHandler) ListTransactionLogs(ctx *xhttp.RequestCtx) {
	id, ownerID, ok := txnScope(ctx)
	if !ok {
		return
	}
	if _, err := h.txns.GetForOwner(ctx, id, ownerID); err != nil {
		writeError(ctx, 404, "transaction not found")
		return
	}
	items, err := h.audit.ListByTransaction(ctx, id)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, logsResponse{Items: items})
}

func (h *TransactionHandler) ReconcileTransaction(ctx *xhttp.RequestCtx) {
	id, ownerID, ok := txnScope(ctx)
	if !ok {
		return
	}
	txn, err := h.reconcile.Reconcile(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(ctx, 404, "transaction not found")
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, txn)
}

func (h *TransactionHandler) ManualMatch(ctx *xhttp.RequestCtx) {
	id, ownerID, ok := txnScope(ctx)
	if !ok {
		return
	}

	var req manualMatchRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		writeError(ctx, 400, "invalid tenant_id")
		return
	}
	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = "owner"
	}

	txn, err := h.reconcile.ManualMatch(ctx, id, ownerID, tenantID, performedBy)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(ctx, 404, "transaction not found")
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, txn)
}

func (h *TransactionHandler) Dispute(ctx *xhttp.RequestCtx) {
	id, ownerID, ok := txnScope(ctx)
	if !ok {
		return
	}

	var req disputeRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeError(ctx, 400, "reason is required")
		return
	}
	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = "owner"
	}

	txn, err := h.reconcile.Dispute(ctx, id, ownerID, req.Reason, performedBy)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(ctx, 404, "transaction not found")
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, txn)
}

/* --------------------------------- Helpers ----------------------------------- */

// txnScope pulls the transaction id from the path and the owner id from the
// query string, writing the 400 itself when either is bad.
func txnScope(ctx *xhttp.RequestCtx) (uuid.UUID, uuid.UUID, bool) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid transaction id")
		return uuid.Nil, uuid.Nil, false
	}
	ownerID, err := uuid.Parse(query(ctx, "owner_id"))
	if err != nil {
		writeError(ctx, 400, "invalid owner_id")
		return uuid.Nil, uuid.Nil, false
	}
	return id, ownerID, true
}

func pathUUID(ctx *xhttp.RequestCtx, name string) (uuid.UUID, error) {
	v, _ := ctx.UserValue(name).(string)
	return uuid.Parse(v)
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseTransTime handles Daraja's YYYYMMDDHHMMSS timestamps. A zero time is
// fine here, ingest stamps it with now.
func parseTransTime(s string) time.Time {
	t, err := time.Parse("20060102150405", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
