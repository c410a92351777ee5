package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wanjohi/rent-reconciler/internal/model"
)

// Component weights of the confidence score. The four signals are
// independent and sum to at most 100.
const (
	ScorePhoneMatch     = 40
	ScoreAmountExact    = 30
	ScoreAmountClose    = 15
	ScoreReferenceMatch = 20
	ScoreTimingMatch    = 10
	MaxScore            = 100
)

// Rent in Kenya is conventionally paid between the 1st and the 10th.
const (
	rentWindowFirstDay = 1
	rentWindowLastDay  = 10
)

var (
	amountExactTolerance = decimal.NewFromInt(1)
	amountClosePct       = decimal.NewFromFloat(0.05)
)

// normalizePhone strips everything but digits and keeps the last nine, so
// "+254712345678", "254712345678" and "0712345678" all compare equal.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	digits := b.String()
	if len(digits) > 9 {
		return digits[len(digits)-9:]
	}
	return digits
}

func scorePhone(txnPhone, tenantPhone string) int {
	if txnPhone == "" || tenantPhone == "" {
		return 0
	}
	a, b := normalizePhone(txnPhone), normalizePhone(tenantPhone)
	if a == "" || a != b {
		return 0
	}
	return ScorePhoneMatch
}

// scoreAmount gives full points for an exact amount (within one currency
// unit of rounding slack), half for within 5% of the expected rent. A
// non-positive expected rent carries no signal at all.
func scoreAmount(amount, expectedRent decimal.Decimal) int {
	if !expectedRent.IsPositive() {
		return 0
	}
	diff := amount.Sub(expectedRent).Abs()
	if diff.LessThan(amountExactTolerance) {
		return ScoreAmountExact
	}
	if diff.Div(expectedRent).LessThanOrEqual(amountClosePct) {
		return ScoreAmountClose
	}
	return 0
}

// formatReference expands the owner's template with this candidate's values.
func formatReference(format, unitNumber, tenantName string) string {
	r := strings.NewReplacer(
		"{unit_number}", unitNumber,
		"{tenant_name}", tenantName,
	)
	return r.Replace(format)
}

// scoreReference checks whether the payer's free-text memo mentions the
// candidate: unit number, full name, or the owner's formatted template.
// Case-insensitive substring match.
func scoreReference(ref, unitNumber, tenantName, format string) int {
	if ref == "" {
		return 0
	}
	refUpper := strings.ToUpper(ref)

	checks := []string{
		strings.ToUpper(unitNumber),
		strings.ToUpper(tenantName),
	}
	if format != "" {
		checks = append(checks, strings.ToUpper(formatReference(format, unitNumber, tenantName)))
	}

	for _, check := range checks {
		if check != "" && strings.Contains(refUpper, check) {
			return ScoreReferenceMatch
		}
	}
	return 0
}

func scoreTiming(txnDate time.Time) int {
	day := txnDate.Day()
	if day >= rentWindowFirstDay && day <= rentWindowLastDay {
		return ScoreTimingMatch
	}
	return 0
}

// ScoreCandidate computes the confidence score for one transaction/candidate
// pair. Pure function of its inputs: same pair, same score, every time.
// Returns the total and the per-signal reasons that contributed.
func ScoreCandidate(txn *model.Transaction, c model.TenantCandidate, refFormat string) (int, []string) {
	score := 0
	var reasons []string

	if s := scorePhone(txn.PhoneNumber, c.Phone); s > 0 {
		score += s
		reasons = append(reasons, fmt.Sprintf("phone match +%d", s))
	}
	if s := scoreAmount(txn.Amount, c.RentAmount); s > 0 {
		score += s
		reasons = append(reasons, fmt.Sprintf("amount match +%d", s))
	}
	if s := scoreReference(txn.AccountReference, c.UnitNumber, c.FullName, refFormat); s > 0 {
		score += s
		reasons = append(reasons, fmt.Sprintf("account ref match +%d", s))
	}
	if s := scoreTiming(txn.TransactionDate); s > 0 {
		score += s
		reasons = append(reasons, fmt.Sprintf("timing match +%d", s))
	}

	return score, reasons
}
