package model

import (
	"github.com/google/uuid"
)

// DefaultAccountReferenceFormat is used when an owner has not configured
// their own template.
const DefaultAccountReferenceFormat = "UNIT-{unit_number}"

// OwnerSettings holds the per-owner reconciliation configuration. It is
// owner-editable and read-only from the pipeline's perspective.
type OwnerSettings struct {
	OwnerID uuid.UUID `json:"owner_id" db:"owner_id"`

	// Template tested against incoming account references,
	// e.g. "UNIT-{unit_number}" or "{tenant_name}".
	AccountReferenceFormat string `json:"account_reference_format" db:"account_reference_format"`
}
