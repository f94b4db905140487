// Package permission implements the tiered permission-resolution engine.
//
// A check resolves the effective tier for a (user, feature) pair through an
// ordered chain of scopes (admin bypass, individual assignment, organization
// assignment, membership-type default), looks up the grant for the requested
// action under that tier, and applies daily usage-quota accounting when the
// grant carries a usage limit. The engine is a pure read-side evaluator: it
// never writes, and any ambiguity or lookup failure resolves to denial.
package permission

import (
	"errors"
	"fmt"

	"github.com/resonance-events/resonance-access/internal/catalog"
)

// TierAdmin is the synthetic tier reported for administrator bypass.
const TierAdmin = "admin"

// Evaluation reasons returned to callers. Informational only, not stable codes.
const (
	ReasonAdmin         = "Administrator access"
	ReasonGranted       = "Permission granted"
	ReasonNoTier        = "No tier assignment found for this feature"
	ReasonNotGranted    = "Permission not found"
	ReasonUsageExceeded = "Usage limit exceeded for today"
)

var (
	// ErrInvalidRequest indicates a required request field is missing.
	ErrInvalidRequest = errors.New("permission: invalid request")
	// ErrStorageUnavailable indicates an underlying lookup failed for
	// infrastructure reasons. Evaluation aborts; access is never granted
	// on storage error.
	ErrStorageUnavailable = errors.New("permission: storage unavailable")
)

// NotFoundError reports a referenced entity that does not exist or is inactive.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("permission: %s not found", e.Entity)
}

// CheckRequest carries the inputs of a single permission evaluation.
type CheckRequest struct {
	UserID         string `json:"userId" validate:"required"`
	Feature        string `json:"feature" validate:"required"`
	SubFeature     string `json:"subFeature,omitempty"`
	Action         string `json:"action" validate:"required"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

// Result is the outcome of a completed evaluation. A denial is a normal
// result, not an error.
type Result struct {
	HasPermission  bool
	Tier           string
	Conditions     catalog.Conditions
	UsageRemaining *int64
	Reason         string
}

// Assignment binds a scope (user, organization, or membership type) to a tier
// for one feature.
type Assignment struct {
	TierID   int64
	TierName string
}
