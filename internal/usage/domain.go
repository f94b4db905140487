// Package usage tracks daily per-user usage counts for quota-limited grants.
// The permission engine only reads these counts; the increment belongs to the
// feature handler that performed the gated action.
package usage

import (
	"errors"
	"time"
)

// ErrNotFound indicates a referenced user, feature or action does not exist.
var ErrNotFound = errors.New("usage: not found")

// Record is one calendar-day usage counter for a (user, feature, action) tuple.
type Record struct {
	UserID    string
	FeatureID int64
	Feature   string
	ActionID  int64
	Action    string
	UsageDate time.Time
	Count     int64
}
