// Package catalog exposes the admin-managed permission catalog: features,
// sub-features, actions, tiers and the per-tier grant matrix. The catalog is
// read-only here; lifecycle belongs to external administrative tooling.
package catalog

// Feature is a top-level gated capability area, e.g. "event_creation".
type Feature struct {
	ID       int64
	Name     string
	IsActive bool
}

// SubFeature is a finer-grained capability nested under a feature.
type SubFeature struct {
	ID        int64
	FeatureID int64
	Name      string
	IsActive  bool
}

// Action is an operation name evaluated against a feature or sub-feature.
type Action struct {
	ID       int64
	Name     string
	IsActive bool
}

// Tier is a named permission level.
type Tier struct {
	ID          int64
	Name        string
	DisplayName string
}

// Grant is one row of the tier permission matrix.
type Grant struct {
	TierID     int64
	IsGranted  bool
	Conditions Conditions
}
