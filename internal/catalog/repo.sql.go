package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested catalog row does not exist or is
// inactive.
var ErrNotFound = errors.New("catalog: not found")

// Repository provides PostgreSQL backed catalog lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FeatureByName returns the active feature with the given name.
func (r *Repository) FeatureByName(ctx context.Context, name string) (*Feature, error) {
	const query = `SELECT id, name, is_active FROM features WHERE name = $1 AND is_active = TRUE`
	var f Feature
	if err := r.pool.QueryRow(ctx, query, name).Scan(&f.ID, &f.Name, &f.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// SubFeatureByName returns the active sub-feature with the given name scoped
// to its parent feature.
func (r *Repository) SubFeatureByName(ctx context.Context, featureID int64, name string) (*SubFeature, error) {
	const query = `SELECT id, feature_id, name, is_active FROM sub_features WHERE feature_id = $1 AND name = $2 AND is_active = TRUE`
	var sf SubFeature
	if err := r.pool.QueryRow(ctx, query, featureID, name).Scan(&sf.ID, &sf.FeatureID, &sf.Name, &sf.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sf, nil
}

// ActionByName returns the active action with the given name.
func (r *Repository) ActionByName(ctx context.Context, name string) (*Action, error) {
	const query = `SELECT id, name, is_active FROM actions WHERE name = $1 AND is_active = TRUE`
	var a Action
	if err := r.pool.QueryRow(ctx, query, name).Scan(&a.ID, &a.Name, &a.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// TierByID returns a tier by id.
func (r *Repository) TierByID(ctx context.Context, id int64) (*Tier, error) {
	const query = `SELECT id, name, display_name FROM permission_tiers WHERE id = $1`
	var t Tier
	if err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.DisplayName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FeatureGrant returns the permission matrix row for (tier, feature, action).
func (r *Repository) FeatureGrant(ctx context.Context, tierID, featureID, actionID int64) (*Grant, error) {
	const query = `SELECT tier_id, is_granted, COALESCE(conditions, '{}'::jsonb)
FROM tier_feature_permissions
WHERE tier_id = $1 AND feature_id = $2 AND action_id = $3`
	return r.scanGrant(r.pool.QueryRow(ctx, query, tierID, featureID, actionID))
}

// SubFeatureGrant returns the permission matrix row for (tier, sub-feature, action).
func (r *Repository) SubFeatureGrant(ctx context.Context, tierID, subFeatureID, actionID int64) (*Grant, error) {
	const query = `SELECT tier_id, is_granted, COALESCE(conditions, '{}'::jsonb)
FROM tier_sub_feature_permissions
WHERE tier_id = $1 AND sub_feature_id = $2 AND action_id = $3`
	return r.scanGrant(r.pool.QueryRow(ctx, query, tierID, subFeatureID, actionID))
}

// ListFeatures returns all active features ordered by name.
func (r *Repository) ListFeatures(ctx context.Context) ([]Feature, error) {
	const query = `SELECT id, name, is_active FROM features WHERE is_active = TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var features []Feature
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.ID, &f.Name, &f.IsActive); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// ListSubFeatures returns all active sub-features for a feature ordered by name.
func (r *Repository) ListSubFeatures(ctx context.Context, featureID int64) ([]SubFeature, error) {
	const query = `SELECT id, feature_id, name, is_active FROM sub_features WHERE feature_id = $1 AND is_active = TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query, featureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subFeatures []SubFeature
	for rows.Next() {
		var sf SubFeature
		if err := rows.Scan(&sf.ID, &sf.FeatureID, &sf.Name, &sf.IsActive); err != nil {
			return nil, err
		}
		subFeatures = append(subFeatures, sf)
	}
	return subFeatures, rows.Err()
}

// ListActions returns all active actions ordered by name.
func (r *Repository) ListActions(ctx context.Context) ([]Action, error) {
	const query = `SELECT id, name, is_active FROM actions WHERE is_active = TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Name, &a.IsActive); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ListTiers returns all tiers ordered by name.
func (r *Repository) ListTiers(ctx context.Context) ([]Tier, error) {
	const query = `SELECT id, name, display_name FROM permission_tiers ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tiers []Tier
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.DisplayName); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *Repository) scanGrant(row pgx.Row) (*Grant, error) {
	var g Grant
	if err := row.Scan(&g.TierID, &g.IsGranted, &g.Conditions); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if g.Conditions == nil {
		g.Conditions = Conditions{}
	}
	return &g, nil
}
