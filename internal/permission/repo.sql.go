package permission

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoAssignment indicates no active tier assignment exists for the scope.
// The resolution chain treats it as absence and falls through to the next
// scope; inactive rows are indistinguishable from missing ones.
var ErrNoAssignment = errors.New("permission: no assignment")

// Repository provides PostgreSQL backed tier-assignment lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserTier returns the active individual tier assignment for (user, feature).
func (r *Repository) UserTier(ctx context.Context, userID string, featureID int64) (*Assignment, error) {
	const query = `SELECT a.tier_id, t.name
FROM user_tier_assignments a
JOIN permission_tiers t ON t.id = a.tier_id
WHERE a.user_id = $1 AND a.feature_id = $2 AND a.is_active = TRUE`
	return r.scanAssignment(r.pool.QueryRow(ctx, query, userID, featureID))
}

// OrganizationTier returns the active organization tier assignment for
// (organization, feature).
func (r *Repository) OrganizationTier(ctx context.Context, organizationID, featureID int64) (*Assignment, error) {
	const query = `SELECT a.tier_id, t.name
FROM organization_tier_assignments a
JOIN permission_tiers t ON t.id = a.tier_id
WHERE a.organization_id = $1 AND a.feature_id = $2 AND a.is_active = TRUE`
	return r.scanAssignment(r.pool.QueryRow(ctx, query, organizationID, featureID))
}

// MembershipTier returns the active default tier assignment for
// (membership type, feature).
func (r *Repository) MembershipTier(ctx context.Context, membershipType string, featureID int64) (*Assignment, error) {
	const query = `SELECT a.tier_id, t.name
FROM membership_tier_assignments a
JOIN permission_tiers t ON t.id = a.tier_id
WHERE a.membership_type = $1 AND a.feature_id = $2 AND a.is_active = TRUE`
	return r.scanAssignment(r.pool.QueryRow(ctx, query, membershipType, featureID))
}

func (r *Repository) scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	if err := row.Scan(&a.TierID, &a.TierName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAssignment
		}
		return nil, err
	}
	return &a, nil
}
