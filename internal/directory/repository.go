package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("directory: not found")

// Repository provides PostgreSQL backed lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindUser returns the user with the given id.
func (r *Repository) FindUser(ctx context.Context, id string) (*User, error) {
	const query = `SELECT id, membership_type, organization_id FROM users WHERE id = $1`
	var user User
	if err := r.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.MembershipType, &user.OrganizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindOrganization returns the organization with the given id.
func (r *Repository) FindOrganization(ctx context.Context, id int64) (*Organization, error) {
	const query = `SELECT id, name FROM organizations WHERE id = $1`
	var org Organization
	if err := r.pool.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}
