package usage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed usage counters.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Count returns the usage count for (user, feature, action) on the given day.
// A missing record counts as zero.
func (r *Repository) Count(ctx context.Context, userID string, featureID, actionID int64, day time.Time) (int64, error) {
	const query = `SELECT usage_count FROM usage_records
WHERE user_id = $1 AND feature_id = $2 AND action_id = $3 AND usage_date = $4::date`
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID, featureID, actionID, day).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// Increment atomically bumps the day's counter and returns the new count.
func (r *Repository) Increment(ctx context.Context, userID string, featureID, actionID int64, day time.Time) (int64, error) {
	const query = `INSERT INTO usage_records (user_id, feature_id, action_id, usage_date, usage_count)
VALUES ($1, $2, $3, $4::date, 1)
ON CONFLICT (user_id, feature_id, action_id, usage_date)
DO UPDATE SET usage_count = usage_records.usage_count + 1, updated_at = now()
RETURNING usage_count`
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID, featureID, actionID, day).Scan(&count); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

// ListForDay returns a user's usage rows for the given day with resolved
// feature and action names.
func (r *Repository) ListForDay(ctx context.Context, userID string, day time.Time) ([]Record, error) {
	const query = `SELECT u.user_id, u.feature_id, f.name, u.action_id, a.name, u.usage_date, u.usage_count
FROM usage_records u
JOIN features f ON f.id = u.feature_id
JOIN actions a ON a.id = u.action_id
WHERE u.user_id = $1 AND u.usage_date = $2::date
ORDER BY f.name, a.name`
	rows, err := r.pool.Query(ctx, query, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.UserID, &rec.FeatureID, &rec.Feature, &rec.ActionID, &rec.Action, &rec.UsageDate, &rec.Count); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PurgeBefore deletes usage records older than the cutoff date and reports the
// number of rows removed.
func (r *Repository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM usage_records WHERE usage_date < $1::date`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
