package usage

import (
	"context"
	"errors"
	"time"

	"github.com/resonance-events/resonance-access/internal/catalog"
)

// RepositoryPort defines data access for usage counters.
type RepositoryPort interface {
	Count(ctx context.Context, userID string, featureID, actionID int64, day time.Time) (int64, error)
	Increment(ctx context.Context, userID string, featureID, actionID int64, day time.Time) (int64, error)
	ListForDay(ctx context.Context, userID string, day time.Time) ([]Record, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CatalogPort maps feature and action names to catalog rows.
type CatalogPort interface {
	FeatureByName(ctx context.Context, name string) (*catalog.Feature, error)
	ActionByName(ctx context.Context, name string) (*catalog.Action, error)
}

// Service handles usage accounting business logic.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	now     func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cat CatalogPort) *Service {
	return &Service{repo: repo, catalog: cat, now: time.Now}
}

// Increment records one use of a gated action and returns the new daily
// count. Called by feature handlers after the action succeeded; quota windows
// reset at midnight UTC, matching the permission engine's read side.
func (s *Service) Increment(ctx context.Context, userID, feature, action string) (int64, error) {
	f, err := s.catalog.FeatureByName(ctx, feature)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	a, err := s.catalog.ActionByName(ctx, action)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return s.repo.Increment(ctx, userID, f.ID, a.ID, s.now().UTC())
}

// TodayForUser returns the user's usage rows for the current UTC day.
func (s *Service) TodayForUser(ctx context.Context, userID string) ([]Record, error) {
	return s.repo.ListForDay(ctx, userID, s.now().UTC())
}

// PurgeOlderThan removes records past the retention window.
func (s *Service) PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)
	return s.repo.PurgeBefore(ctx, cutoff)
}
