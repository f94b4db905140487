package usage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonance-events/resonance-access/internal/catalog"
)

type mockRepo struct {
	counts map[string]int64
	purged *time.Time
	err    error
}

func newMockRepo() *mockRepo {
	return &mockRepo{counts: make(map[string]int64)}
}

func key(userID string, featureID, actionID int64, day time.Time) string {
	return fmt.Sprintf("%s:%d:%d:%s", userID, featureID, actionID, day.Format(time.DateOnly))
}

func (m *mockRepo) Count(ctx context.Context, userID string, featureID, actionID int64, day time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[key(userID, featureID, actionID, day)], nil
}

func (m *mockRepo) Increment(ctx context.Context, userID string, featureID, actionID int64, day time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	k := key(userID, featureID, actionID, day)
	m.counts[k]++
	return m.counts[k], nil
}

func (m *mockRepo) ListForDay(ctx context.Context, userID string, day time.Time) ([]Record, error) {
	return nil, nil
}

func (m *mockRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.purged = &cutoff
	return 42, nil
}

type mockCatalog struct {
	features map[string]*catalog.Feature
	actions  map[string]*catalog.Action
}

func (m *mockCatalog) FeatureByName(ctx context.Context, name string) (*catalog.Feature, error) {
	f, ok := m.features[name]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return f, nil
}

func (m *mockCatalog) ActionByName(ctx context.Context, name string) (*catalog.Action, error) {
	a, ok := m.actions[name]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return a, nil
}

func newTestService(repo *mockRepo) *Service {
	cat := &mockCatalog{
		features: map[string]*catalog.Feature{"event_creation": {ID: 10, Name: "event_creation", IsActive: true}},
		actions:  map[string]*catalog.Action{"create": {ID: 20, Name: "create", IsActive: true}},
	}
	svc := NewService(repo, cat)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC) }
	return svc
}

func TestIncrementCountsPerDay(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	count, err := svc.Increment(context.Background(), "user-1", "event_creation", "create")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.Increment(context.Background(), "user-1", "event_creation", "create")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestIncrementUnknownFeature(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, err := svc.Increment(context.Background(), "user-1", "nonexistent", "create")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Increment(context.Background(), "user-1", "event_creation", "teleport")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeOlderThanUsesUTCCutoff(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	removed, err := svc.PurgeOlderThan(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, int64(42), removed)
	require.NotNil(t, repo.purged)
	assert.Equal(t, time.Date(2025, 12, 14, 23, 30, 0, 0, time.UTC), *repo.purged)
}

func TestPurgeRepositoryError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("boom")
	svc := newTestService(repo)

	_, err := svc.PurgeOlderThan(context.Background(), 30)
	assert.Error(t, err)
}
