package permission

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonance-events/resonance-access/internal/directory"
)

func newTestTierCache(t *testing.T, ttl time.Duration) (*TierCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewTierCache(client, ttl), mr
}

func TestTierCacheResolvesFromRedisOnSecondCall(t *testing.T) {
	f := newFixture()
	cache, _ := newTestTierCache(t, time.Minute)
	f.service.WithTierCache(cache)

	f.assignMembership("basic", tierFree, "free", true)
	f.grantFeature(tierFree, nil)

	_, err := f.service.Check(context.Background(), checkReq())
	require.NoError(t, err)
	firstCalls := f.assignments.calls
	require.Greater(t, firstCalls, 0)

	_, err = f.service.Check(context.Background(), checkReq())
	require.NoError(t, err)
	assert.Equal(t, firstCalls, f.assignments.calls, "second resolution must come from cache")
}

func TestTierCacheDoesNotCacheMisses(t *testing.T) {
	f := newFixture()
	cache, mr := newTestTierCache(t, time.Minute)
	f.service.WithTierCache(cache)

	result, err := f.service.Check(context.Background(), checkReq())
	require.NoError(t, err)
	assert.False(t, result.HasPermission)
	assert.Empty(t, mr.Keys(), "no-tier outcomes are not cached")
}

func TestTierCacheExpiry(t *testing.T) {
	f := newFixture()
	cache, mr := newTestTierCache(t, time.Second)
	f.service.WithTierCache(cache)

	f.assignMembership("basic", tierFree, "free", true)
	f.grantFeature(tierFree, nil)

	_, err := f.service.Check(context.Background(), checkReq())
	require.NoError(t, err)
	callsAfterFill := f.assignments.calls

	mr.FastForward(2 * time.Second)

	_, err = f.service.Check(context.Background(), checkReq())
	require.NoError(t, err)
	assert.Greater(t, f.assignments.calls, callsAfterFill, "expired entry must be re-resolved")
}

func TestTierCacheSkipsAdmin(t *testing.T) {
	f := newFixture()
	cache, mr := newTestTierCache(t, time.Minute)
	f.service.WithTierCache(cache)

	req := checkReq()
	req.UserID = adminUserID
	result, err := f.service.Check(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.HasPermission)
	assert.Empty(t, mr.Keys(), "admin resolutions are never cached")
}

func TestTierCacheUnavailableRedisFallsThrough(t *testing.T) {
	f := newFixture()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f.service.WithTierCache(NewTierCache(client, time.Minute))
	mr.Close()

	f.assignMembership("basic", tierFree, "free", true)
	f.grantFeature(tierFree, nil)

	result, err := f.service.Check(context.Background(), checkReq())
	require.NoError(t, err)
	assert.True(t, result.HasPermission, "cache outage must not affect evaluation")
}

func TestTierCacheKeyIncludesOrganizationScope(t *testing.T) {
	own := demoOrgID
	in := resolveInput{
		user:      &directory.User{ID: basicUserID, MembershipType: "basic", OrganizationID: &own},
		featureID: featEvents,
	}
	keyOwn := tierCacheKey(in)

	override := otherOrgID
	in.organizationID = &override
	keyOverride := tierCacheKey(in)

	assert.NotEqual(t, keyOwn, keyOverride)
	assert.Equal(t, fmt.Sprintf("access:tier:%s:%d:%d", basicUserID, featEvents, otherOrgID), keyOverride)
}
