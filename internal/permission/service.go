package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/resonance-events/resonance-access/internal/catalog"
	"github.com/resonance-events/resonance-access/internal/directory"
)

// DirectoryPort resolves user records.
type DirectoryPort interface {
	FindUser(ctx context.Context, id string) (*directory.User, error)
}

// CatalogPort resolves catalog entities and grant rows.
type CatalogPort interface {
	FeatureByName(ctx context.Context, name string) (*catalog.Feature, error)
	SubFeatureByName(ctx context.Context, featureID int64, name string) (*catalog.SubFeature, error)
	ActionByName(ctx context.Context, name string) (*catalog.Action, error)
	FeatureGrant(ctx context.Context, tierID, featureID, actionID int64) (*catalog.Grant, error)
	SubFeatureGrant(ctx context.Context, tierID, subFeatureID, actionID int64) (*catalog.Grant, error)
}

// UsagePort reads today's usage count. A missing record counts as zero.
type UsagePort interface {
	Count(ctx context.Context, userID string, featureID, actionID int64, day time.Time) (int64, error)
}

// Service evaluates permission checks. It is stateless; every Check call is
// independent and safe to run concurrently.
type Service struct {
	directory DirectoryPort
	catalog   CatalogPort
	usage     UsagePort
	resolvers []tierResolver
	cache     *TierCache
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds Service instance with the default resolution chain.
func NewService(dir DirectoryPort, cat CatalogPort, assignments AssignmentPort, usage UsagePort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		directory: dir,
		catalog:   cat,
		usage:     usage,
		resolvers: defaultResolverChain(assignments),
		logger:    logger,
		now:       time.Now,
	}
}

// WithTierCache enables short-TTL caching of resolved tiers. Admin bypass and
// usage accounting are never cached.
func (s *Service) WithTierCache(cache *TierCache) *Service {
	s.cache = cache
	return s
}

// Check runs one permission evaluation. A denial is returned as a Result, not
// an error; errors cover invalid requests, missing entities and storage
// failures only.
func (s *Service) Check(ctx context.Context, req CheckRequest) (*Result, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Feature) == "" || strings.TrimSpace(req.Action) == "" {
		return nil, ErrInvalidRequest
	}

	user, err := s.directory.FindUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, &NotFoundError{Entity: "user"}
		}
		return nil, s.storageFailure("find user", err)
	}

	feature, err := s.catalog.FeatureByName(ctx, req.Feature)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &NotFoundError{Entity: "feature"}
		}
		return nil, s.storageFailure("find feature", err)
	}

	action, err := s.catalog.ActionByName(ctx, req.Action)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &NotFoundError{Entity: "action"}
		}
		return nil, s.storageFailure("find action", err)
	}

	var subFeature *catalog.SubFeature
	if req.SubFeature != "" {
		subFeature, err = s.catalog.SubFeatureByName(ctx, feature.ID, req.SubFeature)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &NotFoundError{Entity: "sub-feature"}
			}
			return nil, s.storageFailure("find sub-feature", err)
		}
	}

	in := resolveInput{user: user, featureID: feature.ID, organizationID: req.OrganizationID}
	res, err := s.resolveTier(ctx, in)
	if err != nil {
		return nil, s.storageFailure("resolve tier", err)
	}
	if res == nil {
		return &Result{Reason: ReasonNoTier}, nil
	}
	if res.admin {
		return &Result{HasPermission: true, Tier: TierAdmin, Reason: ReasonAdmin}, nil
	}

	var grant *catalog.Grant
	if subFeature != nil {
		grant, err = s.catalog.SubFeatureGrant(ctx, res.tierID, subFeature.ID, action.ID)
	} else {
		grant, err = s.catalog.FeatureGrant(ctx, res.tierID, feature.ID, action.ID)
	}
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return nil, s.storageFailure("find grant", err)
	}
	if grant == nil || !grant.IsGranted {
		return &Result{Tier: res.tier, Reason: ReasonNotGranted}, nil
	}

	result := &Result{
		HasPermission: true,
		Tier:          res.tier,
		Conditions:    grant.Conditions,
		Reason:        ReasonGranted,
	}

	limit, ok := grant.Conditions.UsageLimit()
	if !ok {
		return result, nil
	}

	// Quota windows reset at midnight UTC.
	day := s.now().UTC()
	count, err := s.usage.Count(ctx, user.ID, feature.ID, action.ID, day)
	if err != nil {
		return nil, s.storageFailure("count usage", err)
	}
	if count >= limit {
		zero := int64(0)
		return &Result{
			Tier:           res.tier,
			Reason:         ReasonUsageExceeded,
			UsageRemaining: &zero,
		}, nil
	}
	remaining := limit - count
	result.UsageRemaining = &remaining
	return result, nil
}

// resolveTier walks the scope chain, consulting the tier cache for non-admin
// users when one is configured.
func (s *Service) resolveTier(ctx context.Context, in resolveInput) (*resolution, error) {
	if s.cache == nil || in.user.MembershipType == directory.MembershipAdmin {
		return s.runChain(ctx, in)
	}
	return s.cache.GetOrFill(ctx, tierCacheKey(in), func() (*resolution, error) {
		return s.runChain(ctx, in)
	})
}

func (s *Service) runChain(ctx context.Context, in resolveInput) (*resolution, error) {
	for _, resolver := range s.resolvers {
		res, err := resolver.resolve(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("%s scope: %w", resolver.scope(), err)
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

func (s *Service) storageFailure(op string, err error) error {
	s.logger.Error("permission lookup failed", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%w: %s", ErrStorageUnavailable, op)
}
