package permission

import (
	"context"
	"errors"

	"github.com/resonance-events/resonance-access/internal/directory"
)

// AssignmentPort defines the tier-assignment lookups used by the resolution
// chain. Implementations return ErrNoAssignment when no active row matches.
type AssignmentPort interface {
	UserTier(ctx context.Context, userID string, featureID int64) (*Assignment, error)
	OrganizationTier(ctx context.Context, organizationID, featureID int64) (*Assignment, error)
	MembershipTier(ctx context.Context, membershipType string, featureID int64) (*Assignment, error)
}

type resolveInput struct {
	user      *directory.User
	featureID int64
	// organizationID is the scope override from the request; the user's own
	// organization is the fallback.
	organizationID *int64
}

type resolution struct {
	tierID int64
	tier   string
	admin  bool
	scope  string
}

// tierResolver is one scope in the resolution chain. Returning a nil
// resolution with a nil error means "no match here, try the next scope".
type tierResolver interface {
	scope() string
	resolve(ctx context.Context, in resolveInput) (*resolution, error)
}

// defaultResolverChain builds the precedence order: admin bypass, individual
// assignment, organization assignment, membership-type default. New scopes
// slot in without touching the evaluation loop.
func defaultResolverChain(assignments AssignmentPort) []tierResolver {
	return []tierResolver{
		adminResolver{},
		userTierResolver{assignments: assignments},
		organizationTierResolver{assignments: assignments},
		membershipTierResolver{assignments: assignments},
	}
}

// adminResolver short-circuits the chain for administrator accounts.
type adminResolver struct{}

func (adminResolver) scope() string { return "admin" }

func (adminResolver) resolve(_ context.Context, in resolveInput) (*resolution, error) {
	if in.user.MembershipType != directory.MembershipAdmin {
		return nil, nil
	}
	return &resolution{tier: TierAdmin, admin: true, scope: "admin"}, nil
}

// userTierResolver matches an individual assignment for (user, feature).
type userTierResolver struct {
	assignments AssignmentPort
}

func (userTierResolver) scope() string { return "user" }

func (r userTierResolver) resolve(ctx context.Context, in resolveInput) (*resolution, error) {
	a, err := r.assignments.UserTier(ctx, in.user.ID, in.featureID)
	if err != nil {
		if errors.Is(err, ErrNoAssignment) {
			return nil, nil
		}
		return nil, err
	}
	return &resolution{tierID: a.TierID, tier: a.TierName, scope: "user"}, nil
}

// organizationTierResolver matches an organization assignment, preferring the
// organization named in the request over the user's own.
type organizationTierResolver struct {
	assignments AssignmentPort
}

func (organizationTierResolver) scope() string { return "organization" }

func (r organizationTierResolver) resolve(ctx context.Context, in resolveInput) (*resolution, error) {
	orgID := in.organizationID
	if orgID == nil {
		orgID = in.user.OrganizationID
	}
	if orgID == nil {
		return nil, nil
	}
	a, err := r.assignments.OrganizationTier(ctx, *orgID, in.featureID)
	if err != nil {
		if errors.Is(err, ErrNoAssignment) {
			return nil, nil
		}
		return nil, err
	}
	return &resolution{tierID: a.TierID, tier: a.TierName, scope: "organization"}, nil
}

// membershipTierResolver matches the systemic default for the user's
// membership type.
type membershipTierResolver struct {
	assignments AssignmentPort
}

func (membershipTierResolver) scope() string { return "membership" }

func (r membershipTierResolver) resolve(ctx context.Context, in resolveInput) (*resolution, error) {
	a, err := r.assignments.MembershipTier(ctx, in.user.MembershipType, in.featureID)
	if err != nil {
		if errors.Is(err, ErrNoAssignment) {
			return nil, nil
		}
		return nil, err
	}
	return &resolution{tierID: a.TierID, tier: a.TierName, scope: "membership"}, nil
}
