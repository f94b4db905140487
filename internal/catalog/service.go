package catalog

import "context"

// RepositoryPort defines the catalog reads used by the listing endpoints.
type RepositoryPort interface {
	ListFeatures(ctx context.Context) ([]Feature, error)
	ListSubFeatures(ctx context.Context, featureID int64) ([]SubFeature, error)
	ListActions(ctx context.Context) ([]Action, error)
	ListTiers(ctx context.Context) ([]Tier, error)
}

// Service handles catalog read logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// FeatureWithSubFeatures pairs a feature with its active sub-features.
type FeatureWithSubFeatures struct {
	Feature
	SubFeatures []SubFeature
}

// ListFeatures returns active features with their active sub-features.
func (s *Service) ListFeatures(ctx context.Context) ([]FeatureWithSubFeatures, error) {
	features, err := s.repo.ListFeatures(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]FeatureWithSubFeatures, 0, len(features))
	for _, f := range features {
		subs, err := s.repo.ListSubFeatures(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, FeatureWithSubFeatures{Feature: f, SubFeatures: subs})
	}
	return out, nil
}

// ListActions returns all active actions.
func (s *Service) ListActions(ctx context.Context) ([]Action, error) {
	return s.repo.ListActions(ctx)
}

// ListTiers returns all tiers.
func (s *Service) ListTiers(ctx context.Context) ([]Tier, error) {
	return s.repo.ListTiers(ctx)
}
