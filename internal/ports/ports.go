package ports

import (
	"context"

	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
)

// RecommendationGenerator is the outbound text-generation service. Any error
// or non-list body counts as a failure.
type RecommendationGenerator interface {
	Generate(ctx context.Context, scores scoring.Breakdown, profile domain.UserProfile, responses []domain.Response) ([]domain.Recommendation, error)
}
