package ports

import (
	"context"

	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
)

// CatalogRepository reads the seeded question catalog. Rows are never mutated.
type CatalogRepository interface {
	GetQuestion(ctx context.Context, orderIndex int) (domain.Question, error)
	GetOptions(ctx context.Context, questionID string) ([]domain.Option, error)
	GetAllQuestions(ctx context.Context) ([]domain.Question, error)
	GetAllOptions(ctx context.Context) ([]domain.Option, error)
}

// AssessmentRepository stores assessment attempts.
type AssessmentRepository interface {
	CreateAssessment(ctx context.Context, userID *string) (domain.Assessment, error)
	GetAssessment(ctx context.Context, id string) (domain.Assessment, error)
	ListAssessments(ctx context.Context, userID string) ([]domain.Assessment, error)
	SetStatus(ctx context.Context, id string, status domain.AssessmentStatus) error
}

// ResponseRepository persists one response per question per assessment.
type ResponseRepository interface {
	GetResponses(ctx context.Context, assessmentID string) ([]domain.Response, error)
	SaveResponse(ctx context.Context, assessmentID string, r domain.Response) error
}

// ScoreSink receives computed score snapshots.
type ScoreSink interface {
	SaveScores(ctx context.Context, assessmentID string, b scoring.Breakdown) error
	LatestScores(ctx context.Context, assessmentID string) (b scoring.Breakdown, found bool, err error)
}

// Store is the full storage port. The remote (postgres) and local (guest JSON)
// adapters both implement it.
type Store interface {
	CatalogRepository
	AssessmentRepository
	ResponseRepository
	ScoreSink
	JobRepository
	Close()
}
