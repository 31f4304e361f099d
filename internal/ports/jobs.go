package ports

import "context"

type ScoreJob struct {
	ID           string
	AssessmentID string
}

// JobRepository supports enqueueing, claiming and finishing score jobs.
type JobRepository interface {
	EnqueueScoreJob(ctx context.Context, assessmentID string) (jobID string, err error)
	ClaimNext(ctx context.Context) (job ScoreJob, found bool, err error)
	CompleteJob(ctx context.Context, jobID string) error
	FailJob(ctx context.Context, jobID string, reason string) error
}
