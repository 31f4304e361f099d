package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wellbeing/internal/domain"
	"wellbeing/internal/ports"
)

const enqueueAttempts = 3

// EnqueueScoreJob queues a job unless one is already pending for the assessment.
// A pending job that finishes between the insert and the lookup is retried.
func (db *DB) EnqueueScoreJob(ctx context.Context, assessmentID string) (string, error) {
	var jobID string
	var err error
	for attempt := 0; attempt < enqueueAttempts; attempt++ {
		err = db.Pool.QueryRow(ctx, `
            WITH inserted AS (
                INSERT INTO score_jobs (assessment_id) VALUES ($1::uuid)
                ON CONFLICT (assessment_id) WHERE status IN ('queued', 'running') DO NOTHING
                RETURNING id
            )
            SELECT id::text FROM inserted
            UNION ALL
            SELECT id::text FROM score_jobs
            WHERE assessment_id = $1::uuid AND status IN ('queued', 'running')
              AND NOT EXISTS (SELECT 1 FROM inserted)
            LIMIT 1
        `, assessmentID).Scan(&jobID)
		if !errors.Is(err, pgx.ErrNoRows) {
			return jobID, err
		}
	}
	return "", fmt.Errorf("enqueue score job %s: %w", assessmentID, err)
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.ScoreJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
        SELECT id::text, assessment_id::text FROM score_jobs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&job.ID, &job.AssessmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
        UPDATE score_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1::uuid
    `, job.ID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) CompleteJob(ctx context.Context, jobID string) error {
	return db.finishJob(ctx, jobID, "completed", nil)
}

func (db *DB) FailJob(ctx context.Context, jobID string, reason string) error {
	return db.finishJob(ctx, jobID, "failed", &reason)
}

func (db *DB) finishJob(ctx context.Context, jobID, status string, reason *string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tag, err := db.Pool.Exec(ctx, `
        UPDATE score_jobs SET status=$2, reason=$3, finished_at=now() WHERE id::text=$1
    `, jobID, status, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("job", jobID)
	}
	return nil
}
