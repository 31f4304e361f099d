package scorerunner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wellbeing/internal/metrics"
	"wellbeing/internal/ports"
)

// ScoreProcessor scores the assessment a job points at.
type ScoreProcessor interface {
	Process(ctx context.Context, assessmentID string) error
}

type Options struct {
	Concurrency  int
	PollInterval time.Duration
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// Run starts worker goroutines that claim score jobs and process them. The
// returned WaitGroup is done once ctx is cancelled and in-flight jobs finish.
func Run(ctx context.Context, repo ports.JobRepository, processor ScoreProcessor, opts Options) *sync.WaitGroup {
	var wg sync.WaitGroup
	if opts.Concurrency < 1 {
		return &wg
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jobsCh := make(chan ports.ScoreJob, opts.Concurrency)

	// dispatcher loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobsCh)
		ticker := time.NewTicker(opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !dispatch(ctx, repo, jobsCh, logger) {
					return
				}
			}
		}
	}()

	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for job := range jobsCh {
				runJob(ctx, repo, processor, job, logger.With("worker", idx), opts.Metrics)
			}
		}(i)
	}
	return &wg
}

// dispatch drains queued jobs into jobsCh. It reports false once ctx is done.
func dispatch(ctx context.Context, repo ports.JobRepository, jobsCh chan<- ports.ScoreJob, logger *slog.Logger) bool {
	for {
		job, found, err := repo.ClaimNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			logger.Error("job claim failed", "error", err)
			return true
		}
		if !found {
			return true
		}
		select {
		case jobsCh <- job:
		case <-ctx.Done():
			if err := repo.FailJob(context.WithoutCancel(ctx), job.ID, "shutdown"); err != nil {
				logger.Error("mark job failed", "job_id", job.ID, "error", err)
			}
			return false
		}
	}
}

func runJob(ctx context.Context, repo ports.JobRepository, processor ScoreProcessor, job ports.ScoreJob, logger *slog.Logger, m *metrics.Metrics) {
	logger = logger.With("job_id", job.ID, "assessment_id", job.AssessmentID)
	if err := processor.Process(ctx, job.AssessmentID); err != nil {
		if ferr := repo.FailJob(context.WithoutCancel(ctx), job.ID, err.Error()); ferr != nil {
			logger.Error("mark job failed", "error", ferr)
		}
		m.JobFinished("failed")
		logger.Warn("score job failed", "error", err)
		return
	}
	if err := repo.CompleteJob(context.WithoutCancel(ctx), job.ID); err != nil {
		logger.Error("mark job completed", "error", err)
	}
	m.JobFinished("completed")
	logger.Debug("score job completed")
}
