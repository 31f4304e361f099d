package recommend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wellbeing/internal/domain"
	"wellbeing/internal/metrics"
	"wellbeing/internal/ports"
	"wellbeing/internal/scoring"
)

// DefaultTimeout bounds the remote call.
const DefaultTimeout = 10 * time.Second

type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// GenerationError describes why the remote path was abandoned. It never
// leaves this package as an error value.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Outcome is what callers get back: always a list, plus which path built it.
type Outcome struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Source          Source                  `json:"source"`
	FailureReason   string                  `json:"failureReason,omitempty"`
}

type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Generator asks the remote service first and falls back to the local rules.
type Generator struct {
	remote  ports.RecommendationGenerator
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGenerator accepts a nil remote, in which case only the fallback runs.
func NewGenerator(remote ports.RecommendationGenerator, opts Options) *Generator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{remote: remote, timeout: opts.Timeout, logger: opts.Logger, metrics: opts.Metrics}
}

type result struct {
	recs []domain.Recommendation
	err  *GenerationError
}

// Generate never fails. Remote results are truncated to MaxRecommendations
// with their order preserved.
func (g *Generator) Generate(ctx context.Context, scores scoring.Breakdown, profile domain.UserProfile, responses []domain.Response) Outcome {
	res := g.callRemote(ctx, scores, profile, responses)
	if res.err == nil {
		g.metrics.RecommendationServed(string(SourceRemote))
		g.logger.Debug("recommendations generated", "source", SourceRemote, "count", len(res.recs))
		return Outcome{Recommendations: capList(res.recs), Source: SourceRemote}
	}
	g.metrics.RecommendationServed(string(SourceFallback))
	g.logger.Warn("remote recommendations unavailable, using fallback", "source", SourceFallback, "reason", res.err.Error())
	return Outcome{
		Recommendations: FallbackRecommendations(scores),
		Source:          SourceFallback,
		FailureReason:   res.err.Reason,
	}
}

func (g *Generator) callRemote(ctx context.Context, scores scoring.Breakdown, profile domain.UserProfile, responses []domain.Response) result {
	if g.remote == nil {
		return result{err: &GenerationError{Reason: "remote generator not configured"}}
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	recs, err := g.remote.Generate(ctx, scores, profile, responses)
	g.metrics.ObserveRemote(time.Since(start))
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return result{err: &GenerationError{Reason: "remote generator timed out", Err: err}}
	case err != nil:
		return result{err: &GenerationError{Reason: "remote generator failed", Err: err}}
	case recs == nil:
		return result{err: &GenerationError{Reason: "remote generator returned no recommendations"}}
	}
	return result{recs: recs}
}
