package assessments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wellbeing/internal/catalog"
	"wellbeing/internal/domain"
	"wellbeing/internal/metrics"
	"wellbeing/internal/ports"
	"wellbeing/internal/recommend"
	"wellbeing/internal/responses"
	"wellbeing/internal/scoring"
)

type Service struct {
	catalog     *catalog.Service
	assessments ports.AssessmentRepository
	responses   ports.ResponseRepository
	scores      ports.ScoreSink
	jobs        ports.JobRepository
	engine      *scoring.Engine
	generator   *recommend.Generator
	metrics     *metrics.Metrics
	logger      *slog.Logger
	autoEnqueue bool
}

type Deps struct {
	Store     ports.Store
	Engine    *scoring.Engine
	Generator *recommend.Generator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	// AutoEnqueue queues a score job when an attempt becomes complete.
	AutoEnqueue bool
}

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Engine == nil {
		d.Engine = scoring.MustNewEngine(d.Logger)
	}
	if d.Generator == nil {
		d.Generator = recommend.NewGenerator(nil, recommend.Options{Logger: d.Logger, Metrics: d.Metrics})
	}
	return &Service{
		catalog:     catalog.New(d.Store),
		assessments: d.Store,
		responses:   d.Store,
		scores:      d.Store,
		jobs:        d.Store,
		engine:      d.Engine,
		generator:   d.Generator,
		metrics:     d.Metrics,
		logger:      d.Logger,
		autoEnqueue: d.AutoEnqueue,
	}
}

// View is an assessment plus its last persisted scores, if any.
type View struct {
	domain.Assessment
	Scores *scoring.Breakdown `json:"scores,omitempty"`
}

// Progress reports the state of an attempt after a response is recorded.
type Progress struct {
	Answered int    `json:"answered"`
	Missing  []int  `json:"missing"`
	Complete bool   `json:"complete"`
	JobID    string `json:"jobId,omitempty"`
}

// Results is the payload of a results view.
type Results struct {
	AssessmentID         string                    `json:"assessmentId,omitempty"`
	Breakdown            scoring.Breakdown         `json:"breakdown"`
	Skipped              []scoring.SkippedResponse `json:"skipped,omitempty"`
	Nudges               []domain.BehavioralNudge  `json:"nudges"`
	Recommendations      []domain.Recommendation   `json:"recommendations"`
	RecommendationSource recommend.Source          `json:"recommendationSource"`
	FailureReason        string                    `json:"failureReason,omitempty"`
}

func (s *Service) Catalog() *catalog.Service { return s.catalog }

func (s *Service) Start(ctx context.Context, userID *string) (domain.Assessment, error) {
	if userID != nil && *userID == "" {
		userID = nil
	}
	a, err := s.assessments.CreateAssessment(ctx, userID)
	if err != nil {
		return a, err
	}
	s.logger.Info("assessment started", "assessment_id", a.ID, "guest", a.Guest)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	a, err := s.assessments.GetAssessment(ctx, id)
	if err != nil {
		return View{}, err
	}
	v := View{Assessment: a}
	b, found, err := s.scores.LatestScores(ctx, id)
	if err != nil {
		return View{}, err
	}
	if found {
		v.Scores = &b
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Assessment, error) {
	return s.assessments.ListAssessments(ctx, userID)
}

// Record upserts one answer. When the attempt first becomes complete it is
// marked completed and, if enabled, a score job is queued.
func (s *Service) Record(ctx context.Context, assessmentID, questionID, optionID string) (Progress, error) {
	if questionID == "" || optionID == "" {
		return Progress{}, domain.InvalidInput("questionId and optionId are required")
	}
	a, err := s.assessments.GetAssessment(ctx, assessmentID)
	if err != nil {
		return Progress{}, err
	}
	if err := s.responses.SaveResponse(ctx, assessmentID, domain.Response{QuestionID: questionID, OptionID: optionID}); err != nil {
		return Progress{}, fmt.Errorf("save response: %w", err)
	}
	collector, err := s.collector(ctx, assessmentID)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{Answered: collector.Len(), Missing: collector.Missing(), Complete: collector.IsComplete()}
	if p.Missing == nil {
		p.Missing = []int{}
	}
	if p.Complete && a.Status == domain.StatusInProgress {
		if err := s.assessments.SetStatus(ctx, assessmentID, domain.StatusCompleted); err != nil {
			return p, err
		}
		if s.autoEnqueue {
			jobID, err := s.jobs.EnqueueScoreJob(ctx, assessmentID)
			if err != nil {
				return p, fmt.Errorf("enqueue score job: %w", err)
			}
			p.JobID = jobID
		}
	}
	return p, nil
}

// Responses returns the attempt's responses ordered by order index.
func (s *Service) Responses(ctx context.Context, assessmentID string) ([]domain.Response, error) {
	c, err := s.collector(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return c.All(), nil
}

// Score computes and persists the breakdown of an assessment. Partial
// attempts are scored best-effort.
func (s *Service) Score(ctx context.Context, assessmentID string) (scoring.Report, error) {
	report, _, err := s.evaluate(ctx, assessmentID)
	if err != nil {
		return report, err
	}
	if err := s.scores.SaveScores(ctx, assessmentID, report.Breakdown); err != nil {
		return report, err
	}
	if err := s.assessments.SetStatus(ctx, assessmentID, domain.StatusScored); err != nil {
		return report, err
	}
	s.logger.Info("assessment scored",
		"assessment_id", assessmentID,
		"overall", report.Breakdown.Overall.Total,
		"grade", report.Breakdown.Overall.Grade,
		"skipped", len(report.Skipped))
	return report, nil
}

// Process lets the score workers drive Score.
func (s *Service) Process(ctx context.Context, assessmentID string) error {
	_, err := s.Score(ctx, assessmentID)
	return err
}

// RequestScore queues a background score job.
func (s *Service) RequestScore(ctx context.Context, assessmentID string) (string, error) {
	if _, err := s.assessments.GetAssessment(ctx, assessmentID); err != nil {
		return "", err
	}
	return s.jobs.EnqueueScoreJob(ctx, assessmentID)
}

// Results scores the assessment fresh and derives nudges and recommendations.
func (s *Service) Results(ctx context.Context, assessmentID string, profile domain.UserProfile) (Results, error) {
	report, resp, err := s.evaluate(ctx, assessmentID)
	if err != nil {
		return Results{}, err
	}
	out := s.results(ctx, report, profile, resp)
	out.AssessmentID = assessmentID
	return out, nil
}

// ScoreResponses scores an inline response set without touching storage.
func (s *Service) ScoreResponses(ctx context.Context, resp []domain.Response, profile domain.UserProfile) (Results, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return Results{}, err
	}
	report, err := s.timedEvaluate(snap, resp)
	if err != nil {
		return Results{}, err
	}
	return s.results(ctx, report, profile, resp), nil
}

func (s *Service) results(ctx context.Context, report scoring.Report, profile domain.UserProfile, resp []domain.Response) Results {
	outcome := s.generator.Generate(ctx, report.Breakdown, profile, resp)
	return Results{
		Breakdown:            report.Breakdown,
		Skipped:              report.Skipped,
		Nudges:               recommend.Nudges(report.Breakdown),
		Recommendations:      outcome.Recommendations,
		RecommendationSource: outcome.Source,
		FailureReason:        outcome.FailureReason,
	}
}

func (s *Service) evaluate(ctx context.Context, assessmentID string) (scoring.Report, []domain.Response, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return scoring.Report{}, nil, err
	}
	stored, err := s.responses.GetResponses(ctx, assessmentID)
	if err != nil {
		return scoring.Report{}, nil, err
	}
	resp := responses.Resume(snap, stored).All()
	report, err := s.timedEvaluate(snap, resp)
	return report, resp, err
}

func (s *Service) timedEvaluate(snap *catalog.Snapshot, resp []domain.Response) (scoring.Report, error) {
	start := time.Now()
	report, err := s.engine.Evaluate(snap, resp)
	if err != nil {
		return report, err
	}
	s.metrics.ObserveScoring(time.Since(start), len(report.Skipped))
	return report, nil
}

func (s *Service) collector(ctx context.Context, assessmentID string) (*responses.Collector, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.responses.GetResponses(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return responses.Resume(snap, stored), nil
}
