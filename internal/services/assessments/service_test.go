package assessments_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellbeing/internal/adapters/local"
	"wellbeing/internal/catalog"
	"wellbeing/internal/domain"
	"wellbeing/internal/metrics"
	"wellbeing/internal/recommend"
	"wellbeing/internal/scoring"
	"wellbeing/internal/services/assessments"
)

type stubRemote struct {
	recs []domain.Recommendation
	err  error
	last domain.UserProfile
}

func (s *stubRemote) Generate(_ context.Context, _ scoring.Breakdown, profile domain.UserProfile, _ []domain.Response) ([]domain.Recommendation, error) {
	s.last = profile
	return s.recs, s.err
}

func newService(t *testing.T, remote *stubRemote, autoEnqueue bool) (*assessments.Service, *local.Store) {
	t.Helper()
	store, err := local.Open("")
	require.NoError(t, err)
	m := metrics.MustNew(prometheus.NewRegistry())
	d := assessments.Deps{Store: store, Metrics: m, AutoEnqueue: autoEnqueue}
	if remote != nil {
		d.Generator = recommend.NewGenerator(remote, recommend.Options{Metrics: m})
	}
	return assessments.New(d), store
}

// optionID returns the seed option with value for the question at order.
func optionID(t *testing.T, order, value int) string {
	t.Helper()
	questions, options := catalog.Seed()
	snap := catalog.NewSnapshot(questions, options)
	for _, o := range snap.Options(questions[order-1].ID) {
		if o.Value == value {
			return o.ID
		}
	}
	t.Fatalf("no option %d for question %d", value, order)
	return ""
}

func answerAll(t *testing.T, svc *assessments.Service, id string, value int) assessments.Progress {
	t.Helper()
	var p assessments.Progress
	for i := 1; i <= domain.QuestionCount; i++ {
		var err error
		p, err = svc.Record(context.Background(), id, strconv.Itoa(i), optionID(t, i, value))
		require.NoError(t, err)
	}
	return p
}

func TestRecordTracksProgressAndCompletion(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()
	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	assert.True(t, a.Guest)

	p, err := svc.Record(ctx, a.ID, "1", optionID(t, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Answered)
	assert.False(t, p.Complete)
	assert.Len(t, p.Missing, domain.QuestionCount-1)
	assert.NotContains(t, p.Missing, 1)

	p = answerAll(t, svc, a.ID, 5)
	assert.True(t, p.Complete)
	assert.Empty(t, p.Missing)
	assert.Empty(t, p.JobID)

	v, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, v.Status)
	assert.NotNil(t, v.CompletedAt)
	assert.Nil(t, v.Scores)
}

func TestRecordAcceptsIDAndOrderKeysForSameQuestion(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()
	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	questions, _ := catalog.Seed()

	_, err = svc.Record(ctx, a.ID, questions[0].ID, optionID(t, 1, 1))
	require.NoError(t, err)
	p, err := svc.Record(ctx, a.ID, "1", optionID(t, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Answered)

	list, err := svc.Responses(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, optionID(t, 1, 5), list[0].OptionID)
}

func TestRecordErrors(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()

	_, err := svc.Record(ctx, "missing", "1", "x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	_, err = svc.Record(ctx, a.ID, "", "x")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCompletionEnqueuesScoreJob(t *testing.T) {
	svc, store := newService(t, nil, true)
	ctx := context.Background()
	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)

	p := answerAll(t, svc, a.ID, 4)
	require.True(t, p.Complete)
	require.NotEmpty(t, p.JobID)

	job, found, err := store.ClaimNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p.JobID, job.ID)
	assert.Equal(t, a.ID, job.AssessmentID)

	// Re-answering a completed attempt does not queue another job.
	p, err = svc.Record(ctx, a.ID, "3", optionID(t, 3, 2))
	require.NoError(t, err)
	assert.Empty(t, p.JobID)
}

func TestScorePersistsBreakdown(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()
	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	answerAll(t, svc, a.ID, 5)

	report, err := svc.Score(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestionCount, report.Scored)
	assert.Empty(t, report.Skipped)
	assert.InDelta(t, 10.0, report.Breakdown.Overall.Total, 1e-9)
	assert.Equal(t, "A+", report.Breakdown.Overall.Grade)

	v, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScored, v.Status)
	require.NotNil(t, v.Scores)
	assert.Equal(t, report.Breakdown, *v.Scores)
}

func TestScorePartialAttempt(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()
	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	_, err = svc.Record(ctx, a.ID, "1", optionID(t, 1, 5))
	require.NoError(t, err)
	_, err = svc.Record(ctx, a.ID, "99", "nope")
	require.NoError(t, err)

	report, err := svc.Score(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scored)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, scoring.ReasonUnknownQuestion, report.Skipped[0].Reason)
	assert.InDelta(t, 0.6, report.Breakdown.Health.Total, 1e-9)
}

func TestScoreUnknownAssessment(t *testing.T) {
	svc, _ := newService(t, nil, false)
	_, err := svc.Score(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = svc.RequestScore(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResultsFallBackWhenRemoteFails(t *testing.T) {
	remote := &stubRemote{err: errors.New("boom")}
	svc, _ := newService(t, remote, false)
	ctx := context.Background()
	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	answerAll(t, svc, a.ID, 2)

	profile := domain.UserProfile{Name: "Sam", Goals: []string{"sleep"}}
	res, err := svc.Results(ctx, a.ID, profile)
	require.NoError(t, err)
	assert.Equal(t, a.ID, res.AssessmentID)
	assert.Equal(t, recommend.SourceFallback, res.RecommendationSource)
	assert.NotEmpty(t, res.FailureReason)
	assert.Len(t, res.Recommendations, recommend.MaxRecommendations)
	assert.NotEmpty(t, res.Nudges)
	assert.Equal(t, profile, remote.last)
}

func TestResultsUsesRemote(t *testing.T) {
	remote := &stubRemote{recs: []domain.Recommendation{{Title: "Walk daily", Category: domain.CategoryHealth}}}
	svc, _ := newService(t, remote, false)
	ctx := context.Background()
	a, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	answerAll(t, svc, a.ID, 5)

	res, err := svc.Results(ctx, a.ID, domain.UserProfile{})
	require.NoError(t, err)
	assert.Equal(t, recommend.SourceRemote, res.RecommendationSource)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "Walk daily", res.Recommendations[0].Title)
	require.Len(t, res.Nudges, 1)
	assert.Equal(t, recommend.GeneralWellbeingID, res.Nudges[0].ID)
}

func TestScoreResponsesIsStateless(t *testing.T) {
	svc, store := newService(t, nil, false)
	ctx := context.Background()
	resp := []domain.Response{
		{QuestionID: "1", OptionID: optionID(t, 1, 5)},
		{QuestionID: "10", OptionID: optionID(t, 10, 5)},
	}

	res, err := svc.ScoreResponses(ctx, resp, domain.UserProfile{})
	require.NoError(t, err)
	assert.Empty(t, res.AssessmentID)
	assert.Greater(t, res.Breakdown.Overall.Total, 0.0)
	assert.NotEmpty(t, res.Nudges)

	list, err := store.ListAssessments(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListByUser(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()
	user := "user-1"
	_, err := svc.Start(ctx, &user)
	require.NoError(t, err)
	_, err = svc.Start(ctx, nil)
	require.NoError(t, err)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Guest)
}
