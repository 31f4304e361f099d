package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wellbeing.json")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	a, err := s.CreateAssessment(ctx, nil)
	require.NoError(t, err)
	assert.True(t, a.Guest)
	assert.Equal(t, domain.StatusInProgress, a.Status)

	require.NoError(t, s.SaveResponse(ctx, a.ID, domain.Response{QuestionID: "1", OptionID: "x"}))
	require.NoError(t, s.SaveScores(ctx, a.ID, scoring.Breakdown{Overall: scoring.OverallScore{Total: 1.5, Grade: "F"}}))

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.GetAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	resp, err := reopened.GetResponses(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Response{{QuestionID: "1", OptionID: "x"}}, resp)
	b, found, err := reopened.LatestScores(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1.5, b.Overall.Total)
}

func TestSaveResponseUpsertsAndMovesToEnd(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	ctx := context.Background()
	a, err := s.CreateAssessment(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, s.SaveResponse(ctx, a.ID, domain.Response{QuestionID: "1", OptionID: "a"}))
	require.NoError(t, s.SaveResponse(ctx, a.ID, domain.Response{QuestionID: "2", OptionID: "b"}))
	require.NoError(t, s.SaveResponse(ctx, a.ID, domain.Response{QuestionID: "1", OptionID: "c"}))

	got, err := s.GetResponses(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Response{{QuestionID: "2", OptionID: "b"}, {QuestionID: "1", OptionID: "c"}}, got)
}

func TestUnknownAssessment(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s.GetAssessment(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(s.SaveResponse(ctx, "nope", domain.Response{}), domain.ErrNotFound))
	assert.True(t, errors.Is(s.SetStatus(ctx, "nope", domain.StatusScored), domain.ErrNotFound))
	_, err = s.GetResponses(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCatalogIsSeeded(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	ctx := context.Background()
	qs, err := s.GetAllQuestions(ctx)
	require.NoError(t, err)
	assert.Len(t, qs, domain.QuestionCount)
	q, err := s.GetQuestion(ctx, 23)
	require.NoError(t, err)
	opts, err := s.GetOptions(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, opts, 5)
	_, err = s.GetQuestion(ctx, 24)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestJobsLifecycle(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	ctx := context.Background()

	id, err := s.EnqueueScoreJob(ctx, "a1")
	require.NoError(t, err)
	again, err := s.EnqueueScoreJob(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, id, again, "pending job is reused")

	job, found, err := s.ClaimNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "a1", job.AssessmentID)

	_, found, err = s.ClaimNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.CompleteJob(ctx, job.ID))
	assert.True(t, errors.Is(s.FailJob(ctx, "missing", "x"), domain.ErrNotFound))
}

func TestListAssessmentsByUser(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	ctx := context.Background()
	user := "u-1"
	other := "u-2"
	_, err = s.CreateAssessment(ctx, &user)
	require.NoError(t, err)
	_, err = s.CreateAssessment(ctx, &other)
	require.NoError(t, err)
	_, err = s.CreateAssessment(ctx, nil)
	require.NoError(t, err)

	got, err := s.ListAssessments(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Guest)
}
