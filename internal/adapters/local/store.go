package local

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"wellbeing/internal/catalog"
	"wellbeing/internal/domain"
	"wellbeing/internal/ports"
	"wellbeing/internal/scoring"
)

type jobState struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessmentId"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	Reason       string    `json:"reason,omitempty"`
	QueuedAt     time.Time `json:"queuedAt"`
}

type fileState struct {
	Assessments map[string]domain.Assessment `json:"assessments"`
	Responses   map[string][]domain.Response `json:"responses"`
	Scores      map[string]scoring.Breakdown `json:"scores"`
	Jobs        []jobState                   `json:"jobs"`
}

// Store is the guest-mode storage engine: the seed catalog in memory and
// attempts persisted to a single JSON file. An empty path keeps everything in
// memory.
type Store struct {
	filePath  string
	questions []domain.Question
	options   []domain.Option
	now       func() time.Time

	mu    sync.RWMutex
	state fileState
}

var _ ports.Store = (*Store)(nil)

func Open(filePath string) (*Store, error) {
	questions, options := catalog.Seed()
	s := &Store{
		filePath:  filePath,
		questions: questions,
		options:   options,
		now:       time.Now,
		state:     emptyState(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func emptyState() fileState {
	return fileState{
		Assessments: make(map[string]domain.Assessment),
		Responses:   make(map[string][]domain.Response),
		Scores:      make(map[string]scoring.Breakdown),
		Jobs:        make([]jobState, 0),
	}
}

func (s *Store) Close() {}

// CatalogRepository

func (s *Store) GetQuestion(_ context.Context, orderIndex int) (domain.Question, error) {
	for _, q := range s.questions {
		if q.OrderIndex == orderIndex {
			return q, nil
		}
	}
	return domain.Question{}, domain.NotFound("question", strconv.Itoa(orderIndex))
}

func (s *Store) GetOptions(_ context.Context, questionID string) ([]domain.Option, error) {
	out := make([]domain.Option, 0, len(catalog.OptionLabels))
	for _, o := range s.options {
		if o.QuestionID == questionID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) GetAllQuestions(context.Context) ([]domain.Question, error) {
	return append([]domain.Question(nil), s.questions...), nil
}

func (s *Store) GetAllOptions(context.Context) ([]domain.Option, error) {
	return append([]domain.Option(nil), s.options...), nil
}

// AssessmentRepository

func (s *Store) CreateAssessment(_ context.Context, userID *string) (domain.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := domain.Assessment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Guest:     userID == nil,
		Status:    domain.StatusInProgress,
		CreatedAt: s.now().UTC(),
	}
	s.state.Assessments[a.ID] = a
	return a, s.persistLocked()
}

func (s *Store) GetAssessment(_ context.Context, id string) (domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.Assessments[id]
	if !ok {
		return domain.Assessment{}, domain.NotFound("assessment", id)
	}
	return a, nil
}

func (s *Store) ListAssessments(_ context.Context, userID string) ([]domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Assessment, 0)
	for _, a := range s.state.Assessments {
		if a.UserID != nil && *a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SetStatus(_ context.Context, id string, status domain.AssessmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.Assessments[id]
	if !ok {
		return domain.NotFound("assessment", id)
	}
	a.Status = status
	if status != domain.StatusInProgress && a.CompletedAt == nil {
		t := s.now().UTC()
		a.CompletedAt = &t
	}
	s.state.Assessments[id] = a
	return s.persistLocked()
}

// ResponseRepository

func (s *Store) GetResponses(_ context.Context, assessmentID string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.state.Assessments[assessmentID]; !ok {
		return nil, domain.NotFound("assessment", assessmentID)
	}
	return append([]domain.Response{}, s.state.Responses[assessmentID]...), nil
}

// SaveResponse upserts by question key. The latest write moves to the end so
// replaying the list preserves last-write-wins.
func (s *Store) SaveResponse(_ context.Context, assessmentID string, r domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Assessments[assessmentID]; !ok {
		return domain.NotFound("assessment", assessmentID)
	}
	list := s.state.Responses[assessmentID]
	kept := list[:0]
	for _, existing := range list {
		if existing.QuestionID != r.QuestionID {
			kept = append(kept, existing)
		}
	}
	s.state.Responses[assessmentID] = append(kept, r)
	return s.persistLocked()
}

// ScoreSink

func (s *Store) SaveScores(_ context.Context, assessmentID string, b scoring.Breakdown) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Assessments[assessmentID]; !ok {
		return domain.NotFound("assessment", assessmentID)
	}
	s.state.Scores[assessmentID] = b
	return s.persistLocked()
}

func (s *Store) LatestScores(_ context.Context, assessmentID string) (scoring.Breakdown, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.Scores[assessmentID]
	return b, ok, nil
}

// JobRepository

func (s *Store) EnqueueScoreJob(_ context.Context, assessmentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.state.Jobs {
		if j.AssessmentID == assessmentID && (j.Status == "queued" || j.Status == "running") {
			return j.ID, nil
		}
	}
	j := jobState{ID: uuid.NewString(), AssessmentID: assessmentID, Status: "queued", QueuedAt: s.now().UTC()}
	s.state.Jobs = append(s.state.Jobs, j)
	return j.ID, s.persistLocked()
}

func (s *Store) ClaimNext(context.Context) (ports.ScoreJob, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Jobs {
		if s.state.Jobs[i].Status != "queued" {
			continue
		}
		s.state.Jobs[i].Status = "running"
		s.state.Jobs[i].Attempts++
		j := s.state.Jobs[i]
		return ports.ScoreJob{ID: j.ID, AssessmentID: j.AssessmentID}, true, s.persistLocked()
	}
	return ports.ScoreJob{}, false, nil
}

func (s *Store) CompleteJob(_ context.Context, jobID string) error {
	return s.finishJob(jobID, "completed", "")
}

func (s *Store) FailJob(_ context.Context, jobID string, reason string) error {
	return s.finishJob(jobID, "failed", reason)
}

func (s *Store) finishJob(jobID, status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Jobs {
		if s.state.Jobs[i].ID == jobID {
			s.state.Jobs[i].Status = status
			s.state.Jobs[i].Reason = reason
			return s.persistLocked()
		}
	}
	return domain.NotFound("job", jobID)
}

func (s *Store) load() error {
	if s.filePath == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	state := emptyState()
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.Assessments == nil {
		state.Assessments = make(map[string]domain.Assessment)
	}
	if state.Responses == nil {
		state.Responses = make(map[string][]domain.Response)
	}
	if state.Scores == nil {
		state.Scores = make(map[string]scoring.Breakdown)
	}
	if state.Jobs == nil {
		state.Jobs = make([]jobState, 0)
	}
	s.state = state
	return nil
}

func (s *Store) persistLocked() error {
	if s.filePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}
