package catalog

import (
	"context"
	"sort"
	"strconv"

	"wellbeing/internal/domain"
	"wellbeing/internal/ports"
)

// Entry is a question with its options in display order.
type Entry struct {
	Question domain.Question `json:"question"`
	Options  []domain.Option `json:"options"`
}

// Listing is the whole catalog: every question plus options keyed by question id.
type Listing struct {
	Questions []domain.Question          `json:"questions"`
	Options   map[string][]domain.Option `json:"options"`
}

// Service is the read accessor over the catalog repository. It holds no state
// between calls.
type Service struct {
	repo ports.CatalogRepository
}

func New(repo ports.CatalogRepository) *Service { return &Service{repo: repo} }

// Question returns the question at orderIndex (1..23) and its ordered options.
func (s *Service) Question(ctx context.Context, orderIndex int) (Entry, error) {
	if orderIndex < 1 || orderIndex > domain.QuestionCount {
		return Entry{}, domain.NotFound("question", strconv.Itoa(orderIndex))
	}
	q, err := s.repo.GetQuestion(ctx, orderIndex)
	if err != nil {
		return Entry{}, err
	}
	opts, err := s.repo.GetOptions(ctx, q.ID)
	if err != nil {
		return Entry{}, err
	}
	sortOptions(opts)
	return Entry{Question: q, Options: opts}, nil
}

// All returns every question and all options keyed by question id.
func (s *Service) All(ctx context.Context) (Listing, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Listing{}, err
	}
	return snap.Listing(), nil
}

// Snapshot loads the catalog into an immutable lookup structure for scoring.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	questions, err := s.repo.GetAllQuestions(ctx)
	if err != nil {
		return nil, err
	}
	options, err := s.repo.GetAllOptions(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(questions, options), nil
}

// Snapshot is a read-only in-memory view of questions and options.
type Snapshot struct {
	questions  []domain.Question
	byID       map[string]domain.Question
	byOrder    map[int]domain.Question
	options    map[string]domain.Option
	byQuestion map[string][]domain.Option
}

func NewSnapshot(questions []domain.Question, options []domain.Option) *Snapshot {
	s := &Snapshot{
		questions:  append([]domain.Question(nil), questions...),
		byID:       make(map[string]domain.Question, len(questions)),
		byOrder:    make(map[int]domain.Question, len(questions)),
		options:    make(map[string]domain.Option, len(options)),
		byQuestion: make(map[string][]domain.Option, len(questions)),
	}
	sort.SliceStable(s.questions, func(i, j int) bool { return s.questions[i].OrderIndex < s.questions[j].OrderIndex })
	for _, q := range s.questions {
		s.byID[q.ID] = q
		s.byOrder[q.OrderIndex] = q
	}
	for _, o := range options {
		s.options[o.ID] = o
		s.byQuestion[o.QuestionID] = append(s.byQuestion[o.QuestionID], o)
	}
	for id := range s.byQuestion {
		sortOptions(s.byQuestion[id])
	}
	return s
}

// Question looks up by order index.
func (s *Snapshot) Question(orderIndex int) (Entry, error) {
	q, ok := s.byOrder[orderIndex]
	if !ok || orderIndex < 1 || orderIndex > domain.QuestionCount {
		return Entry{}, domain.NotFound("question", strconv.Itoa(orderIndex))
	}
	return Entry{Question: q, Options: s.Options(q.ID)}, nil
}

// FindQuestion resolves a response key. Keys are either a question id or, for
// guest attempts, the order index written as a decimal string.
func (s *Snapshot) FindQuestion(ref string) (domain.Question, bool) {
	if q, ok := s.byID[ref]; ok {
		return q, true
	}
	// Only canonical decimals: "05", "+5" and " 5" are not order keys.
	if n, err := strconv.Atoi(ref); err == nil && strconv.Itoa(n) == ref {
		q, ok := s.byOrder[n]
		return q, ok
	}
	return domain.Question{}, false
}

func (s *Snapshot) FindOption(id string) (domain.Option, bool) {
	o, ok := s.options[id]
	return o, ok
}

// Questions returns questions ordered by order index.
func (s *Snapshot) Questions() []domain.Question {
	return append([]domain.Question(nil), s.questions...)
}

func (s *Snapshot) Options(questionID string) []domain.Option {
	return append([]domain.Option(nil), s.byQuestion[questionID]...)
}

func (s *Snapshot) Listing() Listing {
	out := Listing{Questions: s.Questions(), Options: make(map[string][]domain.Option, len(s.byQuestion))}
	for id := range s.byQuestion {
		out.Options[id] = s.Options(id)
	}
	return out
}

func sortOptions(opts []domain.Option) {
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].OrderIndex < opts[j].OrderIndex })
}
