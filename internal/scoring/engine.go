package scoring

import (
	"log/slog"
	"math"

	"wellbeing/internal/domain"
)

// ScaleMax is the top of the 5-point option scale.
const ScaleMax = 5.0

// Catalog resolves response keys during scoring.
type Catalog interface {
	FindQuestion(ref string) (domain.Question, bool)
	FindOption(id string) (domain.Option, bool)
}

type ComponentScore struct {
	Total      float64 `json:"total"`
	Max        float64 `json:"max"`
	Percentage int     `json:"percentage"`
}

type CategoryScore struct {
	Total      float64                      `json:"total"`
	Max        float64                      `json:"max"`
	Percentage int                          `json:"percentage"`
	Components map[Component]ComponentScore `json:"components"`
}

type OverallScore struct {
	Total      float64 `json:"total"`
	Max        float64 `json:"max"`
	Percentage int     `json:"percentage"`
	Grade      string  `json:"grade"`
	Level      string  `json:"level"`
}

// Breakdown is the output of one scoring run. Only the Engine builds it.
type Breakdown struct {
	Health        CategoryScore `json:"health"`
	Wealth        CategoryScore `json:"wealth"`
	Relationships CategoryScore `json:"relationships"`
	Overall       OverallScore  `json:"overall"`
}

// Category returns the score of c; unknown categories yield the zero value.
func (b Breakdown) Category(c domain.Category) CategoryScore {
	switch c {
	case domain.CategoryHealth:
		return b.Health
	case domain.CategoryWealth:
		return b.Wealth
	case domain.CategoryRelationships:
		return b.Relationships
	}
	return CategoryScore{}
}

// Skip reasons.
const (
	ReasonUnknownQuestion = "unknown question"
	ReasonUnknownOption   = "unknown option"
	ReasonOptionMismatch  = "option does not belong to question"
	ReasonUnmapped        = "no weight mapping"
	ReasonSuperseded      = "superseded by a later answer"
)

// SkippedResponse is a non-fatal warning: the response did not contribute.
type SkippedResponse struct {
	Response domain.Response `json:"response"`
	Reason   string          `json:"reason"`
}

// Report carries the breakdown and the responses that were skipped.
type Report struct {
	Breakdown Breakdown         `json:"breakdown"`
	Scored    int               `json:"scored"`
	Skipped   []SkippedResponse `json:"skipped,omitempty"`
}

// Engine scores response sets against a weight table. It is stateless and
// safe for concurrent use.
type Engine struct {
	weights WeightTable
	logger  *slog.Logger
}

// NewEngine validates the table. A nil logger uses slog.Default.
func NewEngine(weights WeightTable, logger *slog.Logger) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	cp := make(WeightTable, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	return &Engine{weights: cp, logger: logger}, nil
}

// MustNewEngine builds an engine over DefaultWeights.
func MustNewEngine(logger *slog.Logger) *Engine {
	e, err := NewEngine(DefaultWeights(), logger)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Weights() WeightTable {
	cp := make(WeightTable, len(e.weights))
	for k, v := range e.weights {
		cp[k] = v
	}
	return cp
}

// Score computes the breakdown for responses.
func (e *Engine) Score(cat Catalog, responses []domain.Response) (Breakdown, error) {
	r, err := e.Evaluate(cat, responses)
	if err != nil {
		return Breakdown{}, err
	}
	return r.Breakdown, nil
}

type resolved struct {
	resp   domain.Response
	weight Weight
	value  int
}

// Evaluate scores responses and reports the ones it could not use. Responses
// whose question, option or weight mapping cannot be resolved are skipped.
// When several responses resolve to the same question the last one wins.
func (e *Engine) Evaluate(cat Catalog, responses []domain.Response) (Report, error) {
	if cat == nil {
		return Report{}, domain.InvalidInput("catalog is required")
	}
	var report Report

	latest := make(map[int]int, len(responses))
	picked := make([]resolved, 0, len(responses))
	for _, resp := range responses {
		q, ok := cat.FindQuestion(resp.QuestionID)
		if !ok {
			report.skip(e.logger, resp, ReasonUnknownQuestion)
			continue
		}
		opt, ok := cat.FindOption(resp.OptionID)
		if !ok {
			report.skip(e.logger, resp, ReasonUnknownOption)
			continue
		}
		if opt.QuestionID != q.ID {
			report.skip(e.logger, resp, ReasonOptionMismatch)
			continue
		}
		wt, ok := e.weights[q.OrderIndex]
		if !ok {
			report.skip(e.logger, resp, ReasonUnmapped)
			continue
		}
		if prev, dup := latest[q.OrderIndex]; dup {
			report.skip(e.logger, picked[prev].resp, ReasonSuperseded)
			picked[prev] = resolved{resp: resp, weight: wt, value: opt.Value}
			continue
		}
		latest[q.OrderIndex] = len(picked)
		picked = append(picked, resolved{resp: resp, weight: wt, value: opt.Value})
	}

	totals := make(map[domain.Category]float64, len(domain.Categories))
	components := make(map[domain.Category]map[Component]float64, len(domain.Categories))
	for _, c := range domain.Categories {
		components[c] = make(map[Component]float64)
	}
	for _, p := range picked {
		contribution := (float64(p.value) / ScaleMax) * p.weight.Weight
		totals[p.weight.Category] += contribution
		components[p.weight.Category][p.weight.Component] += contribution
	}
	report.Scored = len(picked)

	b := Breakdown{
		Health:        e.category(domain.CategoryHealth, totals, components),
		Wealth:        e.category(domain.CategoryWealth, totals, components),
		Relationships: e.category(domain.CategoryRelationships, totals, components),
	}
	overall := round2(b.Health.Total + b.Wealth.Total + b.Relationships.Total)
	b.Overall = OverallScore{
		Total:      overall,
		Max:        OverallMax,
		Percentage: percent(overall, OverallMax),
	}
	b.Overall.Grade, b.Overall.Level = GradeFromPercentage(b.Overall.Percentage)
	report.Breakdown = b
	return report, nil
}

func (e *Engine) category(c domain.Category, totals map[domain.Category]float64, components map[domain.Category]map[Component]float64) CategoryScore {
	limit := CategoryMax(c)
	out := CategoryScore{
		Total:      round2(totals[c]),
		Max:        limit,
		Percentage: percent(totals[c], limit),
		Components: make(map[Component]ComponentScore),
	}
	for comp, weight := range e.weights.components(c) {
		got := components[c][comp]
		out.Components[comp] = ComponentScore{
			Total:      round2(got),
			Max:        weight,
			Percentage: percent(got, weight),
		}
	}
	return out
}

func (r *Report) skip(logger *slog.Logger, resp domain.Response, reason string) {
	r.Skipped = append(r.Skipped, SkippedResponse{Response: resp, Reason: reason})
	logger.Warn("skipped response",
		"question_id", resp.QuestionID,
		"option_id", resp.OptionID,
		"reason", reason)
}

func percent(total, limit float64) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Round(total / limit * 100))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
