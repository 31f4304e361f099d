package domain

import "time"

// Core domain models used internally. The HTTP adapter renders these directly
// as JSON; keep wire-only concerns out of here.

type Category string

const (
	CategoryHealth        Category = "health"
	CategoryWealth        Category = "wealth"
	CategoryRelationships Category = "relationships"
)

// Categories lists the scoring dimensions in display order.
var Categories = []Category{CategoryHealth, CategoryWealth, CategoryRelationships}

func (c Category) Valid() bool {
	switch c {
	case CategoryHealth, CategoryWealth, CategoryRelationships:
		return true
	}
	return false
}

// QuestionCount is the size of the fixed catalog. Order indexes run 1..QuestionCount.
const QuestionCount = 23

type Question struct {
	ID          string   `json:"id"`
	OrderIndex  int      `json:"orderIndex"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
}

// Option is one answer choice. Value lies on a 5-point scale (1..5).
type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Label      string `json:"label"`
	Value      int    `json:"value"`
	OrderIndex int    `json:"orderIndex"`
}

// Response is a single selection. QuestionID may hold a question UUID or, for
// guest attempts, the raw order index as a string.
type Response struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type AssessmentStatus string

const (
	StatusInProgress AssessmentStatus = "in_progress"
	StatusCompleted  AssessmentStatus = "completed"
	StatusScored     AssessmentStatus = "scored"
)

type Assessment struct {
	ID          string           `json:"id"`
	UserID      *string          `json:"userId,omitempty"`
	Guest       bool             `json:"guest"`
	Status      AssessmentStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

// UserProfile is optional context for the text-generation service.
type UserProfile struct {
	Name  string   `json:"name,omitempty"`
	Age   int      `json:"age,omitempty"`
	Goals []string `json:"goals,omitempty"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Recommendation struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Category            Category `json:"category"`
	Priority            Priority `json:"priority"`
	ActionableSteps     []string `json:"actionableSteps"`
	EstimatedTime       string   `json:"estimatedTime"`
	Difficulty          string   `json:"difficulty"`
	NudgeType           string   `json:"nudgeType"`
	BehavioralPrinciple string   `json:"behavioralPrinciple,omitempty"`
}

type BehavioralNudge struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Category            string   `json:"category"`
	Priority            Priority `json:"priority"`
	ActionableSteps     []string `json:"actionableSteps"`
	EstimatedTime       string   `json:"estimatedTime"`
	Difficulty          string   `json:"difficulty"`
	NudgeType           string   `json:"nudgeType"`
	BehavioralPrinciple string   `json:"behavioralPrinciple"`
}
