package recommend

import (
	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
)

// MaxRecommendations caps every recommendation list.
const MaxRecommendations = 3

var fallbackTemplates = map[domain.Category]domain.Recommendation{
	domain.CategoryHealth: {
		Title:       "Rebuild your daily health routine",
		Description: "Your health score shows room to improve in the basics of food, movement, sleep and daylight.",
		Category:    domain.CategoryHealth,
		Priority:    domain.PriorityHigh,
		ActionableSteps: []string{
			"Add one portion of vegetables to a meal each day",
			"Take a 20 minute walk outside before noon",
			"Keep a glass of water by your desk and refill it",
			"Go to bed at the same time for seven nights",
		},
		EstimatedTime:       "30 minutes a day",
		Difficulty:          "medium",
		NudgeType:           "habit",
		BehavioralPrinciple: FreshStart,
	},
	domain.CategoryWealth: {
		Title:       "Make your work sustainable",
		Description: "Your wealth score points to strain in how much, how well or how creatively you work, and how you rest.",
		Category:    domain.CategoryWealth,
		Priority:    domain.PriorityMedium,
		ActionableSteps: []string{
			"Block one focused hour for meaningful work each day",
			"Set a firm end time for your working day",
			"Schedule one restful activity every weekend",
		},
		EstimatedTime:       "1 hour a day",
		Difficulty:          "medium",
		NudgeType:           "planning",
		BehavioralPrinciple: CommitmentDevice,
	},
	domain.CategoryRelationships: {
		Title:       "Invest in the people around you",
		Description: "Your relationships score suggests your connections and emotional wellbeing need attention.",
		Category:    domain.CategoryRelationships,
		Priority:    domain.PriorityMedium,
		ActionableSteps: []string{
			"Schedule a weekly call with a friend or relative",
			"Share a meal without screens with someone close",
			"Spend ten minutes a day on a calming practice",
		},
		EstimatedTime:       "2 hours a week",
		Difficulty:          "easy",
		NudgeType:           "social",
		BehavioralPrinciple: SocialProof,
	},
}

// FallbackRecommendations returns one fixed recommendation per category below
// the moderate threshold. It is empty when every category is healthy.
func FallbackRecommendations(b scoring.Breakdown) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, MaxRecommendations)
	for _, c := range domain.Categories {
		cs := b.Category(c)
		if cs.Total >= cs.Max*ModerateThreshold {
			continue
		}
		rec := fallbackTemplates[c]
		rec.ActionableSteps = append([]string(nil), rec.ActionableSteps...)
		out = append(out, rec)
	}
	return capList(out)
}

func capList(recs []domain.Recommendation) []domain.Recommendation {
	if len(recs) > MaxRecommendations {
		return recs[:MaxRecommendations]
	}
	return recs
}
