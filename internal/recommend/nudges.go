package recommend

import (
	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
)

// Behavioural principles attached to nudges.
const (
	LossAversion     = "loss-aversion"
	FreshStart       = "fresh-start"
	SocialProof      = "social-proof"
	CommitmentDevice = "commitment-device"
)

// Threshold fractions of a category max.
const (
	ModerateThreshold = 0.7
	SevereThreshold   = 0.5
)

// GeneralWellbeingID is the nudge emitted when no rule fires.
const GeneralWellbeingID = "general-wellbeing"

type nudgeRule struct {
	category  domain.Category
	threshold float64
	nudge     domain.BehavioralNudge
}

var nudgeRules = []nudgeRule{
	{domain.CategoryHealth, ModerateThreshold, domain.BehavioralNudge{
		ID:          "health-loss-aversion",
		Title:       "Protect the energy you already have",
		Description: "Small lapses in sleep, water and movement quietly cost you energy every day. Guard one habit before you lose more ground.",
		Category:    string(domain.CategoryHealth),
		Priority:    domain.PriorityHigh,
		ActionableSteps: []string{
			"Pick the one health habit you skip most often",
			"Put a 10 minute block for it in your calendar today",
			"Notice how you feel on the days you miss it",
		},
		EstimatedTime:       "10 minutes a day",
		Difficulty:          "easy",
		NudgeType:           "reminder",
		BehavioralPrinciple: LossAversion,
	}},
	{domain.CategoryHealth, SevereThreshold, domain.BehavioralNudge{
		ID:          "health-fresh-start",
		Title:       "Start a new health week on Monday",
		Description: "A fresh week is a natural line in the sand. Use it to reset one routine at a time rather than everything at once.",
		Category:    string(domain.CategoryHealth),
		Priority:    domain.PriorityHigh,
		ActionableSteps: []string{
			"Choose a start date within the next seven days",
			"Write down the single routine you will rebuild first",
			"Review progress at the end of the first week",
		},
		EstimatedTime:       "1 week",
		Difficulty:          "medium",
		NudgeType:           "goal-setting",
		BehavioralPrinciple: FreshStart,
	}},
	{domain.CategoryWealth, ModerateThreshold, domain.BehavioralNudge{
		ID:          "wealth-loss-aversion",
		Title:       "Stop the slow drain on your working life",
		Description: "Unrewarding work and missing rest add up. Identify what each week is costing you so you can reclaim it.",
		Category:    string(domain.CategoryWealth),
		Priority:    domain.PriorityMedium,
		ActionableSteps: []string{
			"List the tasks that leave you most depleted",
			"Decide which one you can delegate, reduce or drop",
			"Protect one rest block this week",
		},
		EstimatedTime:       "20 minutes",
		Difficulty:          "easy",
		NudgeType:           "reflection",
		BehavioralPrinciple: LossAversion,
	}},
	{domain.CategoryWealth, SevereThreshold, domain.BehavioralNudge{
		ID:          "wealth-commitment-device",
		Title:       "Commit to one change in writing",
		Description: "Tell someone you trust what you will change about your work or rest, and when. Public commitments are harder to abandon.",
		Category:    string(domain.CategoryWealth),
		Priority:    domain.PriorityHigh,
		ActionableSteps: []string{
			"Write one concrete commitment with a deadline",
			"Share it with a colleague, friend or mentor",
			"Schedule a check-in with them in two weeks",
		},
		EstimatedTime:       "2 weeks",
		Difficulty:          "medium",
		NudgeType:           "commitment",
		BehavioralPrinciple: CommitmentDevice,
	}},
	{domain.CategoryRelationships, ModerateThreshold, domain.BehavioralNudge{
		ID:          "relationships-loss-aversion",
		Title:       "Don't let important connections fade",
		Description: "Relationships weaken quietly when they go unattended. Reach out before the distance grows.",
		Category:    string(domain.CategoryRelationships),
		Priority:    domain.PriorityMedium,
		ActionableSteps: []string{
			"Name three people you have not spoken to in a month",
			"Send one of them a message today",
			"Plan a call or meeting with another this week",
		},
		EstimatedTime:       "15 minutes",
		Difficulty:          "easy",
		NudgeType:           "reminder",
		BehavioralPrinciple: LossAversion,
	}},
	{domain.CategoryRelationships, SevereThreshold, domain.BehavioralNudge{
		ID:          "relationships-social-proof",
		Title:       "Join people who are already connecting",
		Description: "Most people who rebuild their support network do it through a shared activity. Find a group that meets regularly.",
		Category:    string(domain.CategoryRelationships),
		Priority:    domain.PriorityHigh,
		ActionableSteps: []string{
			"Look for a local club, class or volunteer group",
			"Attend one session in the next two weeks",
			"Invite a friend or relative to come along",
		},
		EstimatedTime:       "2 hours a week",
		Difficulty:          "medium",
		NudgeType:           "social",
		BehavioralPrinciple: SocialProof,
	}},
}

var generalWellbeingNudge = domain.BehavioralNudge{
	ID:          GeneralWellbeingID,
	Title:       "Build on a strong foundation",
	Description: "Every area is in good shape. Use the start of next week to pick one area to lift from good to great.",
	Category:    "general",
	Priority:    domain.PriorityLow,
	ActionableSteps: []string{
		"Pick the area you would most like to grow",
		"Set one stretch goal for the coming month",
		"Retake the assessment in 30 days",
	},
	EstimatedTime:       "30 days",
	Difficulty:          "easy",
	NudgeType:           "goal-setting",
	BehavioralPrinciple: FreshStart,
}

// Nudges applies the threshold rules to b. Both tiers may fire for one
// category. The result is never empty.
func Nudges(b scoring.Breakdown) []domain.BehavioralNudge {
	var out []domain.BehavioralNudge
	for _, rule := range nudgeRules {
		cs := b.Category(rule.category)
		if cs.Total < cs.Max*rule.threshold {
			out = append(out, cloneNudge(rule.nudge))
		}
	}
	if len(out) == 0 {
		out = append(out, cloneNudge(generalWellbeingNudge))
	}
	return out
}

func cloneNudge(n domain.BehavioralNudge) domain.BehavioralNudge {
	n.ActionableSteps = append([]string(nil), n.ActionableSteps...)
	return n
}
