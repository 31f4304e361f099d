package scoring

type gradeTier struct {
	min   int
	grade string
	level string
}

var gradeTiers = []gradeTier{
	{90, "A+", "Exceptional"},
	{85, "A", "Excellent"},
	{80, "A-", "Very Good"},
	{75, "B+", "Good"},
	{70, "B", "Above Average"},
	{65, "B-", "Average"},
	{60, "C+", "Below Average"},
	{55, "C", "Needs Work"},
	{50, "C-", "Poor"},
}

// GradeFromPercentage maps an overall percentage to its grade and level.
// Each boundary is an inclusive lower bound.
func GradeFromPercentage(pct int) (grade, level string) {
	for _, tier := range gradeTiers {
		if pct >= tier.min {
			return tier.grade, tier.level
		}
	}
	return "F", "Critical"
}
