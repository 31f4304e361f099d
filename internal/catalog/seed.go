package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"wellbeing/internal/domain"
)

type seedQuestion struct {
	category    domain.Category
	title       string
	description string
}

// seedQuestions is indexed by orderIndex-1. The postgres migration seeds the
// same titles.
var seedQuestions = []seedQuestion{
	{domain.CategoryHealth, "How balanced and whole-food based is your diet?", "Fruit, vegetables, whole grains and minimally processed meals."},
	{domain.CategoryHealth, "How comfortable is your digestion day to day?", ""},
	{domain.CategoryHealth, "How often do you get at least 30 minutes of movement?", "Walking, cycling, sport or training all count."},
	{domain.CategoryHealth, "Do you drink enough water through the day?", ""},
	{domain.CategoryHealth, "How much daylight do you get on most days?", "Time outdoors in natural light, ideally in the morning."},
	{domain.CategoryHealth, "How rested do you feel after a night's sleep?", ""},
	{domain.CategoryHealth, "How often do you spend time breathing fresh outdoor air?", ""},
	{domain.CategoryHealth, "How consistent is your oral care routine?", ""},
	{domain.CategoryHealth, "How well do you look after your skin?", ""},
	{domain.CategoryWealth, "How fulfilling is the work you do?", "Sense of purpose and quality of the work itself."},
	{domain.CategoryWealth, "Is the amount you work sustainable for you?", ""},
	{domain.CategoryWealth, "How varied are your sources of income and activity?", ""},
	{domain.CategoryWealth, "How supportive is your workplace environment?", ""},
	{domain.CategoryWealth, "How much room do you have for creativity?", ""},
	{domain.CategoryWealth, "Do you make time for rest and relaxation?", ""},
	{domain.CategoryRelationships, "How would you rate your mental wellbeing?", "Focus, clarity and resilience to stress."},
	{domain.CategoryRelationships, "How would you rate your emotional wellbeing?", ""},
	{domain.CategoryRelationships, "How connected do you feel to your partner?", "Answer for your closest relationship if you have no partner."},
	{domain.CategoryRelationships, "How is your relationship with your parents?", ""},
	{domain.CategoryRelationships, "How is your relationship with your children?", ""},
	{domain.CategoryRelationships, "How often are you in touch with relatives?", ""},
	{domain.CategoryRelationships, "How supported do you feel by your friends?", ""},
	{domain.CategoryRelationships, "How connected do you feel to something larger than yourself?", "Community, nature, faith or a shared purpose."},
}

// OptionLabels are the 5-point scale labels; label i has value i+1.
var OptionLabels = []string{"Never", "Rarely", "Sometimes", "Often", "Always"}

var seedNamespace = uuid.MustParse("6b1f3c2e-8a4d-4f0e-9c57-2d9e4b7a1c30")

// Seed builds the default catalog with stable ids.
func Seed() ([]domain.Question, []domain.Option) {
	questions := make([]domain.Question, 0, len(seedQuestions))
	options := make([]domain.Option, 0, len(seedQuestions)*len(OptionLabels))
	for i, sq := range seedQuestions {
		order := i + 1
		q := domain.Question{
			ID:         uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("question-%d", order))).String(),
			OrderIndex: order,
			Category:   sq.category,
			Title:      sq.title,
		}
		if sq.description != "" {
			d := sq.description
			q.Description = &d
		}
		questions = append(questions, q)
		for j, label := range OptionLabels {
			options = append(options, domain.Option{
				ID:         uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("option-%d-%d", order, j+1))).String(),
				QuestionID: q.ID,
				Label:      label,
				Value:      j + 1,
				OrderIndex: j + 1,
			})
		}
	}
	return questions, options
}
