package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wellbeing/internal/catalog"
	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
)

// breakdown scores answers given as orderIndex -> option value. Missing
// indexes are left unanswered.
func breakdown(t *testing.T, answers map[int]int) scoring.Breakdown {
	t.Helper()
	questions, options := catalog.Seed()
	snap := catalog.NewSnapshot(questions, options)
	var responses []domain.Response
	for order, value := range answers {
		q := questions[order-1]
		for _, o := range snap.Options(q.ID) {
			if o.Value == value {
				responses = append(responses, domain.Response{QuestionID: q.ID, OptionID: o.ID})
			}
		}
	}
	b, err := scoring.MustNewEngine(nil).Score(snap, responses)
	require.NoError(t, err)
	return b
}

func uniform(value int) map[int]int {
	out := make(map[int]int, domain.QuestionCount)
	for i := 1; i <= domain.QuestionCount; i++ {
		out[i] = value
	}
	return out
}

// healthHalfOthersNinety yields health 50%, wealth 90%, relationships 90%.
func healthHalfOthersNinety() map[int]int {
	return map[int]int{
		1: 5, 2: 5, 3: 5, 5: 5,
		10: 5, 11: 5, 12: 5, 13: 5, 14: 5, 15: 2,
		16: 5, 17: 5, 18: 5, 20: 5, 21: 5, 22: 5, 23: 5,
	}
}
