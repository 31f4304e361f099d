package scoring

import (
	"math"
	"sort"

	"wellbeing/internal/domain"
)

type Component string

const (
	Nutrition  Component = "nutrition"
	Digestion  Component = "digestion"
	Exercise   Component = "exercise"
	Water      Component = "water"
	Sunlight   Component = "sunlight"
	Sleep      Component = "sleep"
	OutdoorAir Component = "outdoorAir"
	OralCare   Component = "oralCare"
	SkinCare   Component = "skinCare"

	Quality        Component = "quality"
	Quantity       Component = "quantity"
	Diversity      Component = "diversity"
	Workplace      Component = "workplace"
	Creativity     Component = "creativity"
	RestRelaxation Component = "restRelaxation"

	MentalWellbeing    Component = "mentalWellbeing"
	EmotionalWellbeing Component = "emotionalWellbeing"
	Partner            Component = "partner"
	Parents            Component = "parents"
	Children           Component = "children"
	Relatives          Component = "relatives"
	Friends            Component = "friends"
	UniversalOneness   Component = "universalOneness"
)

// Category maxima. Overall is their sum.
const (
	HealthMax        = 4.0
	WealthMax        = 3.0
	RelationshipsMax = 3.0
	OverallMax       = 10.0
)

func CategoryMax(c domain.Category) float64 {
	switch c {
	case domain.CategoryHealth:
		return HealthMax
	case domain.CategoryWealth:
		return WealthMax
	case domain.CategoryRelationships:
		return RelationshipsMax
	}
	return 0
}

// Weight maps one question position to the component it scores.
type Weight struct {
	Category  domain.Category
	Component Component
	Weight    float64
}

// WeightTable maps orderIndex to its weight entry.
type WeightTable map[int]Weight

// DefaultWeights is the scoring rulebook. Scores computed with a different
// table are not comparable.
func DefaultWeights() WeightTable {
	h, w, r := domain.CategoryHealth, domain.CategoryWealth, domain.CategoryRelationships
	return WeightTable{
		1:  {h, Nutrition, 0.6},
		2:  {h, Digestion, 0.2},
		3:  {h, Exercise, 0.6},
		4:  {h, Water, 0.4},
		5:  {h, Sunlight, 0.6},
		6:  {h, Sleep, 0.6},
		7:  {h, OutdoorAir, 0.6},
		8:  {h, OralCare, 0.2},
		9:  {h, SkinCare, 0.2},
		10: {w, Quality, 1.0},
		11: {w, Quantity, 0.3},
		12: {w, Diversity, 0.2},
		13: {w, Workplace, 0.5},
		14: {w, Creativity, 0.5},
		15: {w, RestRelaxation, 0.5},
		16: {r, MentalWellbeing, 0.4},
		17: {r, EmotionalWellbeing, 0.4},
		18: {r, Partner, 0.5},
		19: {r, Parents, 0.3},
		20: {r, Children, 0.3},
		21: {r, Relatives, 0.3},
		22: {r, Friends, 0.3},
		23: {r, UniversalOneness, 0.5},
	}
}

// CategorySum adds up the weights assigned to c.
func (t WeightTable) CategorySum(c domain.Category) float64 {
	var sum float64
	for _, idx := range t.orderIndexes() {
		if t[idx].Category == c {
			sum += t[idx].Weight
		}
	}
	return sum
}

// Validate checks that each category's weights add up to its max and that no
// component is assigned twice.
func (t WeightTable) Validate() error {
	seen := make(map[Component]int, len(t))
	for _, idx := range t.orderIndexes() {
		wt := t[idx]
		if !wt.Category.Valid() {
			return domain.InvalidInput("weight %d: unknown category %q", idx, wt.Category)
		}
		if wt.Weight <= 0 {
			return domain.InvalidInput("weight %d: non-positive weight %v", idx, wt.Weight)
		}
		if prev, dup := seen[wt.Component]; dup {
			return domain.InvalidInput("component %s assigned to both %d and %d", wt.Component, prev, idx)
		}
		seen[wt.Component] = idx
	}
	for _, c := range domain.Categories {
		if sum := t.CategorySum(c); math.Abs(sum-CategoryMax(c)) > 1e-9 {
			return domain.InvalidInput("%s weights sum to %.4f, want %.1f", c, sum, CategoryMax(c))
		}
	}
	return nil
}

// components returns the component weights of one category.
func (t WeightTable) components(c domain.Category) map[Component]float64 {
	out := make(map[Component]float64)
	for _, wt := range t {
		if wt.Category == c {
			out[wt.Component] = wt.Weight
		}
	}
	return out
}

func (t WeightTable) orderIndexes() []int {
	idx := make([]int, 0, len(t))
	for k := range t {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	return idx
}
