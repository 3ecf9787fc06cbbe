package scoring

import "math"

type Direction string

const (
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
	DirectionEqual  Direction = "equal"
)

type Thresholds struct {
	Category float64 `json:"category"`
	Item     float64 `json:"item"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Category: 5, Item: 10}
}

// Delta is reference minus base. Direction describes the reference side:
// "higher" means the reference evaluator scored above the base evaluator.
type Delta struct {
	Base        float64   `json:"base"`
	Reference   float64   `json:"reference"`
	Difference  float64   `json:"difference"`
	Direction   Direction `json:"direction"`
	Label       string    `json:"label"`
	Significant bool      `json:"significant"`
}

type ItemDelta struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Delta
}

type CategoryDelta struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Delta
	Items []ItemDelta `json:"items"`
}

type Comparison struct {
	Base       EvaluatorType   `json:"base"`
	Reference  EvaluatorType   `json:"reference"`
	Overall    *Delta          `json:"overall,omitempty"`
	Categories []CategoryDelta `json:"categories"`
}

// Compare diffs two evaluators' breakdowns. Categories and items are matched
// by id; anything present on only one side is left out.
func Compare(base, reference EvaluatorType, baseOverall, refOverall *float64, baseCategories, refCategories []CategoryScore, thresholds Thresholds) Comparison {
	out := Comparison{Base: base, Reference: reference, Categories: []CategoryDelta{}}
	if baseOverall != nil && refOverall != nil {
		delta := newDelta(base, reference, *baseOverall, *refOverall, 0)
		out.Overall = &delta
	}

	refByID := make(map[string]CategoryScore, len(refCategories))
	for _, category := range refCategories {
		refByID[category.CategoryID] = category
	}

	for _, baseCategory := range baseCategories {
		refCategory, ok := refByID[baseCategory.CategoryID]
		if !ok {
			continue
		}
		categoryDelta := CategoryDelta{
			CategoryID: baseCategory.CategoryID,
			Name:       baseCategory.Name,
			Delta:      newDelta(base, reference, baseCategory.Score, refCategory.Score, thresholds.Category),
			Items:      []ItemDelta{},
		}

		refItems := make(map[string]ItemScore, len(refCategory.Items))
		for _, item := range refCategory.Items {
			refItems[item.ItemID] = item
		}
		for _, baseItem := range baseCategory.Items {
			refItem, ok := refItems[baseItem.ItemID]
			if !ok {
				continue
			}
			categoryDelta.Items = append(categoryDelta.Items, ItemDelta{
				ItemID: baseItem.ItemID,
				Name:   baseItem.Name,
				Delta:  newDelta(base, reference, baseItem.Score, refItem.Score, thresholds.Item),
			})
		}
		out.Categories = append(out.Categories, categoryDelta)
	}
	return out
}

// SignificantCategories returns the categories whose difference reached the
// category threshold.
func (c Comparison) SignificantCategories() []CategoryDelta {
	var out []CategoryDelta
	for _, category := range c.Categories {
		if category.Significant {
			out = append(out, category)
		}
	}
	return out
}

func newDelta(base, reference EvaluatorType, baseScore, refScore, threshold float64) Delta {
	diff := Round2(refScore - baseScore)
	delta := Delta{
		Base:       baseScore,
		Reference:  refScore,
		Difference: diff,
	}
	switch {
	case diff > 0:
		delta.Direction = DirectionHigher
		delta.Label = string(reference) + "_higher"
	case diff < 0:
		delta.Direction = DirectionLower
		delta.Label = string(base) + "_higher"
	default:
		delta.Direction = DirectionEqual
		delta.Label = string(DirectionEqual)
	}
	delta.Significant = threshold > 0 && math.Abs(diff) >= threshold
	return delta
}
