package scoring

import (
	"fmt"
	"math"
)

type ItemScore struct {
	ItemID  string  `json:"itemId"`
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

type CategoryScore struct {
	CategoryID string      `json:"categoryId"`
	Name       string      `json:"name"`
	Weight     float64     `json:"weight"`
	Score      float64     `json:"score"`
	Items      []ItemScore `json:"items"`
}

func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}

// ValidatePercentWeights checks that sibling weights lie in [0,100] and sum to 100.
func ValidatePercentWeights(weights []float64) error {
	var sum float64
	for _, weight := range weights {
		if weight < 0 || weight > 100 {
			return fmt.Errorf("%w: %v", ErrWeightOutOfRange, weight)
		}
		sum += weight
	}
	if math.Abs(sum-100) > PercentTolerance {
		return fmt.Errorf("%w: got %v", ErrWeightSum, Round2(sum))
	}
	return nil
}

// RollupCategory aggregates item scores into a category score. Items all
// carrying weight 0 are averaged; otherwise the weights must sum to 100 and
// the weighted mean is returned.
func RollupCategory(items []ItemScore) (float64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	weighted := false
	scores := make([]float64, 0, len(items))
	weights := make([]float64, 0, len(items))
	for _, item := range items {
		if item.Score < MinScore || item.Score > MaxScore {
			return 0, fmt.Errorf("%w: item %s scored %v", ErrScoreOutOfRange, item.ItemID, item.Score)
		}
		if item.Weight != 0 {
			weighted = true
		}
		scores = append(scores, item.Score)
		weights = append(weights, item.Weight)
	}

	if !weighted {
		return Average(scores), nil
	}
	if err := ValidatePercentWeights(weights); err != nil {
		return 0, err
	}

	// Weights only sum to 100 within PercentTolerance, so divide by the real
	// sum to keep the result inside the item score range.
	var total, weightSum float64
	for i, score := range scores {
		total += score * weights[i]
		weightSum += weights[i]
	}
	return clampScore(total / weightSum), nil
}

func clampScore(v float64) float64 {
	return math.Min(MaxScore, math.Max(MinScore, v))
}

// TotalScore combines category scores into an evaluator-level score.
// Categories scoring 0 are treated as not yet filled in and leave both the
// numerator and the weight denominator untouched.
func TotalScore(categories []CategoryScore) (float64, error) {
	var numerator, denominator, declared float64
	for _, category := range categories {
		if category.Weight < 0 || category.Weight > 100 {
			return 0, fmt.Errorf("%w: category %s weight %v", ErrWeightOutOfRange, category.CategoryID, category.Weight)
		}
		if category.Score < MinScore || category.Score > MaxScore {
			return 0, fmt.Errorf("%w: category %s scored %v", ErrScoreOutOfRange, category.CategoryID, category.Score)
		}
		declared += category.Weight
		if category.Score == 0 {
			continue
		}
		numerator += category.Score * category.Weight
		denominator += category.Weight
	}
	if declared > 100+PercentTolerance {
		return 0, fmt.Errorf("%w: categories declare %v", ErrWeightSum, Round2(declared))
	}
	if denominator == 0 {
		return 0, nil
	}
	return clampScore(numerator / denominator), nil
}

// Rollup recomputes every category score from its items and returns the
// categories alongside the evaluator-level total.
func Rollup(categories []CategoryScore) ([]CategoryScore, float64, error) {
	out := make([]CategoryScore, len(categories))
	for i, category := range categories {
		score, err := RollupCategory(category.Items)
		if err != nil {
			return nil, 0, fmt.Errorf("category %s: %w", category.CategoryID, err)
		}
		category.Score = score
		category.Items = append([]ItemScore(nil), category.Items...)
		out[i] = category
	}
	total, err := TotalScore(out)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Round2 rounds a score to two decimals.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
