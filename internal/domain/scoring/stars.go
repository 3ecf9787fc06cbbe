package scoring

import (
	"fmt"
	"strconv"
)

// StarMapping maps a stringified star value ("1".."5") to a score.
type StarMapping map[string]float64

var TraditionalStarMapping = StarMapping{
	"5": 95,
	"4": 85,
	"3": 75,
	"2": 65,
	"1": 50,
}

const (
	MinStars = 1
	MaxStars = 5
)

// StarToScore converts a star rating using mapping. A rating with no entry in
// the mapping is an error rather than a zero score.
func StarToScore(stars int, mapping StarMapping) (float64, error) {
	if stars < MinStars || stars > MaxStars {
		return 0, fmt.Errorf("%w: got %d", ErrStarOutOfRange, stars)
	}
	score, ok := mapping[strconv.Itoa(stars)]
	if !ok {
		return 0, fmt.Errorf("%w: %d stars", ErrStarMappingMissing, stars)
	}
	return score, nil
}

// LenientStarToScore returns mapping[stars] or 0 when the entry is absent.
func LenientStarToScore(stars int, mapping StarMapping) float64 {
	return mapping[strconv.Itoa(stars)]
}

func (m StarMapping) Validate() error {
	for key, score := range m {
		stars, err := strconv.Atoi(key)
		if err != nil || stars < MinStars || stars > MaxStars {
			return fmt.Errorf("%w: key %q", ErrStarOutOfRange, key)
		}
		if score < MinScore || score > MaxScore {
			return fmt.Errorf("%w: %d stars maps to %v", ErrScoreOutOfRange, stars, score)
		}
	}
	return nil
}

// Complete reports whether every star value from 1 to 5 has a mapped score.
func (m StarMapping) Complete() bool {
	for stars := MinStars; stars <= MaxStars; stars++ {
		if _, ok := m[strconv.Itoa(stars)]; !ok {
			return false
		}
	}
	return true
}
