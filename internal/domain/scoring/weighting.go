package scoring

import (
	"fmt"
	"math"
)

// SimpleWeights combine the three evaluator scores directly. Values are
// fractions in [0,1] and must sum to 1.
type SimpleWeights struct {
	Self   float64 `json:"self"`
	Leader float64 `json:"leader"`
	Boss   float64 `json:"boss"`
}

// TwoTierWeights first blend self and leader (SelfInTier/LeaderInTier), then
// blend that result with the boss score (EmployeeLeader/Boss). Each pair must
// sum to 1.
type TwoTierWeights struct {
	EmployeeLeader float64 `json:"employeeLeader"`
	Boss           float64 `json:"boss"`
	SelfInTier     float64 `json:"selfInTier"`
	LeaderInTier   float64 `json:"leaderInTier"`
}

type WeightConfig struct {
	Mode                   ScoringMode     `json:"scoringMode"`
	Simple                 *SimpleWeights  `json:"simple,omitempty"`
	TwoTier                *TwoTierWeights `json:"twoTier,omitempty"`
	BossEnabled            bool            `json:"bossEnabled"`
	BossOptional           bool            `json:"bossOptional"`
	RenormalizeWithoutBoss bool            `json:"renormalizeWithoutBoss"`
}

type EvaluatorScores struct {
	Self   float64  `json:"self"`
	Leader float64  `json:"leader"`
	Boss   *float64 `json:"boss,omitempty"`
}

func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Mode:        ModeSimpleWeighted,
		Simple:      &SimpleWeights{Self: 0.4, Leader: 0.6, Boss: 0},
		BossEnabled: false,
	}
}

func (c WeightConfig) Validate() error {
	switch c.Mode {
	case ModeSimpleWeighted:
		if c.Simple == nil {
			return fmt.Errorf("%w: %s", ErrMissingWeights, c.Mode)
		}
		w := c.Simple
		if err := fractionsSumToOne("self+leader+boss", w.Self, w.Leader, w.Boss); err != nil {
			return err
		}
	case ModeTwoTierWeighted:
		if c.TwoTier == nil {
			return fmt.Errorf("%w: %s", ErrMissingWeights, c.Mode)
		}
		w := c.TwoTier
		if err := fractionsSumToOne("employeeLeader+boss", w.EmployeeLeader, w.Boss); err != nil {
			return err
		}
		if err := fractionsSumToOne("selfInTier+leaderInTier", w.SelfInTier, w.LeaderInTier); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}
	return nil
}

// Final combines evaluator-level scores into the final score. The
// configuration is validated on every call.
func (c WeightConfig) Final(scores EvaluatorScores) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	for _, score := range []float64{scores.Self, scores.Leader} {
		if score < MinScore || score > MaxScore {
			return 0, fmt.Errorf("%w: %v", ErrScoreOutOfRange, score)
		}
	}
	hasBoss := scores.Boss != nil && c.BossEnabled
	if scores.Boss != nil && (*scores.Boss < MinScore || *scores.Boss > MaxScore) {
		return 0, fmt.Errorf("%w: %v", ErrScoreOutOfRange, *scores.Boss)
	}
	if c.BossEnabled && !c.BossOptional && scores.Boss == nil {
		return 0, ErrBossScoreRequired
	}

	// Validated weights sum to 1 only within FractionTolerance; each blend is
	// divided by its real weight sum so the final score stays in range.
	switch c.Mode {
	case ModeTwoTierWeighted:
		w := c.TwoTier
		employeeLeader := weightedMean(scores.Self*w.SelfInTier+scores.Leader*w.LeaderInTier, w.SelfInTier+w.LeaderInTier)
		if hasBoss {
			return weightedMean(employeeLeader*w.EmployeeLeader+*scores.Boss*w.Boss, w.EmployeeLeader+w.Boss), nil
		}
		if c.RenormalizeWithoutBoss {
			return employeeLeader, nil
		}
		return weightedMean(employeeLeader*w.EmployeeLeader, w.EmployeeLeader+w.Boss), nil
	default:
		w := c.Simple
		final := scores.Self*w.Self + scores.Leader*w.Leader
		if hasBoss {
			return weightedMean(final+*scores.Boss*w.Boss, w.Self+w.Leader+w.Boss), nil
		}
		if c.RenormalizeWithoutBoss {
			return weightedMean(final, w.Self+w.Leader), nil
		}
		return weightedMean(final, w.Self+w.Leader+w.Boss), nil
	}
}

// weightedMean divides a weighted sum by its weight sum. A zero weight sum
// yields 0.
func weightedMean(sum, weights float64) float64 {
	if weights == 0 {
		return 0
	}
	return clampScore(sum / weights)
}

func fractionsSumToOne(label string, weights ...float64) error {
	var sum float64
	for _, weight := range weights {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("%w: %s has %v", ErrWeightOutOfRange, label, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1) > FractionTolerance {
		return fmt.Errorf("%w: %s sums to %v%%", ErrWeightSum, label, Round2(sum*100))
	}
	return nil
}
