package scoring

type EvaluatorType string

const (
	EvaluatorSelf   EvaluatorType = "self"
	EvaluatorLeader EvaluatorType = "leader"
	EvaluatorBoss   EvaluatorType = "boss"
)

func (e EvaluatorType) Valid() bool {
	switch e {
	case EvaluatorSelf, EvaluatorLeader, EvaluatorBoss:
		return true
	}
	return false
}

type RecordStatus string

const (
	RecordStatusDraft     RecordStatus = "draft"
	RecordStatusSubmitted RecordStatus = "submitted"
	RecordStatusCompleted RecordStatus = "completed"
)

type ScoringMode string

const (
	ModeSimpleWeighted  ScoringMode = "simple_weighted"
	ModeTwoTierWeighted ScoringMode = "two_tier_weighted"
)

const (
	// PercentTolerance applies to sibling weights expressed as 0-100 percentages.
	PercentTolerance = 0.1
	// FractionTolerance applies to evaluator weights expressed as 0-1 fractions.
	FractionTolerance = 0.001

	MinScore = 0
	MaxScore = 100
)
