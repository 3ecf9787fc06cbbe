package performance

import (
	"fmt"
	"time"

	"okr/internal/domain/scoring"
)

// Evaluation is implemented by SelfEvaluation, LeaderEvaluation and
// BossEvaluation. Every variant carries its category breakdown.
type Evaluation interface {
	Header() RecordHeader
	Breakdown() []scoring.CategoryScore
	Evaluator() scoring.EvaluatorType
	sealed()
}

type RecordHeader struct {
	ID           string
	AssessmentID string
	EvaluateeID  string
	EvaluatorID  string
	Status       scoring.RecordStatus
	Overall      float64
	SubmittedAt  *time.Time
}

type SelfEvaluation struct {
	RecordHeader
	Categories []scoring.CategoryScore
}

type LeaderEvaluation struct {
	RecordHeader
	Categories []scoring.CategoryScore
	Feedback   string
}

// BossEvaluation holds the star ratings it was derived from when the boss
// used a star mode. Stars is empty for full mode.
type BossEvaluation struct {
	RecordHeader
	Categories []scoring.CategoryScore
	Stars      map[string]int
	Feedback   string
}

func (e SelfEvaluation) Header() RecordHeader { return e.RecordHeader }
func (e SelfEvaluation) Breakdown() []scoring.CategoryScore { return e.Categories }
func (e SelfEvaluation) Evaluator() scoring.EvaluatorType { return scoring.EvaluatorSelf }
func (SelfEvaluation) sealed() {}
func (e LeaderEvaluation) Header() RecordHeader { return e.RecordHeader }
func (e LeaderEvaluation) Breakdown() []scoring.CategoryScore { return e.Categories }
func (e LeaderEvaluation) Evaluator() scoring.EvaluatorType { return scoring.EvaluatorLeader }
func (LeaderEvaluation) sealed() {}
func (e BossEvaluation) Header() RecordHeader { return e.RecordHeader }
func (e BossEvaluation) Breakdown() []scoring.CategoryScore { return e.Categories }
func (e BossEvaluation) Evaluator() scoring.EvaluatorType { return scoring.EvaluatorBoss }
func (BossEvaluation) sealed() {}

func (r EvaluationRecord) header() RecordHeader {
	return RecordHeader{
		ID:           r.ID,
		AssessmentID: r.AssessmentID,
		EvaluateeID:  r.EvaluateeID,
		EvaluatorID:  r.EvaluatorID,
		Status:       r.Status,
		Overall:      r.Overall,
		SubmittedAt:  r.SubmittedAt,
	}
}

// Typed converts a stored record into its Evaluation variant.
func (r EvaluationRecord) Typed() (Evaluation, error) {
	switch r.EvaluatorType {
	case scoring.EvaluatorSelf:
		return SelfEvaluation{RecordHeader: r.header(), Categories: r.Categories}, nil
	case scoring.EvaluatorLeader:
		return LeaderEvaluation{RecordHeader: r.header(), Categories: r.Categories, Feedback: r.Feedback}, nil
	case scoring.EvaluatorBoss:
		return BossEvaluation{RecordHeader: r.header(), Categories: r.Categories, Stars: r.Stars, Feedback: r.Feedback}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidEvaluator, r.EvaluatorType)
}

// EvaluationSet groups the submitted evaluations of one evaluatee.
type EvaluationSet struct {
	Self   *SelfEvaluation
	Leader *LeaderEvaluation
	Boss   *BossEvaluation
}

// NewEvaluationSet keeps submitted and completed records only. Drafts never
// contribute to results.
func NewEvaluationSet(records []EvaluationRecord) (EvaluationSet, error) {
	var set EvaluationSet
	for _, record := range records {
		if !record.Submitted() {
			continue
		}
		typed, err := record.Typed()
		if err != nil {
			return EvaluationSet{}, err
		}
		switch e := typed.(type) {
		case SelfEvaluation:
			set.Self = &e
		case LeaderEvaluation:
			set.Leader = &e
		case BossEvaluation:
			set.Boss = &e
		}
	}
	return set, nil
}

func (s EvaluationSet) Get(evaluator scoring.EvaluatorType) Evaluation {
	switch evaluator {
	case scoring.EvaluatorSelf:
		if s.Self != nil {
			return *s.Self
		}
	case scoring.EvaluatorLeader:
		if s.Leader != nil {
			return *s.Leader
		}
	case scoring.EvaluatorBoss:
		if s.Boss != nil {
			return *s.Boss
		}
	}
	return nil
}

func overallOf(e Evaluation) *float64 {
	if e == nil {
		return nil
	}
	overall := e.Header().Overall
	return &overall
}

func breakdownOf(e Evaluation) []scoring.CategoryScore {
	if e == nil {
		return nil
	}
	return e.Breakdown()
}
