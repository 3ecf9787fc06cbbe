package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"okr/internal/domain/auth"
	"okr/internal/domain/scoring"
)

// Compare diffs the reference evaluator against the base evaluator for one
// evaluatee. A missing or unsubmitted side yields an empty comparison.
func (s *Service) Compare(ctx context.Context, actor Actor, assessmentID, evaluateeID string, base, reference scoring.EvaluatorType) (scoring.Comparison, error) {
	if !base.Valid() || !reference.Valid() || base == reference {
		return scoring.Comparison{}, fmt.Errorf("%w: %s vs %s", ErrInvalidEvaluator, base, reference)
	}
	if _, err := s.participant(ctx, actor, assessmentID, evaluateeID); err != nil {
		return scoring.Comparison{}, err
	}
	records, err := s.store.ListRecords(ctx, actor.TenantID, assessmentID, evaluateeID)
	if err != nil {
		return scoring.Comparison{}, err
	}
	set, err := NewEvaluationSet(records)
	if err != nil {
		return scoring.Comparison{}, err
	}
	baseEval, refEval := set.Get(base), set.Get(reference)
	return scoring.Compare(base, reference, overallOf(baseEval), overallOf(refEval), breakdownOf(baseEval), breakdownOf(refEval), scoring.DefaultThresholds()), nil
}

func (s *Service) FinalScore(ctx context.Context, actor Actor, assessmentID, evaluateeID string) (FinalScore, error) {
	if _, err := s.participant(ctx, actor, assessmentID, evaluateeID); err != nil {
		return FinalScore{}, err
	}
	assessment, err := s.store.GetAssessment(ctx, actor.TenantID, assessmentID)
	if err != nil {
		return FinalScore{}, err
	}
	tpl, err := s.store.GetTemplate(ctx, actor.TenantID, assessment.TemplateID)
	if err != nil {
		return FinalScore{}, err
	}
	records, err := s.store.ListRecords(ctx, actor.TenantID, assessmentID, evaluateeID)
	if err != nil {
		return FinalScore{}, err
	}
	set, err := NewEvaluationSet(records)
	if err != nil {
		return FinalScore{}, err
	}
	return computeFinal(assessmentID, evaluateeID, tpl.Weights, set)
}

// FinalScores computes the final score of every participant of an assessment.
func (s *Service) FinalScores(ctx context.Context, tenantID, assessmentID string) ([]FinalScore, error) {
	assessment, err := s.store.GetAssessment(ctx, tenantID, assessmentID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.store.GetTemplate(ctx, tenantID, assessment.TemplateID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, tenantID, assessmentID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, tenantID, assessmentID, "")
	if err != nil {
		return nil, err
	}
	byEvaluatee := map[string][]EvaluationRecord{}
	for _, record := range records {
		byEvaluatee[record.EvaluateeID] = append(byEvaluatee[record.EvaluateeID], record)
	}

	out := make([]FinalScore, 0, len(participants))
	for _, p := range participants {
		set, err := NewEvaluationSet(byEvaluatee[p.EmployeeID])
		if err != nil {
			return nil, err
		}
		score, err := computeFinal(assessmentID, p.EmployeeID, tpl.Weights, set)
		if err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, nil
}

// computeFinal leaves Final nil until self and leader are submitted and, when
// the boss is required, the boss too.
func computeFinal(assessmentID, employeeID string, weights scoring.WeightConfig, set EvaluationSet) (FinalScore, error) {
	score := FinalScore{
		AssessmentID: assessmentID,
		EmployeeID:   employeeID,
		Self:         overallOf(set.Get(scoring.EvaluatorSelf)),
		Leader:       overallOf(set.Get(scoring.EvaluatorLeader)),
		Boss:         overallOf(set.Get(scoring.EvaluatorBoss)),
		Mode:         weights.Mode,
	}
	if score.Self == nil || score.Leader == nil {
		return score, nil
	}
	final, err := weights.Final(scoring.EvaluatorScores{Self: *score.Self, Leader: *score.Leader, Boss: score.Boss})
	if errors.Is(err, scoring.ErrBossScoreRequired) {
		return score, nil
	}
	if err != nil {
		return score, err
	}
	final = scoring.Round2(final)
	score.Final = &final
	score.Complete = true
	return score, nil
}

// ListTasks returns the open-assessment tasks the actor is responsible for.
func (s *Service) ListTasks(ctx context.Context, actor Actor) ([]ReviewTask, error) {
	assessments, err := s.store.ListAssessments(ctx, actor.TenantID, AssessmentStatusActive)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []ReviewTask
	for _, assessment := range assessments {
		tasks, err := s.assessmentTasks(ctx, actor.TenantID, assessment, now)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			if ownsTask(actor, task) {
				out = append(out, task)
			}
		}
	}
	return out, nil
}

func ownsTask(actor Actor, task ReviewTask) bool {
	switch task.EvaluatorType {
	case scoring.EvaluatorSelf, scoring.EvaluatorLeader:
		return task.EvaluatorID == actor.UserID
	case scoring.EvaluatorBoss:
		return actor.Role == auth.RoleBoss
	}
	return false
}

// OverdueTasks scans every active assessment across tenants.
func (s *Service) OverdueTasks(ctx context.Context, now time.Time) ([]ReviewTask, error) {
	assessments, err := s.store.ListActiveAssessments(ctx)
	if err != nil {
		return nil, err
	}
	var out []ReviewTask
	for _, assessment := range assessments {
		tasks, err := s.assessmentTasks(ctx, assessment.TenantID, assessment, now)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			if task.State.Overdue {
				out = append(out, task)
			}
		}
	}
	return out, nil
}

func (s *Service) assessmentTasks(ctx context.Context, tenantID string, assessment Assessment, now time.Time) ([]ReviewTask, error) {
	tpl, err := s.store.GetTemplate(ctx, tenantID, assessment.TemplateID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, tenantID, assessment.ID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, tenantID, assessment.ID, "")
	if err != nil {
		return nil, err
	}
	tasks := buildTasks(assessment, tpl, participants, records, now)
	for i := range tasks {
		tasks[i].TenantID = tenantID
	}
	return tasks, nil
}

type taskKey struct {
	evaluatee string
	evaluator scoring.EvaluatorType
}

// buildTasks derives one task per participant and evaluator role. Boss tasks
// exist only when the template enables the boss evaluation.
func buildTasks(assessment Assessment, tpl Template, participants []Participant, records []EvaluationRecord, now time.Time) []ReviewTask {
	byKey := make(map[taskKey]EvaluationRecord, len(records))
	for _, record := range records {
		byKey[taskKey{record.EvaluateeID, record.EvaluatorType}] = record
	}

	task := func(p Participant, evaluator scoring.EvaluatorType, evaluatorID string) ReviewTask {
		var status *scoring.RecordStatus
		if record, ok := byKey[taskKey{p.EmployeeID, evaluator}]; ok {
			status = &record.Status
			if evaluatorID == "" {
				evaluatorID = record.EvaluatorID
			}
		}
		return ReviewTask{
			AssessmentID:   assessment.ID,
			AssessmentName: assessment.Name,
			EvaluateeID:    p.EmployeeID,
			EvaluatorID:    evaluatorID,
			EvaluatorType:  evaluator,
			Deadline:       assessment.Deadline,
			State:          scoring.DeriveTaskStatus(status, assessment.Deadline, now),
		}
	}

	var out []ReviewTask
	for _, p := range participants {
		out = append(out, task(p, scoring.EvaluatorSelf, p.EmployeeID))
		if p.LeaderID != "" {
			out = append(out, task(p, scoring.EvaluatorLeader, p.LeaderID))
		}
		if tpl.Weights.BossEnabled {
			out = append(out, task(p, scoring.EvaluatorBoss, ""))
		}
	}
	return out
}
