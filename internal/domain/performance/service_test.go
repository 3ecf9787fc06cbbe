package performance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"okr/internal/domain/auth"
	"okr/internal/domain/scoring"
)

const tenant = "t1"

var (
	employee = Actor{UserID: "emp", TenantID: tenant, Role: auth.RoleEmployee}
	leader   = Actor{UserID: "lead", TenantID: tenant, Role: auth.RoleLeader}
	boss     = Actor{UserID: "boss", TenantID: tenant, Role: auth.RoleBoss}
)

func okrTemplate(weights scoring.WeightConfig) Template {
	stars := scoring.StarMapping{"1": 40, "2": 55, "3": 70, "4": 85, "5": 100}
	return Template{
		ID:      "tpl",
		Name:    "Quarterly",
		Weights: weights,
		Categories: []TemplateCategory{
			{ID: "work", Name: "Work", Weight: 60, StarMapping: stars, Items: []TemplateItem{{ID: "w1", Name: "Delivery", Weight: 100}}},
			{ID: "daily", Name: "Daily", Weight: 30, StarMapping: stars, Items: []TemplateItem{{ID: "d1", Name: "Attendance", Weight: 100}}},
			{ID: "lead", Name: "LeaderOnly", Weight: 10, LeaderOnly: true, StarMapping: stars, Items: []TemplateItem{{ID: "l1", Name: "Potential", Weight: 100}}},
		},
	}
}

func setup(t *testing.T, weights scoring.WeightConfig, mode BossMode) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.templates["tpl"] = okrTemplate(weights)
	store.assessments["asm"] = Assessment{
		ID:         "asm",
		TenantID:   tenant,
		Name:       "Q2",
		TemplateID: "tpl",
		Deadline:   fixedNow.Add(48 * time.Hour),
		Status:     AssessmentStatusActive,
		BossMode:   mode,
	}
	store.participants["asm"] = []Participant{{AssessmentID: "asm", EmployeeID: "emp", LeaderID: "lead"}}
	svc := NewService(store, fakeDirectory{"emp": "lead"})
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func input(evaluator scoring.EvaluatorType, scores map[string]float64, feedback string) EvaluationInput {
	items := map[string]string{"work": "w1", "daily": "d1", "lead": "l1"}
	in := EvaluationInput{AssessmentID: "asm", EvaluateeID: "emp", EvaluatorType: evaluator, Feedback: feedback}
	for _, category := range []string{"work", "daily", "lead"} {
		score, ok := scores[category]
		if !ok {
			continue
		}
		in.Categories = append(in.Categories, CategoryInput{CategoryID: category, Items: []ItemInput{{ItemID: items[category], Score: score}}})
	}
	return in
}

func TestSubmitAndFinalScoreScenario(t *testing.T) {
	svc, _ := setup(t, scoring.DefaultWeightConfig(), BossModeFull)
	ctx := context.Background()

	self, err := svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80}, ""))
	require.NoError(t, err)
	require.InDelta(t, 83.33, self.Overall, 0.001)
	require.Equal(t, scoring.RecordStatusSubmitted, self.Status)
	require.NotNil(t, self.SubmittedAt)
	require.Len(t, self.Categories, 2)

	lead, err := svc.Submit(ctx, leader, input(scoring.EvaluatorLeader, map[string]float64{"work": 90, "daily": 82, "lead": 92}, "solid quarter"))
	require.NoError(t, err)
	require.InDelta(t, 87.8, lead.Overall, 0.001)

	final, err := svc.FinalScore(ctx, employee, "asm", "emp")
	require.NoError(t, err)
	require.True(t, final.Complete)
	require.NotNil(t, final.Final)
	require.InDelta(t, 86.01, *final.Final, 0.001)
	require.Nil(t, final.Boss)

	cmp, err := svc.Compare(ctx, leader, "asm", "emp", scoring.EvaluatorSelf, scoring.EvaluatorLeader)
	require.NoError(t, err)
	require.NotNil(t, cmp.Overall)
	require.InDelta(t, 4.47, cmp.Overall.Difference, 0.001)
	require.Equal(t, "leader_higher", cmp.Overall.Label)
	require.Len(t, cmp.Categories, 2)
	require.True(t, cmp.Categories[0].Significant)
	require.False(t, cmp.Categories[1].Significant)
}

func TestFinalScoreIncompleteWithoutLeader(t *testing.T) {
	svc, _ := setup(t, scoring.DefaultWeightConfig(), BossModeFull)
	ctx := context.Background()

	_, err := svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80}, ""))
	require.NoError(t, err)

	final, err := svc.FinalScore(ctx, employee, "asm", "emp")
	require.NoError(t, err)
	require.False(t, final.Complete)
	require.Nil(t, final.Final)
	require.NotNil(t, final.Self)
}

func TestSubmitRules(t *testing.T) {
	svc, _ := setup(t, scoring.DefaultWeightConfig(), BossModeFull)
	ctx := context.Background()

	_, err := svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80, "lead": 90}, ""))
	require.True(t, errors.Is(err, ErrLeaderOnlyCategory))

	_, err = svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85}, ""))
	require.True(t, errors.Is(err, ErrIncomplete))

	_, err = svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 120, "daily": 80}, ""))
	require.True(t, errors.Is(err, scoring.ErrScoreOutOfRange))

	_, err = svc.Submit(ctx, leader, input(scoring.EvaluatorLeader, map[string]float64{"work": 90, "daily": 82, "lead": 92}, "  "))
	require.True(t, errors.Is(err, ErrFeedbackRequired))

	_, err = svc.Submit(ctx, employee, input(scoring.EvaluatorLeader, map[string]float64{"work": 90, "daily": 82, "lead": 92}, "me"))
	require.True(t, errors.Is(err, ErrForbidden))

	unknown := input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80}, "")
	unknown.Categories = append(unknown.Categories, CategoryInput{CategoryID: "ghost"})
	_, err = svc.Submit(ctx, employee, unknown)
	require.True(t, errors.Is(err, ErrUnknownCategory))

	_, err = svc.Submit(ctx, boss, input(scoring.EvaluatorBoss, map[string]float64{"work": 90, "daily": 82, "lead": 92}, ""))
	require.True(t, errors.Is(err, ErrBossDisabled))
}

func TestDraftThenSubmitThenImmutable(t *testing.T) {
	svc, store := setup(t, scoring.DefaultWeightConfig(), BossModeFull)
	ctx := context.Background()

	draft, err := svc.SaveDraft(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 70}, ""))
	require.NoError(t, err)
	require.Equal(t, scoring.RecordStatusDraft, draft.Status)
	require.InDelta(t, 70, draft.Overall, 0.001)
	require.Nil(t, draft.SubmittedAt)

	// Drafts stay private to their author.
	visible, err := svc.GetRecords(ctx, leader, "asm", "emp")
	require.NoError(t, err)
	require.Empty(t, visible)

	submitted, err := svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80}, ""))
	require.NoError(t, err)
	require.Equal(t, draft.ID, submitted.ID)
	require.Len(t, store.records, 1)

	_, err = svc.SaveDraft(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 10}, ""))
	require.True(t, errors.Is(err, ErrRecordSubmitted))

	visible, err = svc.GetRecords(ctx, leader, "asm", "emp")
	require.NoError(t, err)
	require.Len(t, visible, 1)

	_, err = svc.GetRecords(ctx, Actor{UserID: "stranger", TenantID: tenant, Role: auth.RoleEmployee}, "asm", "emp")
	require.True(t, errors.Is(err, ErrForbidden))
}

func TestCloseAssessmentCompletesRecordsAndBlocksInput(t *testing.T) {
	svc, store := setup(t, scoring.DefaultWeightConfig(), BossModeFull)
	ctx := context.Background()

	_, err := svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80}, ""))
	require.NoError(t, err)
	require.NoError(t, svc.CloseAssessment(ctx, tenant, "asm"))

	for _, record := range store.records {
		require.Equal(t, scoring.RecordStatusCompleted, record.Status)
	}
	_, err = svc.SaveDraft(ctx, leader, input(scoring.EvaluatorLeader, map[string]float64{"work": 90}, ""))
	require.True(t, errors.Is(err, ErrAssessmentClosed))
	require.True(t, errors.Is(svc.CloseAssessment(ctx, tenant, "asm"), ErrAssessmentClosed))
}

func bossWeights() scoring.WeightConfig {
	return scoring.WeightConfig{
		Mode:        scoring.ModeSimpleWeighted,
		Simple:      &scoring.SimpleWeights{Self: 0.3, Leader: 0.5, Boss: 0.2},
		BossEnabled: true,
	}
}

func TestSubmitBossSimplified(t *testing.T) {
	svc, _ := setup(t, bossWeights(), BossModeSimplified)
	ctx := context.Background()

	_, err := svc.SubmitBossSimplified(ctx, boss, BossStarsInput{AssessmentID: "asm", EvaluateeID: "emp", Stars: map[string]int{"work": 4, "daily": 5}})
	require.True(t, errors.Is(err, ErrIncomplete))

	_, err = svc.SubmitBossSimplified(ctx, boss, BossStarsInput{AssessmentID: "asm", EvaluateeID: "emp", Stars: map[string]int{"work": 4, "daily": 5, "lead": 6}})
	require.True(t, errors.Is(err, scoring.ErrStarOutOfRange))

	_, err = svc.SubmitBossSimplified(ctx, leader, BossStarsInput{AssessmentID: "asm", EvaluateeID: "emp", Stars: map[string]int{"work": 4, "daily": 5, "lead": 3}})
	require.True(t, errors.Is(err, ErrForbidden))

	record, err := svc.SubmitBossSimplified(ctx, boss, BossStarsInput{AssessmentID: "asm", EvaluateeID: "emp", Stars: map[string]int{"work": 4, "daily": 5, "lead": 3}})
	require.NoError(t, err)
	require.InDelta(t, 88, record.Overall, 0.001)
	require.Equal(t, 3, record.Stars["lead"])

	_, err = svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80}, ""))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, leader, input(scoring.EvaluatorLeader, map[string]float64{"work": 90, "daily": 82, "lead": 92}, "ok"))
	require.NoError(t, err)

	final, err := svc.FinalScore(ctx, boss, "asm", "emp")
	require.NoError(t, err)
	require.True(t, final.Complete)
	// 83.33*0.3 + 87.8*0.5 + 88*0.2
	require.InDelta(t, 86.5, *final.Final, 0.001)

	typed, err := EvaluationRecord{EvaluatorType: scoring.EvaluatorBoss, Stars: record.Stars}.Typed()
	require.NoError(t, err)
	bossEval, ok := typed.(BossEvaluation)
	require.True(t, ok)
	require.Equal(t, record.Stars, bossEval.Stars)
}

func TestSubmitBossSimplifiedMissingMappingFails(t *testing.T) {
	svc, store := setup(t, bossWeights(), BossModeSimplified)
	tpl := store.templates["tpl"]
	tpl.Categories[1].StarMapping = scoring.StarMapping{"1": 40, "2": 55, "3": 70, "4": 85}
	store.templates["tpl"] = tpl

	_, err := svc.SubmitBossSimplified(context.Background(), boss, BossStarsInput{AssessmentID: "asm", EvaluateeID: "emp", Stars: map[string]int{"work": 4, "daily": 5, "lead": 3}})
	require.True(t, errors.Is(err, scoring.ErrStarMappingMissing))
}

func TestBossModeMismatch(t *testing.T) {
	svc, _ := setup(t, bossWeights(), BossModeTraditional)
	ctx := context.Background()

	_, err := svc.Submit(ctx, boss, input(scoring.EvaluatorBoss, map[string]float64{"work": 90, "daily": 82, "lead": 92}, ""))
	require.True(t, errors.Is(err, ErrBossModeMismatch))

	record, err := svc.SubmitBossSimplified(ctx, boss, BossStarsInput{AssessmentID: "asm", EvaluateeID: "emp", Stars: map[string]int{"work": 5, "daily": 5, "lead": 5}})
	require.NoError(t, err)
	require.InDelta(t, 95, record.Overall, 0.001)
}

func TestListTasksAndOverdue(t *testing.T) {
	svc, store := setup(t, bossWeights(), BossModeFull)
	ctx := context.Background()

	_, err := svc.SaveDraft(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 60}, ""))
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx, employee)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, scoring.TaskInProgress, tasks[0].State.Status)
	require.False(t, tasks[0].State.Overdue)

	tasks, err = svc.ListTasks(ctx, leader)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, scoring.EvaluatorLeader, tasks[0].EvaluatorType)
	require.Equal(t, scoring.TaskPending, tasks[0].State.Status)

	tasks, err = svc.ListTasks(ctx, boss)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, scoring.EvaluatorBoss, tasks[0].EvaluatorType)

	overdue, err := svc.OverdueTasks(ctx, fixedNow.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, overdue, 3)
	for _, task := range overdue {
		require.Equal(t, tenant, task.TenantID)
	}

	_, err = svc.Submit(ctx, employee, input(scoring.EvaluatorSelf, map[string]float64{"work": 85, "daily": 80}, ""))
	require.NoError(t, err)
	overdue, err = svc.OverdueTasks(ctx, fixedNow.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	require.Len(t, store.records, 1)
}

func TestCreateTemplateValidates(t *testing.T) {
	svc := NewService(newFakeStore(), fakeDirectory{})
	ctx := context.Background()

	bad := okrTemplate(scoring.DefaultWeightConfig())
	bad.Categories[0].Weight = 50
	bad.Categories[1].Items = append(bad.Categories[1].Items, TemplateItem{ID: "d2", Name: "Extra", Weight: 10})
	_, err := svc.CreateTemplate(ctx, tenant, bad)
	require.True(t, errors.Is(err, ErrInvalidTemplate))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 2)

	good := okrTemplate(scoring.DefaultWeightConfig())
	good.Categories[0].ID = ""
	good.Categories[0].Items[0].ID = ""
	id, err := svc.CreateTemplate(ctx, tenant, good)
	require.NoError(t, err)
	stored, err := svc.GetTemplate(ctx, tenant, id)
	require.NoError(t, err)
	require.NotEmpty(t, stored.Categories[0].ID)
	require.NotEmpty(t, stored.Categories[0].Items[0].ID)
}

func TestTemplateInUseIsFrozen(t *testing.T) {
	store := newFakeStore()
	store.templates["tpl"] = okrTemplate(scoring.DefaultWeightConfig())
	store.inUse["tpl"] = true
	svc := NewService(store, fakeDirectory{})

	require.True(t, errors.Is(svc.DeleteTemplate(context.Background(), tenant, "tpl"), ErrTemplateInUse))
	require.True(t, errors.Is(svc.UpdateTemplate(context.Background(), tenant, okrTemplate(scoring.DefaultWeightConfig())), ErrTemplateInUse))
}

func TestCreateAssessmentAssignsLeaders(t *testing.T) {
	store := newFakeStore()
	store.templates["tpl"] = okrTemplate(scoring.DefaultWeightConfig())
	svc := NewService(store, fakeDirectory{"e1": "l1", "e2": "l2"})
	ctx := context.Background()

	id, err := svc.CreateAssessment(ctx, tenant, NewAssessment{
		Name:           "Q3",
		TemplateID:     "tpl",
		Deadline:       fixedNow,
		ParticipantIDs: []string{"e1", "e2", "e1", ""},
	})
	require.NoError(t, err)

	got, err := svc.GetAssessment(ctx, tenant, id)
	require.NoError(t, err)
	require.Equal(t, AssessmentStatusActive, got.Status)
	require.Equal(t, BossModeFull, got.BossMode)
	require.Equal(t, []string{"e1", "e2"}, got.ParticipantIDs)
	require.Equal(t, "l2", store.participants[id][1].LeaderID)

	_, err = svc.CreateAssessment(ctx, tenant, NewAssessment{Name: "", TemplateID: "tpl"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 3)
}

func TestCreateAssessmentSimplifiedNeedsMappings(t *testing.T) {
	store := newFakeStore()
	tpl := okrTemplate(scoring.DefaultWeightConfig())
	tpl.Categories[2].StarMapping = nil
	store.templates["tpl"] = tpl
	svc := NewService(store, fakeDirectory{})

	_, err := svc.CreateAssessment(context.Background(), tenant, NewAssessment{
		Name:           "Q3",
		TemplateID:     "tpl",
		Deadline:       fixedNow,
		BossMode:       BossModeSimplified,
		ParticipantIDs: []string{"e1"},
	})
	require.True(t, errors.Is(err, ErrInvalidAssessment))
}
