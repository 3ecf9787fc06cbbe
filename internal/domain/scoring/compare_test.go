package scoring

import (
	"reflect"
	"testing"
	"time"
)

func TestCompareSignConvention(t *testing.T) {
	cases := []struct {
		self, leader float64
		diff         float64
		label        string
		direction    Direction
	}{
		{self: 80, leader: 90, diff: 10, label: "leader_higher", direction: DirectionHigher},
		{self: 85, leader: 70, diff: -15, label: "self_higher", direction: DirectionLower},
		{self: 80, leader: 80, diff: 0, label: "equal", direction: DirectionEqual},
	}
	for _, tc := range cases {
		cmp := Compare(EvaluatorSelf, EvaluatorLeader, floatPtr(tc.self), floatPtr(tc.leader), nil, nil, DefaultThresholds())
		if cmp.Overall == nil {
			t.Fatal("expected overall delta")
		}
		if cmp.Overall.Difference != tc.diff || cmp.Overall.Label != tc.label || cmp.Overall.Direction != tc.direction {
			t.Fatalf("self %v leader %v: unexpected delta %+v", tc.self, tc.leader, *cmp.Overall)
		}
	}
}

func TestCompareSkipsOneSidedEntries(t *testing.T) {
	self := []CategoryScore{
		{CategoryID: "work", Name: "Work", Score: 80, Items: []ItemScore{
			{ItemID: "w1", Score: 70},
			{ItemID: "w2", Score: 90},
		}},
		{CategoryID: "daily", Score: 75},
	}
	leader := []CategoryScore{
		{CategoryID: "work", Name: "Work", Score: 86, Items: []ItemScore{
			{ItemID: "w1", Score: 85},
		}},
		{CategoryID: "leader-only", Score: 92},
	}
	cmp := Compare(EvaluatorSelf, EvaluatorLeader, nil, floatPtr(88), self, leader, DefaultThresholds())
	if cmp.Overall != nil {
		t.Fatal("overall delta should be absent when one side has no overall score")
	}
	if len(cmp.Categories) != 1 || cmp.Categories[0].CategoryID != "work" {
		t.Fatalf("expected only the shared category, got %+v", cmp.Categories)
	}
	work := cmp.Categories[0]
	if !work.Significant || work.Difference != 6 {
		t.Fatalf("expected significant +6 category delta, got %+v", work.Delta)
	}
	if len(work.Items) != 1 || work.Items[0].ItemID != "w1" {
		t.Fatalf("expected only shared item, got %+v", work.Items)
	}
	if !work.Items[0].Significant || work.Items[0].Difference != 15 {
		t.Fatalf("expected significant +15 item delta, got %+v", work.Items[0].Delta)
	}
	if got := cmp.SignificantCategories(); len(got) != 1 {
		t.Fatalf("expected one significant category, got %d", len(got))
	}
}

func TestCompareThresholdsAreInclusive(t *testing.T) {
	self := []CategoryScore{{CategoryID: "c", Score: 80, Items: []ItemScore{{ItemID: "i", Score: 80}}}}
	leader := []CategoryScore{{CategoryID: "c", Score: 84.99, Items: []ItemScore{{ItemID: "i", Score: 90}}}}
	cmp := Compare(EvaluatorSelf, EvaluatorLeader, nil, nil, self, leader, DefaultThresholds())
	if cmp.Categories[0].Significant {
		t.Fatal("4.99 should stay below the category threshold")
	}
	if !cmp.Categories[0].Items[0].Significant {
		t.Fatal("10 should reach the item threshold")
	}
}

func TestCompareLeaderVersusBossLabels(t *testing.T) {
	cmp := Compare(EvaluatorLeader, EvaluatorBoss, floatPtr(88), floatPtr(84), nil, nil, DefaultThresholds())
	if cmp.Overall.Label != "leader_higher" || cmp.Overall.Difference != -4 {
		t.Fatalf("unexpected leader/boss delta: %+v", *cmp.Overall)
	}
}

func TestCompareIsIdempotent(t *testing.T) {
	self := []CategoryScore{{CategoryID: "c", Score: 70, Items: []ItemScore{{ItemID: "i", Score: 70}}}}
	leader := []CategoryScore{{CategoryID: "c", Score: 77, Items: []ItemScore{{ItemID: "i", Score: 65}}}}
	first := Compare(EvaluatorSelf, EvaluatorLeader, floatPtr(70), floatPtr(77), self, leader, DefaultThresholds())
	second := Compare(EvaluatorSelf, EvaluatorLeader, floatPtr(70), floatPtr(77), self, leader, DefaultThresholds())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("comparison not idempotent:\n%+v\n%+v", first, second)
	}
	if self[0].Score != 70 || leader[0].Items[0].Score != 65 {
		t.Fatal("inputs were mutated")
	}
}

func TestDeriveTaskStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	draft := RecordStatusDraft
	submitted := RecordStatusSubmitted
	completed := RecordStatusCompleted

	cases := []struct {
		name     string
		record   *RecordStatus
		deadline time.Time
		want     TaskState
	}{
		{"no record", nil, future, TaskState{Status: TaskPending}},
		{"no record overdue", nil, past, TaskState{Status: TaskPending, Overdue: true}},
		{"draft", &draft, future, TaskState{Status: TaskInProgress}},
		{"draft overdue", &draft, past, TaskState{Status: TaskInProgress, Overdue: true}},
		{"submitted late", &submitted, past, TaskState{Status: TaskCompleted}},
		{"completed", &completed, future, TaskState{Status: TaskCompleted}},
		{"no deadline", nil, time.Time{}, TaskState{Status: TaskPending}},
	}
	for _, tc := range cases {
		if got := DeriveTaskStatus(tc.record, tc.deadline, now); got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}
