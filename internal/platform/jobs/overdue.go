package jobs

import (
	"context"
	"fmt"
	"time"

	"okr/internal/domain/notifications"
	"okr/internal/domain/performance"
)

const JobOverdueSweep = "overdue_review_sweep"

type OverdueSource interface {
	OverdueTasks(ctx context.Context, now time.Time) ([]performance.ReviewTask, error)
}

type Notifier interface {
	Create(ctx context.Context, msg notifications.Message) (bool, error)
}

// OverdueSweep reminds evaluators of overdue review tasks. Reminders carry a
// per-day dedupe key, so repeated sweeps on the same day notify once. Boss
// tasks without an assigned evaluator are counted but not notified.
type OverdueSweep struct {
	Tasks    OverdueSource
	Notifier Notifier
	Now      func() time.Time
	// Sent is called with the number of reminders delivered per run.
	Sent func(int)
}

type SweepResult struct {
	Overdue     int `json:"overdue"`
	Reminded    int `json:"reminded"`
	// AlreadySent counts tasks whose reminder for today exists.
	AlreadySent int `json:"alreadySent"`
	Unassigned  int `json:"unassigned"`
	Failed      int `json:"failed"`
}

func (o OverdueSweep) Run(ctx context.Context) (any, error) {
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}
	tasks, err := o.Tasks.OverdueTasks(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Overdue: len(tasks)}
	for _, task := range tasks {
		if task.EvaluatorID == "" {
			result.Unassigned++
			continue
		}
		msg := notifications.Message{
			TenantID:  task.TenantID,
			UserID:    task.EvaluatorID,
			Type:      notifications.TypeReviewOverdue,
			Title:     "Review overdue",
			Body:      fmt.Sprintf("Your %s review in %q was due %s.", task.EvaluatorType, task.AssessmentName, task.Deadline.Format("2006-01-02")),
			DedupeKey: notifications.OverdueKey(task.AssessmentID, task.EvaluateeID, string(task.EvaluatorType), now),
		}
		created, err := o.Notifier.Create(ctx, msg)
		switch {
		case err != nil:
			result.Failed++
		case created:
			result.Reminded++
		default:
			result.AlreadySent++
		}
	}
	if o.Sent != nil {
		o.Sent(result.Reminded)
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%d overdue reminders failed", result.Failed)
	}
	return result, nil
}

func (o OverdueSweep) Sweep() Sweep {
	return Sweep{Type: JobOverdueSweep, Run: o.Run}
}
