package dashboard

import (
	"context"
	"time"

	"okr/internal/domain/directory"
	"okr/internal/domain/performance"
	"okr/internal/domain/scoring"
)

type PerformanceSource interface {
	ListTasks(ctx context.Context, actor performance.Actor) ([]performance.ReviewTask, error)
	ListAssessments(ctx context.Context, tenantID, status string) ([]performance.Assessment, error)
	GetAssessment(ctx context.Context, tenantID, assessmentID string) (performance.Assessment, error)
	FinalScores(ctx context.Context, tenantID, assessmentID string) ([]performance.FinalScore, error)
}

type DirectorySource interface {
	GetUser(ctx context.Context, tenantID, userID string) (directory.User, error)
	Subordinates(ctx context.Context, tenantID, leaderID string) ([]directory.User, error)
}

type NotificationSource interface {
	UnreadCount(ctx context.Context, tenantID, userID string) (int, error)
}

type Service struct {
	performance   PerformanceSource
	directory     DirectorySource
	notifications NotificationSource
	timeout       time.Duration
}

func NewService(perf PerformanceSource, dir DirectorySource, notes NotificationSource, fetchTimeout time.Duration) *Service {
	return &Service{performance: perf, directory: dir, notifications: notes, timeout: fetchTimeout}
}

type TaskSummary struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

func summarizeTasks(tasks []performance.ReviewTask) TaskSummary {
	var summary TaskSummary
	for _, task := range tasks {
		switch task.State.Status {
		case scoring.TaskPending:
			summary.Pending++
		case scoring.TaskInProgress:
			summary.InProgress++
		case scoring.TaskCompleted:
			summary.Completed++
		}
		if task.State.Overdue {
			summary.Overdue++
		}
	}
	return summary
}

type EmployeeDashboard struct {
	Outcome     Outcome                          `json:"outcome"`
	Profile     Result[directory.User]           `json:"profile"`
	Tasks       Result[[]performance.ReviewTask] `json:"tasks"`
	Assessments Result[[]performance.Assessment] `json:"assessments"`
	Unread      Result[int]                      `json:"unreadNotifications"`
	Summary     *TaskSummary                     `json:"summary,omitempty"`
}

func (s *Service) Employee(ctx context.Context, actor performance.Actor) EmployeeDashboard {
	var out EmployeeDashboard
	f := newFanout(ctx, "employee", s.timeout)
	fetch(f, "profile", &out.Profile, func(ctx context.Context) (directory.User, error) {
		return s.directory.GetUser(ctx, actor.TenantID, actor.UserID)
	})
	fetch(f, "tasks", &out.Tasks, func(ctx context.Context) ([]performance.ReviewTask, error) {
		return s.performance.ListTasks(ctx, actor)
	})
	fetch(f, "assessments", &out.Assessments, func(ctx context.Context) ([]performance.Assessment, error) {
		return s.performance.ListAssessments(ctx, actor.TenantID, performance.AssessmentStatusActive)
	})
	fetch(f, "unread", &out.Unread, func(ctx context.Context) (int, error) {
		return s.notifications.UnreadCount(ctx, actor.TenantID, actor.UserID)
	})
	f.wait()

	if out.Tasks.OK() {
		summary := summarizeTasks(out.Tasks.Value)
		out.Summary = &summary
	}
	out.Outcome = classify(out.Profile, out.Tasks, out.Assessments, out.Unread)
	return out
}

type LeaderDashboard struct {
	Outcome     Outcome                          `json:"outcome"`
	Team        Result[[]directory.User]         `json:"team"`
	Tasks       Result[[]performance.ReviewTask] `json:"tasks"`
	Assessments Result[[]performance.Assessment] `json:"assessments"`
	Unread      Result[int]                      `json:"unreadNotifications"`
	Summary     *TaskSummary                     `json:"summary,omitempty"`
}

func (s *Service) Leader(ctx context.Context, actor performance.Actor) LeaderDashboard {
	var out LeaderDashboard
	f := newFanout(ctx, "leader", s.timeout)
	fetch(f, "team", &out.Team, func(ctx context.Context) ([]directory.User, error) {
		return s.directory.Subordinates(ctx, actor.TenantID, actor.UserID)
	})
	fetch(f, "tasks", &out.Tasks, func(ctx context.Context) ([]performance.ReviewTask, error) {
		return s.performance.ListTasks(ctx, actor)
	})
	fetch(f, "assessments", &out.Assessments, func(ctx context.Context) ([]performance.Assessment, error) {
		return s.performance.ListAssessments(ctx, actor.TenantID, performance.AssessmentStatusActive)
	})
	fetch(f, "unread", &out.Unread, func(ctx context.Context) (int, error) {
		return s.notifications.UnreadCount(ctx, actor.TenantID, actor.UserID)
	})
	f.wait()

	if out.Tasks.OK() {
		summary := summarizeTasks(out.Tasks.Value)
		out.Summary = &summary
	}
	out.Outcome = classify(out.Team, out.Tasks, out.Assessments, out.Unread)
	return out
}

type Completion struct {
	Participants int     `json:"participants"`
	Scored       int     `json:"scored"`
	Rate         float64 `json:"rate"`
	Average      float64 `json:"average"`
}

func completionOf(scores []performance.FinalScore) Completion {
	completion := Completion{Participants: len(scores)}
	var finals []float64
	for _, score := range scores {
		if score.Final != nil {
			finals = append(finals, *score.Final)
		}
	}
	completion.Scored = len(finals)
	completion.Average = scoring.Round2(scoring.Average(finals))
	if completion.Participants > 0 {
		completion.Rate = scoring.Round2(float64(completion.Scored) / float64(completion.Participants))
	}
	return completion
}

type BossSummary struct {
	Outcome    Outcome                          `json:"outcome"`
	Assessment Result[performance.Assessment]   `json:"assessment"`
	Scores     Result[[]performance.FinalScore] `json:"scores"`
	Tasks      Result[[]performance.ReviewTask] `json:"tasks"`
	Completion *Completion                      `json:"completion,omitempty"`
}

func (s *Service) Boss(ctx context.Context, actor performance.Actor, assessmentID string) BossSummary {
	var out BossSummary
	f := newFanout(ctx, "boss", s.timeout)
	fetch(f, "assessment", &out.Assessment, func(ctx context.Context) (performance.Assessment, error) {
		return s.performance.GetAssessment(ctx, actor.TenantID, assessmentID)
	})
	fetch(f, "scores", &out.Scores, func(ctx context.Context) ([]performance.FinalScore, error) {
		return s.performance.FinalScores(ctx, actor.TenantID, assessmentID)
	})
	fetch(f, "tasks", &out.Tasks, func(ctx context.Context) ([]performance.ReviewTask, error) {
		tasks, err := s.performance.ListTasks(ctx, actor)
		if err != nil {
			return nil, err
		}
		var scoped []performance.ReviewTask
		for _, task := range tasks {
			if task.AssessmentID == assessmentID {
				scoped = append(scoped, task)
			}
		}
		return scoped, nil
	})
	f.wait()

	if out.Scores.OK() {
		completion := completionOf(out.Scores.Value)
		out.Completion = &completion
	}
	out.Outcome = classify(out.Assessment, out.Scores, out.Tasks)
	return out
}
