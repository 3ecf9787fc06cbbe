package scoring

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type TaskState struct {
	Status  TaskStatus `json:"status"`
	Overdue bool       `json:"overdue"`
}

// DeriveTaskStatus maps the evaluator's record status (nil when no record
// exists yet) to a task state. Overdue is orthogonal to the status.
func DeriveTaskStatus(record *RecordStatus, deadline, now time.Time) TaskState {
	state := TaskState{Status: TaskPending}
	if record != nil {
		switch *record {
		case RecordStatusDraft:
			state.Status = TaskInProgress
		case RecordStatusSubmitted, RecordStatusCompleted:
			state.Status = TaskCompleted
		}
	}
	state.Overdue = !deadline.IsZero() && deadline.Before(now) && state.Status != TaskCompleted
	return state
}
