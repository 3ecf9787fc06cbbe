package performance

import (
	"time"

	"okr/internal/domain/scoring"
)

type Template struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Weights     scoring.WeightConfig `json:"weightConfig"`
	Categories  []TemplateCategory   `json:"categories"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type TemplateCategory struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Weight      float64             `json:"weight"`
	LeaderOnly  bool                `json:"leaderOnly"`
	StarMapping scoring.StarMapping `json:"starMapping,omitempty"`
	Items       []TemplateItem      `json:"items"`
}

type TemplateItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// AppliesTo reports whether an evaluator of the given type scores the category.
func (c TemplateCategory) AppliesTo(evaluator scoring.EvaluatorType) bool {
	return !(c.LeaderOnly && evaluator == scoring.EvaluatorSelf)
}

type Assessment struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"-"`
	Name           string    `json:"name"`
	TemplateID     string    `json:"templateId"`
	PeriodStart    time.Time `json:"periodStart"`
	PeriodEnd      time.Time `json:"periodEnd"`
	Deadline       time.Time `json:"deadline"`
	Status         string    `json:"status"`
	BossMode       BossMode  `json:"bossMode"`
	ParticipantIDs []string  `json:"participantIds,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type NewAssessment struct {
	Name           string
	TemplateID     string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Deadline       time.Time
	BossMode       BossMode
	ParticipantIDs []string
	Draft          bool
}

type Participant struct {
	AssessmentID string `json:"assessmentId"`
	EmployeeID   string `json:"employeeId"`
	LeaderID     string `json:"leaderId"`
}

// EvaluationRecord is the storage shape of one evaluator's input for one
// evaluatee. Use Typed to work with it as an Evaluation.
type EvaluationRecord struct {
	ID            string                  `json:"id"`
	AssessmentID  string                  `json:"assessmentId"`
	EvaluateeID   string                  `json:"evaluateeId"`
	EvaluatorID   string                  `json:"evaluatorId"`
	EvaluatorType scoring.EvaluatorType   `json:"evaluatorType"`
	Overall       float64                 `json:"overall"`
	Status        scoring.RecordStatus    `json:"status"`
	SubmittedAt   *time.Time              `json:"submittedAt,omitempty"`
	UpdatedAt     time.Time               `json:"updatedAt"`
	Categories    []scoring.CategoryScore `json:"categories"`
	Feedback      string                  `json:"feedback,omitempty"`
	Stars         map[string]int          `json:"stars,omitempty"`
}

func (r EvaluationRecord) Submitted() bool {
	return r.Status == scoring.RecordStatusSubmitted || r.Status == scoring.RecordStatusCompleted
}

type ItemInput struct {
	ItemID  string  `json:"itemId" validate:"required"`
	Score   float64 `json:"score" validate:"gte=0,lte=100"`
	Comment string  `json:"comment"`
}

type CategoryInput struct {
	CategoryID string      `json:"categoryId" validate:"required"`
	Items      []ItemInput `json:"items" validate:"dive"`
}

type EvaluationInput struct {
	AssessmentID  string
	EvaluateeID   string
	EvaluatorType scoring.EvaluatorType
	Categories    []CategoryInput
	Feedback      string
}

type BossStarsInput struct {
	AssessmentID string
	EvaluateeID  string
	Stars        map[string]int
	Feedback     string
}

type ReviewTask struct {
	TenantID       string                `json:"-"`
	AssessmentID   string                `json:"assessmentId"`
	AssessmentName string                `json:"assessmentName"`
	EvaluateeID    string                `json:"evaluateeId"`
	EvaluatorID    string                `json:"evaluatorId,omitempty"`
	EvaluatorType  scoring.EvaluatorType `json:"evaluatorType"`
	Deadline       time.Time             `json:"deadline"`
	State          scoring.TaskState     `json:"state"`
}

type FinalScore struct {
	AssessmentID string              `json:"assessmentId"`
	EmployeeID   string              `json:"employeeId"`
	Self         *float64            `json:"self"`
	Leader       *float64            `json:"leader"`
	Boss         *float64            `json:"boss"`
	Final        *float64            `json:"final"`
	Mode         scoring.ScoringMode `json:"scoringMode"`
	Complete     bool                `json:"complete"`
}

// Actor identifies the caller of a service operation.
type Actor struct {
	UserID   string
	TenantID string
	Role     string
}
