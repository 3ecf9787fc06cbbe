package performance

import (
	"context"

	"okr/internal/domain/scoring"
)

type StoreAPI interface {
	ListTemplates(ctx context.Context, tenantID string) ([]Template, error)
	GetTemplate(ctx context.Context, tenantID, templateID string) (Template, error)
	CreateTemplate(ctx context.Context, tenantID string, tpl Template) (string, error)
	UpdateTemplate(ctx context.Context, tenantID string, tpl Template) error
	DeleteTemplate(ctx context.Context, tenantID, templateID string) error
	TemplateInUse(ctx context.Context, tenantID, templateID string) (bool, error)

	ListAssessments(ctx context.Context, tenantID, status string) ([]Assessment, error)
	ListActiveAssessments(ctx context.Context) ([]Assessment, error)
	GetAssessment(ctx context.Context, tenantID, assessmentID string) (Assessment, error)
	CreateAssessment(ctx context.Context, tenantID string, assessment Assessment, participants []Participant) (string, error)
	UpdateAssessmentStatus(ctx context.Context, tenantID, assessmentID, status string) error
	ListParticipants(ctx context.Context, tenantID, assessmentID string) ([]Participant, error)
	GetParticipant(ctx context.Context, tenantID, assessmentID, employeeID string) (Participant, error)

	ListRecords(ctx context.Context, tenantID, assessmentID, evaluateeID string) ([]EvaluationRecord, error)
	GetRecord(ctx context.Context, tenantID, assessmentID, evaluateeID string, evaluator scoring.EvaluatorType) (EvaluationRecord, error)
	UpsertRecord(ctx context.Context, tenantID string, record EvaluationRecord) (string, error)
	CompleteRecords(ctx context.Context, tenantID, assessmentID string) error
}

// DirectoryLookup resolves reporting lines when participants are added.
type DirectoryLookup interface {
	LeaderOf(ctx context.Context, tenantID, userID string) (string, error)
}
