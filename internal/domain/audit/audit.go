package audit

import (
	"context"
	"encoding/json"
	"time"
)

const (
	ActionTemplateCreate     = "template.create"
	ActionTemplateUpdate     = "template.update"
	ActionTemplateDelete     = "template.delete"
	ActionAssessmentCreate   = "assessment.create"
	ActionAssessmentActivate = "assessment.activate"
	ActionAssessmentClose    = "assessment.close"
	ActionEvaluationSubmit   = "evaluation.submit"
	ActionUserCreate         = "user.create"
	ActionDepartmentCreate   = "department.create"
	ActionLogin              = "auth.login"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Entry is one change to record. Before and After are marshalled to JSON.
type Entry struct {
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

type StoreAPI interface {
	Insert(ctx context.Context, entry Entry, beforeJSON, afterJSON []byte) error
	Count(ctx context.Context, tenantID string, filter Filter) (int, error)
	List(ctx context.Context, tenantID string, filter Filter, includeDetails bool, limit, offset int) ([]Event, error)
}

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

func marshalOptional(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func (s *Service) Record(ctx context.Context, entry Entry) error {
	beforeJSON, err := marshalOptional(entry.Before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalOptional(entry.After)
	if err != nil {
		return err
	}
	return s.store.Insert(ctx, entry, beforeJSON, afterJSON)
}

func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	return s.store.Count(ctx, tenantID, filter)
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	return s.store.List(ctx, tenantID, filter, includeDetails, limit, offset)
}
