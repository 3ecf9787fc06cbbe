package performance

import (
	"context"
	"fmt"
	"strings"
)

func (s *Service) ListAssessments(ctx context.Context, tenantID, status string) ([]Assessment, error) {
	return s.store.ListAssessments(ctx, tenantID, status)
}

func (s *Service) GetAssessment(ctx context.Context, tenantID, assessmentID string) (Assessment, error) {
	assessment, err := s.store.GetAssessment(ctx, tenantID, assessmentID)
	if err != nil {
		return Assessment{}, err
	}
	participants, err := s.store.ListParticipants(ctx, tenantID, assessmentID)
	if err != nil {
		return Assessment{}, err
	}
	for _, p := range participants {
		assessment.ParticipantIDs = append(assessment.ParticipantIDs, p.EmployeeID)
	}
	return assessment, nil
}

// CreateAssessment stores the assessment and one participant per employee,
// each paired with the leader the directory reports for them.
func (s *Service) CreateAssessment(ctx context.Context, tenantID string, input NewAssessment) (string, error) {
	var issues []FieldIssue
	if strings.TrimSpace(input.Name) == "" {
		issues = append(issues, FieldIssue{Field: "name", Message: "is required"})
	}
	if input.BossMode == "" {
		input.BossMode = BossModeFull
	}
	if !input.BossMode.Valid() {
		issues = append(issues, FieldIssue{Field: "bossMode", Message: fmt.Sprintf("unknown mode %q", input.BossMode)})
	}
	if input.Deadline.IsZero() {
		issues = append(issues, FieldIssue{Field: "deadline", Message: "is required"})
	}
	if !input.PeriodStart.IsZero() && !input.PeriodEnd.IsZero() && input.PeriodEnd.Before(input.PeriodStart) {
		issues = append(issues, FieldIssue{Field: "periodEnd", Message: "must not be before periodStart"})
	}
	employees := uniqueIDs(input.ParticipantIDs)
	if len(employees) == 0 {
		issues = append(issues, FieldIssue{Field: "participantIds", Message: "at least one participant is required"})
	}
	if err := invalid(ErrInvalidAssessment, issues); err != nil {
		return "", err
	}

	tpl, err := s.store.GetTemplate(ctx, tenantID, input.TemplateID)
	if err != nil {
		return "", err
	}
	if err := invalid(ErrInvalidAssessment, validateStarMode(tpl, input.BossMode)); err != nil {
		return "", err
	}

	participants := make([]Participant, 0, len(employees))
	for _, employeeID := range employees {
		leaderID, err := s.directory.LeaderOf(ctx, tenantID, employeeID)
		if err != nil {
			return "", fmt.Errorf("leader of %s: %w", employeeID, err)
		}
		participants = append(participants, Participant{EmployeeID: employeeID, LeaderID: leaderID})
	}

	status := AssessmentStatusActive
	if input.Draft {
		status = AssessmentStatusDraft
	}
	return s.store.CreateAssessment(ctx, tenantID, Assessment{
		Name:        strings.TrimSpace(input.Name),
		TemplateID:  tpl.ID,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Deadline:    input.Deadline,
		Status:      status,
		BossMode:    input.BossMode,
	}, participants)
}

func (s *Service) ActivateAssessment(ctx context.Context, tenantID, assessmentID string) error {
	assessment, err := s.store.GetAssessment(ctx, tenantID, assessmentID)
	if err != nil {
		return err
	}
	if assessment.Status != AssessmentStatusDraft {
		return fmt.Errorf("%w: status is %s", ErrInvalidAssessment, assessment.Status)
	}
	return s.store.UpdateAssessmentStatus(ctx, tenantID, assessmentID, AssessmentStatusActive)
}

// CloseAssessment stops further input and marks submitted records completed.
func (s *Service) CloseAssessment(ctx context.Context, tenantID, assessmentID string) error {
	assessment, err := s.store.GetAssessment(ctx, tenantID, assessmentID)
	if err != nil {
		return err
	}
	if assessment.Status == AssessmentStatusClosed {
		return ErrAssessmentClosed
	}
	if err := s.store.UpdateAssessmentStatus(ctx, tenantID, assessmentID, AssessmentStatusClosed); err != nil {
		return err
	}
	return s.store.CompleteRecords(ctx, tenantID, assessmentID)
}

func uniqueIDs(ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
