package performance

import (
	"context"
	"time"

	"okr/internal/domain/auth"
	"okr/internal/domain/scoring"
)

type Service struct {
	store     StoreAPI
	directory DirectoryLookup
	now       func() time.Time
}

func NewService(store StoreAPI, directory DirectoryLookup) *Service {
	return &Service{store: store, directory: directory, now: time.Now}
}

func isReviewer(role string) bool {
	return role == auth.RoleBoss || role == auth.RoleAdmin
}

// canView reports whether the actor may see evaluations about the participant.
func canView(actor Actor, participant Participant) bool {
	return isReviewer(actor.Role) || actor.UserID == participant.EmployeeID || actor.UserID == participant.LeaderID
}

// canEvaluate reports whether the actor may write the evaluator's record.
func canEvaluate(actor Actor, participant Participant, evaluator scoring.EvaluatorType) bool {
	switch evaluator {
	case scoring.EvaluatorSelf:
		return actor.UserID == participant.EmployeeID
	case scoring.EvaluatorLeader:
		return participant.LeaderID != "" && actor.UserID == participant.LeaderID
	case scoring.EvaluatorBoss:
		return actor.Role == auth.RoleBoss
	}
	return false
}

func (s *Service) participant(ctx context.Context, actor Actor, assessmentID, evaluateeID string) (Participant, error) {
	participant, err := s.store.GetParticipant(ctx, actor.TenantID, assessmentID, evaluateeID)
	if err != nil {
		return Participant{}, err
	}
	if !canView(actor, participant) {
		return Participant{}, ErrForbidden
	}
	return participant, nil
}
