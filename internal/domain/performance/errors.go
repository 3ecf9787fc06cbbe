package performance

import (
	"errors"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTemplate     = errors.New("invalid template")
	ErrInvalidAssessment   = errors.New("invalid assessment")
	ErrTemplateInUse       = errors.New("template in use")
	ErrAssessmentClosed    = errors.New("assessment closed")
	ErrAssessmentNotActive = errors.New("assessment not active")
	ErrNotParticipant      = errors.New("employee is not a participant")
	ErrRecordSubmitted     = errors.New("evaluation already submitted")
	ErrIncomplete          = errors.New("evaluation incomplete")
	ErrFeedbackRequired    = errors.New("feedback required")
	ErrLeaderOnlyCategory  = errors.New("category is scored by the leader only")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownItem         = errors.New("unknown item")
	ErrBossDisabled        = errors.New("boss evaluation disabled")
	ErrBossModeMismatch    = errors.New("boss mode mismatch")
	ErrInvalidEvaluator    = errors.New("invalid evaluator type")
)

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field issues and unwraps to its sentinel.
type ValidationError struct {
	Err    error
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return e.Err.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(sentinel error, issues []FieldIssue) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Err: sentinel, Issues: issues}
}
