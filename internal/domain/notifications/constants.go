package notifications

const (
	TypeAssessmentAssigned  = "assessment_assigned"
	TypeEvaluationSubmitted = "evaluation_submitted"
	TypeReviewOverdue       = "review_overdue"
	TypeAssessmentClosed    = "assessment_closed"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)
