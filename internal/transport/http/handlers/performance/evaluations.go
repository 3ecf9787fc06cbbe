package performancehandler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/audit"
	"okr/internal/domain/auth"
	"okr/internal/domain/notifications"
	"okr/internal/domain/performance"
	"okr/internal/domain/scoring"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type evaluationRequest struct {
	Categories []performance.CategoryInput `json:"categories" validate:"dive"`
	Feedback   string                      `json:"feedback"`
}

type bossStarsRequest struct {
	Stars    map[string]int `json:"stars" validate:"required,min=1,dive,gte=1,lte=5"`
	Feedback string         `json:"feedback"`
}

func (h *Handler) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	records, err := h.Service.GetRecords(r.Context(), actorOf(user), chi.URLParam(r, "assessmentID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err, "evaluation_list_failed")
		return
	}
	if records == nil {
		records = []performance.EvaluationRecord{}
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	h.writeEvaluation(w, r, false)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.writeEvaluation(w, r, true)
}

func (h *Handler) writeEvaluation(w http.ResponseWriter, r *http.Request, submit bool) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	evaluator := scoring.EvaluatorType(chi.URLParam(r, "evaluator"))
	if !evaluator.Valid() {
		api.Fail(w, http.StatusBadRequest, "invalid_evaluator", "evaluator must be self, leader or boss", requestID)
		return
	}
	if !middleware.Authorize(w, r, evaluatorPermission(evaluator), h.Perms) {
		return
	}

	var payload evaluationRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	input := performance.EvaluationInput{
		AssessmentID:  chi.URLParam(r, "assessmentID"),
		EvaluateeID:   chi.URLParam(r, "employeeID"),
		EvaluatorType: evaluator,
		Categories:    payload.Categories,
		Feedback:      payload.Feedback,
	}
	if !submit {
		record, err := h.Service.SaveDraft(r.Context(), actorOf(user), input)
		if err != nil {
			writeError(w, r, err, "evaluation_save_failed")
			return
		}
		api.Success(w, record, requestID)
		return
	}

	record, err := h.Service.Submit(r.Context(), actorOf(user), input)
	if err != nil {
		writeError(w, r, err, "evaluation_submit_failed")
		return
	}
	h.afterSubmit(r, user, record)
	api.Success(w, record, requestID)
}

func (h *Handler) handleSubmitBossSimplified(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	var payload bossStarsRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	record, err := h.Service.SubmitBossSimplified(r.Context(), actorOf(user), performance.BossStarsInput{
		AssessmentID: chi.URLParam(r, "assessmentID"),
		EvaluateeID:  chi.URLParam(r, "employeeID"),
		Stars:        payload.Stars,
		Feedback:     payload.Feedback,
	})
	if err != nil {
		writeError(w, r, err, "evaluation_submit_failed")
		return
	}
	h.afterSubmit(r, user, record)
	api.Success(w, record, requestID)
}

// afterSubmit runs the side effects of a submitted evaluation. None of them
// can fail the request.
func (h *Handler) afterSubmit(r *http.Request, user auth.UserContext, record performance.EvaluationRecord) {
	h.record(r, user, audit.ActionEvaluationSubmit, "evaluation", record.ID, nil, record)
	h.invalidateReports(r.Context(), user.TenantID, record.AssessmentID)
	if h.Metrics != nil {
		h.Metrics.EvaluationSubmitted(string(record.EvaluatorType))
	}
	if record.EvaluatorType != scoring.EvaluatorSelf {
		h.notify(r.Context(), notifications.Message{
			TenantID:  user.TenantID,
			UserID:    record.EvaluateeID,
			Type:      notifications.TypeEvaluationSubmitted,
			Title:     "Evaluation submitted",
			Body:      fmt.Sprintf("Your %s evaluation was submitted with an overall score of %.2f.", record.EvaluatorType, record.Overall),
			DedupeKey: notifications.TypeEvaluationSubmitted + ":" + record.ID,
		})
	}
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	base := scoring.EvaluatorType(r.URL.Query().Get("base"))
	reference := scoring.EvaluatorType(r.URL.Query().Get("reference"))
	if base == "" {
		base = scoring.EvaluatorSelf
	}
	if reference == "" {
		reference = scoring.EvaluatorLeader
	}

	comparison, err := h.Service.Compare(r.Context(), actorOf(user), chi.URLParam(r, "assessmentID"), chi.URLParam(r, "employeeID"), base, reference)
	if err != nil {
		writeError(w, r, err, "comparison_failed")
		return
	}
	api.Success(w, comparison, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalScore(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	score, err := h.Service.FinalScore(r.Context(), actorOf(user), chi.URLParam(r, "assessmentID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err, "final_score_failed")
		return
	}
	api.Success(w, score, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalScores(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	scores, err := h.Service.FinalScores(r.Context(), user.TenantID, chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, r, err, "final_score_failed")
		return
	}
	api.Success(w, scores, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	tasks, err := h.Service.ListTasks(r.Context(), actorOf(user))
	if err != nil {
		writeError(w, r, err, "task_list_failed")
		return
	}
	if tasks == nil {
		tasks = []performance.ReviewTask{}
	}
	api.Success(w, tasks, middleware.GetRequestID(r.Context()))
}
