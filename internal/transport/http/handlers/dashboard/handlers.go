package dashboardhandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/auth"
	"okr/internal/domain/dashboard"
	"okr/internal/domain/performance"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Service interface {
	Employee(ctx context.Context, actor performance.Actor) dashboard.EmployeeDashboard
	Leader(ctx context.Context, actor performance.Actor) dashboard.LeaderDashboard
	Boss(ctx context.Context, actor performance.Actor, assessmentID string) dashboard.BossSummary
}

type OutcomeRecorder interface {
	DashboardOutcome(dashboard, outcome string)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Metrics OutcomeRecorder
}

func NewHandler(service Service, perms middleware.PermissionStore, metrics OutcomeRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Metrics: metrics}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/employee", h.handleEmployee)
		r.With(middleware.RequirePermission(auth.PermEvaluateLead, h.Perms)).Get("/leader", h.handleLeader)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/boss", h.handleBoss)
	})
}

func actorOf(user auth.UserContext) performance.Actor {
	return performance.Actor{UserID: user.UserID, TenantID: user.TenantID, Role: user.RoleName}
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out := h.Service.Employee(r.Context(), actorOf(user))
	h.write(w, r, "employee", out.Outcome, out)
}

func (h *Handler) handleLeader(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out := h.Service.Leader(r.Context(), actorOf(user))
	h.write(w, r, "leader", out.Outcome, out)
}

func (h *Handler) handleBoss(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	assessmentID := strings.TrimSpace(r.URL.Query().Get("assessmentId"))
	v := shared.NewValidator()
	v.Required("assessmentId", assessmentID, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	out := h.Service.Boss(r.Context(), actorOf(user), assessmentID)
	h.write(w, r, "boss", out.Outcome, out)
}

// write returns partial dashboards as success so clients can render the
// parts that loaded. Only a dashboard where every fetch failed is an error.
func (h *Handler) write(w http.ResponseWriter, r *http.Request, name string, outcome dashboard.Outcome, data any) {
	if h.Metrics != nil {
		h.Metrics.DashboardOutcome(name, string(outcome))
	}
	requestID := middleware.GetRequestID(r.Context())
	if outcome == dashboard.OutcomeFailed {
		slog.Warn("dashboard fetches all failed", "dashboard", name, "requestId", requestID)
		api.FailWithData(w, http.StatusServiceUnavailable, "dashboard_unavailable", "dashboard data could not be loaded", data, requestID)
		return
	}
	api.Success(w, data, requestID)
}
