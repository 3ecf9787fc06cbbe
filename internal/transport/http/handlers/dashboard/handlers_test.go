package dashboardhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"okr/internal/domain/auth"
	"okr/internal/domain/dashboard"
	"okr/internal/domain/performance"
	"okr/internal/transport/http/middleware"
)

type stubService struct {
	employeeOutcome dashboard.Outcome
	bossAssessment  string
}

func (s *stubService) Employee(_ context.Context, actor performance.Actor) dashboard.EmployeeDashboard {
	return dashboard.EmployeeDashboard{
		Outcome: s.employeeOutcome,
		Unread:  dashboard.Result[int]{Value: 3},
	}
}

func (s *stubService) Leader(context.Context, performance.Actor) dashboard.LeaderDashboard {
	return dashboard.LeaderDashboard{Outcome: dashboard.OutcomePartial}
}

func (s *stubService) Boss(_ context.Context, _ performance.Actor, assessmentID string) dashboard.BossSummary {
	s.bossAssessment = assessmentID
	return dashboard.BossSummary{Outcome: dashboard.OutcomeComplete}
}

type recordingMetrics struct{ outcomes []string }

func (m *recordingMetrics) DashboardOutcome(name, outcome string) {
	m.outcomes = append(m.outcomes, name+":"+outcome)
}

func serve(h *Handler, role, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", TenantID: "t1", RoleName: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestEmployeeDashboardOutcomes(t *testing.T) {
	svc := &stubService{employeeOutcome: dashboard.OutcomeComplete}
	metrics := &recordingMetrics{}
	h := NewHandler(svc, auth.StaticPermissions{}, metrics)

	rec := serve(h, auth.RoleEmployee, "/dashboard/employee")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data struct {
			Outcome string `json:"outcome"`
			Unread  struct {
				Value int `json:"value"`
			} `json:"unreadNotifications"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "complete", out.Data.Outcome)
	require.Equal(t, 3, out.Data.Unread.Value)

	svc.employeeOutcome = dashboard.OutcomeFailed
	rec = serve(h, auth.RoleEmployee, "/dashboard/employee")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "dashboard_unavailable")

	require.Equal(t, []string{"employee:complete", "employee:failed"}, metrics.outcomes)
}

func TestLeaderDashboardRequiresLeadPermission(t *testing.T) {
	h := NewHandler(&stubService{}, auth.StaticPermissions{}, nil)

	rec := serve(h, auth.RoleEmployee, "/dashboard/leader")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, auth.RoleLeader, "/dashboard/leader")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"outcome":"partial"`)
}

func TestBossDashboardRequiresAssessment(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, auth.StaticPermissions{}, nil)

	rec := serve(h, auth.RoleBoss, "/dashboard/boss")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "assessmentId")

	rec = serve(h, auth.RoleLeader, "/dashboard/boss?assessmentId=as-1")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, auth.RoleBoss, "/dashboard/boss?assessmentId=as-1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "as-1", svc.bossAssessment)
}
