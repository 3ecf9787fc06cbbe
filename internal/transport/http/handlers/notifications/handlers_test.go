package notificationshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"okr/internal/domain/auth"
	"okr/internal/domain/notifications"
	"okr/internal/transport/http/middleware"
)

type stubService struct {
	unreadOnly bool
	userID     string
	allRead    bool
}

func (s *stubService) List(_ context.Context, _, userID string, unreadOnly bool, _, _ int) ([]notifications.Notification, error) {
	s.userID, s.unreadOnly = userID, unreadOnly
	return nil, nil
}

func (s *stubService) UnreadCount(context.Context, string, string) (int, error) {
	return 4, nil
}

func (s *stubService) MarkRead(_ context.Context, _, _, notificationID string) error {
	if notificationID != "n1" {
		return notifications.ErrNotFound
	}
	return nil
}

func (s *stubService) MarkAllRead(context.Context, string, string) (int64, error) {
	s.allRead = true
	return 4, nil
}

func serve(svc Service, user *auth.UserContext, method, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user != nil {
				req = req.WithContext(middleware.WithUser(req.Context(), *user))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHandler(svc).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

var employee = &auth.UserContext{UserID: "u1", TenantID: "t1", RoleName: auth.RoleEmployee}

func TestListNotifications(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, employee, http.MethodGet, "/notifications?unreadOnly=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "4", rec.Header().Get("X-Unread-Count"))
	require.Contains(t, rec.Body.String(), `"data":[]`)
	require.True(t, svc.unreadOnly)
	require.Equal(t, "u1", svc.userID)

	rec = serve(svc, nil, http.MethodGet, "/notifications")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkRead(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, employee, http.MethodPost, "/notifications/n1/read")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(svc, employee, http.MethodPost, "/notifications/other/read")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(svc, employee, http.MethodPost, "/notifications/read-all")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, svc.allRead)
	require.Contains(t, rec.Body.String(), `"updated":4`)
}

func TestUnreadCount(t *testing.T) {
	rec := serve(&stubService{}, employee, http.MethodGet, "/notifications/unread-count")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"unread":4`)
}
