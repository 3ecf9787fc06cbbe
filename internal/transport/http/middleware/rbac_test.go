package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"okr/internal/domain/auth"
	"okr/internal/requestctx"
)

func TestAuthorizeRejectsEmptyPermission(t *testing.T) {
	ctx := WithUser(context.Background(), auth.UserContext{UserID: "a1", RoleName: auth.RoleAdmin})
	rec := httptest.NewRecorder()
	if Authorize(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx), "", auth.StaticPermissions{}) {
		t.Fatal("expected empty permission to be rejected")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthRecordsCallerForAccessLog(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u9", TenantID: "t9", RoleName: auth.RoleBoss}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	info := &requestctx.Info{RequestID: "req-9"}
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(requestctx.With(context.Background(), info))
	req.Header.Set("Authorization", "Bearer "+token)

	Auth(secret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(httptest.NewRecorder(), req)

	if info.UserID != "u9" || info.TenantID != "t9" || info.Role != auth.RoleBoss {
		t.Fatalf("caller not recorded: %+v", info)
	}
}
