package requestctx

import "context"

// Info is shared by every middleware handling one request. RequestID creates
// it and Auth fills in the caller, so the access log written after the
// handler returns sees both.
type Info struct {
	RequestID string
	UserID    string
	TenantID  string
	Role      string
}

type ctxKey struct{}

func With(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// From returns the request info or nil outside a request.
func From(ctx context.Context) *Info {
	info, _ := ctx.Value(ctxKey{}).(*Info)
	return info
}

func GetRequestID(ctx context.Context) string {
	if info := From(ctx); info != nil {
		return info.RequestID
	}
	return ""
}

// SetCaller records the authenticated caller. It is a no-op when the request
// did not pass through RequestID.
func SetCaller(ctx context.Context, userID, tenantID, role string) {
	info := From(ctx)
	if info == nil {
		return
	}
	info.UserID = userID
	info.TenantID = tenantID
	info.Role = role
}

// LogAttrs returns slog key/value pairs identifying the request and caller.
func LogAttrs(ctx context.Context) []any {
	info := From(ctx)
	if info == nil {
		return nil
	}
	attrs := []any{"requestId", info.RequestID}
	if info.UserID != "" {
		attrs = append(attrs, "userId", info.UserID, "tenantId", info.TenantID, "role", info.Role)
	}
	return attrs
}
