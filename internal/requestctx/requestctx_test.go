package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallerVisibleThroughParentInfo(t *testing.T) {
	ctx := With(context.Background(), &Info{RequestID: "req-1"})
	child := context.WithValue(ctx, struct{ name string }{"other"}, 1)

	SetCaller(child, "u1", "t1", "leader")

	require.Equal(t, "req-1", GetRequestID(ctx))
	require.Equal(t, []any{"requestId", "req-1", "userId", "u1", "tenantId", "t1", "role", "leader"}, LogAttrs(ctx))
}

func TestMissingInfo(t *testing.T) {
	ctx := context.Background()
	SetCaller(ctx, "u1", "t1", "admin")
	require.Empty(t, GetRequestID(ctx))
	require.Nil(t, LogAttrs(ctx))
}

func TestAnonymousAttrs(t *testing.T) {
	ctx := With(context.Background(), &Info{RequestID: "req-2"})
	require.Equal(t, []any{"requestId", "req-2"}, LogAttrs(ctx))
}
