package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	created []Message
	keys    map[string]bool
	limit   int
	offset  int
}

func (f *fakeStore) CreateNotification(ctx context.Context, msg Message) (bool, error) {
	if f.keys == nil {
		f.keys = map[string]bool{}
	}
	if msg.DedupeKey != "" {
		key := msg.UserID + "|" + msg.DedupeKey
		if f.keys[key] {
			return false, nil
		}
		f.keys[key] = true
	}
	f.created = append(f.created, msg)
	return true, nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	f.limit, f.offset = limit, offset
	return nil, nil
}

func (f *fakeStore) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	return len(f.created), nil
}

func (f *fakeStore) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return nil
}

func (f *fakeStore) MarkAllRead(ctx context.Context, tenantID, userID string) (int64, error) {
	return int64(len(f.created)), nil
}

func TestCreateDeduplicatesByKey(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)
	ctx := context.Background()
	day := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	key := OverdueKey("asm", "emp", "leader", day)

	msg := Message{TenantID: "t1", UserID: "lead", Type: TypeReviewOverdue, Title: "Overdue", DedupeKey: key}
	created, err := svc.Create(ctx, msg)
	require.NoError(t, err)
	require.True(t, created)
	created, err = svc.Create(ctx, msg)
	require.NoError(t, err)
	require.False(t, created)
	require.Len(t, store.created, 1)

	msg.DedupeKey = OverdueKey("asm", "emp", "leader", day.Add(24*time.Hour))
	created, err = svc.Create(ctx, msg)
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, store.created, 2)

	created, err = svc.Create(ctx, Message{TenantID: "t1", Title: "nobody"})
	require.NoError(t, err)
	require.False(t, created)

	svc.Notify(ctx, Message{TenantID: "t1", Type: TypeEvaluationSubmitted})
	require.Len(t, store.created, 2)
}

func TestListClampsPaging(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	_, err := svc.List(context.Background(), "t1", "u1", false, 0, -3)
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, store.limit)
	require.Equal(t, 0, store.offset)

	_, err = svc.List(context.Background(), "t1", "u1", true, 1000, 10)
	require.NoError(t, err)
	require.Equal(t, MaxLimit, store.limit)
	require.Equal(t, 10, store.offset)
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, from, to, subject, _ string) error {
	m.sent = append(m.sent, from+"|"+to+"|"+subject)
	return m.err
}

type fakeRecipients map[string]string

func (f fakeRecipients) EmailOf(_ context.Context, _, userID string) (string, error) {
	email, ok := f[userID]
	if !ok {
		return "", errors.New("unknown user")
	}
	return email, nil
}

func TestCreateMailsNewNotificationsOnce(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	svc := New(store).WithEmail(mailer, fakeRecipients{"lead": "lead@example.com"}, "reviews@example.com")
	ctx := context.Background()

	msg := Message{TenantID: "t1", UserID: "lead", Type: TypeReviewOverdue, Title: "Review overdue", DedupeKey: "k1"}
	_, err := svc.Create(ctx, msg)
	require.NoError(t, err)
	_, err = svc.Create(ctx, msg)
	require.NoError(t, err)
	require.Equal(t, []string{"reviews@example.com|lead@example.com|Review overdue"}, mailer.sent)
}

func TestCreateIgnoresMailFailures(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := New(store).WithEmail(mailer, fakeRecipients{"lead": "lead@example.com"}, "")
	ctx := context.Background()

	_, err := svc.Create(ctx, Message{TenantID: "t1", UserID: "lead", Title: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Message{TenantID: "t1", UserID: "ghost", Title: "b"})
	require.NoError(t, err)
	require.Len(t, store.created, 2)
	require.Len(t, mailer.sent, 1)
	require.Contains(t, mailer.sent[0], "no-reply@example.com")
}
