package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// RecipientLookup resolves the email address of a notification recipient.
type RecipientLookup interface {
	EmailOf(ctx context.Context, tenantID, userID string) (string, error)
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	Recipients  RecipientLookup
	DefaultFrom string
}

func New(store StoreAPI) *Service {
	return &Service{store: store, DefaultFrom: "no-reply@example.com"}
}

// WithEmail also mails every newly created notification to its recipient.
func (s *Service) WithEmail(mailer Mailer, recipients RecipientLookup, from string) *Service {
	s.Mailer = mailer
	s.Recipients = recipients
	if from != "" {
		s.DefaultFrom = from
	}
	return s
}

// Create stores msg and mails it. It reports false when msg has no recipient
// or its dedupe key was already used.
func (s *Service) Create(ctx context.Context, msg Message) (bool, error) {
	if msg.UserID == "" {
		return false, nil
	}
	created, err := s.store.CreateNotification(ctx, msg)
	if err != nil {
		return false, err
	}
	if !created {
		slog.Debug("notification deduplicated", "userId", msg.UserID, "type", msg.Type, "key", msg.DedupeKey)
		return false, nil
	}
	s.mail(ctx, msg)
	return true, nil
}

// mail is best effort; the in-app notification is already stored.
func (s *Service) mail(ctx context.Context, msg Message) {
	if s.Mailer == nil || s.Recipients == nil {
		return
	}
	to, err := s.Recipients.EmailOf(ctx, msg.TenantID, msg.UserID)
	if err != nil {
		slog.Warn("notification recipient lookup failed", "userId", msg.UserID, "err", err)
		return
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, to, msg.Title, msg.Body); err != nil {
		slog.Warn("notification email failed", "userId", msg.UserID, "type", msg.Type, "err", err)
	}
}

// Notify is Create for callers that treat delivery as best effort.
func (s *Service) Notify(ctx context.Context, msg Message) {
	if _, err := s.Create(ctx, msg); err != nil {
		slog.Warn("notification create failed", "userId", msg.UserID, "type", msg.Type, "err", err)
	}
}

func (s *Service) List(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListNotifications(ctx, tenantID, userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.CountUnread(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, tenantID, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, tenantID, userID)
}

// OverdueKey builds the dedupe key for a review reminder. One reminder per
// evaluator role, evaluatee and day.
func OverdueKey(assessmentID, evaluateeID, evaluatorType string, day time.Time) string {
	return fmt.Sprintf("overdue:%s:%s:%s:%s", assessmentID, evaluateeID, evaluatorType, day.UTC().Format("2006-01-02"))
}
