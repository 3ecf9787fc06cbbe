package notifications

import "time"

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Message struct {
	TenantID string
	UserID   string
	Type     string
	Title    string
	Body     string
	// DedupeKey suppresses repeated messages; empty means always deliver.
	DedupeKey string
}
