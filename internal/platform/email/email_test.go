package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"okr/internal/platform/config"
)

func TestNewDisabledIsNoop(t *testing.T) {
	mailer := New(config.Config{})
	require.False(t, Enabled(mailer))
	require.NoError(t, mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"))

	mailer = New(config.Config{EmailEnabled: true})
	require.False(t, Enabled(mailer))

	mailer = New(config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: 587})
	require.True(t, Enabled(mailer))
	require.NoError(t, mailer.Send(context.Background(), "a@example.com", " ", "s", "b"))
}

func TestBuildMessage(t *testing.T) {
	sentAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	msg := string(buildMessage("no-reply@example.com", "lead@example.com", "Review overdue\r\nBcc: x@example.com", "Please finish.\nThanks", sentAt))
	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)
	require.True(t, strings.HasPrefix(body, "Please finish.\r\nThanks\r\n"))
	require.Contains(t, body, footer)
	require.Contains(t, headers, "Subject: Review overdue  Bcc: x@example.com")
	require.NotContains(t, headers, "\r\nBcc:")
	require.Contains(t, headers, "Date: Mon, 02 Mar 2026 09:30:00 +0000")
	require.Contains(t, headers, "@example.com>")
	require.Contains(t, headers, "Content-Type: text/plain")
}

func TestSettingsAddr(t *testing.T) {
	require.Equal(t, "smtp.example.com:587", Settings{Host: "smtp.example.com", Port: 587}.addr())
	require.Equal(t, "[::1]:25", Settings{Host: "::1", Port: 25}.addr())
}
