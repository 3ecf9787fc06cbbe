package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"okr/internal/domain/notifications"
	"okr/internal/platform/config"
)

const (
	dialTimeout = 10 * time.Second
	sendTimeout = 30 * time.Second
	footer      = "You receive this because you take part in a performance review."
)

// Settings is the SMTP part of the service configuration.
type Settings struct {
	Host     string
	Port     int
	User     string
	Password string
	UseTLS   bool
}

func (s Settings) addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string, string) error {
	return nil
}

type smtpMailer struct {
	settings Settings
	now      func() time.Time
}

// New returns an SMTP mailer, or a mailer that drops everything when email
// delivery is disabled.
func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	return &smtpMailer{
		settings: Settings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			UseTLS:   cfg.SMTPUseTLS,
		},
		now: time.Now,
	}
}

func Enabled(mailer notifications.Mailer) bool {
	_, noop := mailer.(noopMailer)
	return !noop
}

// Send delivers one plain text message. The whole exchange is bounded by
// sendTimeout or the context deadline, whichever comes first.
func (s *smtpMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.settings.addr())
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.settings.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if s.settings.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.settings.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.settings.User != "" {
		auth := smtp.PlainAuth("", s.settings.User, s.settings.Password, s.settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	msg := buildMessage(from, to, subject, body, s.now())
	if err := deliver(client, from, to, msg); err != nil {
		return err
	}
	return client.Quit()
}

func deliver(client *smtp.Client, from, to string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt %s: %w", to, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}

// buildMessage renders a plain text message. Header values are stripped of
// line breaks so an assessment name cannot inject headers.
func buildMessage(from, to, subject, body string, sentAt time.Time) []byte {
	domain := "localhost"
	if _, host, ok := strings.Cut(from, "@"); ok && host != "" {
		domain = headerValue(host)
	}
	headers := []string{
		"From: " + headerValue(from),
		"To: " + headerValue(to),
		"Subject: " + headerValue(subject),
		"Date: " + sentAt.Format(time.RFC1123Z),
		fmt.Sprintf("Message-ID: <%s@%s>", uuid.NewString(), domain),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
	}
	text := strings.ReplaceAll(strings.TrimRight(body, "\r\n"), "\n", "\r\n")
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + text + "\r\n\r\n-- \r\n" + footer + "\r\n")
}

func headerValue(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(value))
}
