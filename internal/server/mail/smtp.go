// Package mail implements the outbound notification collaborator: delivery
// of password-reset links over SMTP. Delivery is best-effort; when SMTP is
// not configured or fails, the link is emitted to the log instead so an
// operator can still hand it to the user.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
)

// ErrNotConfigured is returned when no SMTP credentials are set.
var ErrNotConfigured = errors.New("smtp credentials not configured")

// SMTPMailer sends password-reset emails through a single SMTP endpoint
// (STARTTLS + plain auth, the Gmail-style setup). Every send is bounded by a
// configured timeout so a stalled SMTP server cannot hold a request open.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
	logger   logging.Logger
}

func NewSMTPMailer(cfg *config.Config, logger logging.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
		timeout:  cfg.MailSendTimeout,
		logger:   logger.With("module", "mailer"),
	}
}

// SendResetLink delivers the reset link to the given address. On any
// failure the link is written to the log and the error is returned; the
// caller decides whether to surface it.
func (m *SMTPMailer) SendResetLink(ctx context.Context, to string, link string) error {
	err := m.send(ctx, to, link)
	if err != nil {
		m.logger.Warn(ctx, "reset link not delivered, emitting to log", "to", to, "link", link, "error", err.Error())
	}
	return err
}

func (m *SMTPMailer) send(ctx context.Context, to string, link string) error {
	if m.username == "" || m.password == "" {
		return ErrNotConfigured
	}

	addr := net.JoinHostPort(m.host, m.port)
	dialer := &net.Dialer{Timeout: m.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	// a single deadline bounds the whole SMTP conversation
	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
		return fmt.Errorf("smtp starttls: %w", err)
	}
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(m.from, to, link)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return client.Quit()
}

func buildMessage(from, to, link string) []byte {
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Password Reset Request</h2>
		<p>You requested a password reset for your account. Click the link below to reset your password:</p>
		<p><a href="%s">Reset My Password</a></p>
		<p>This link will expire in 10 minutes.</p>
		<p>If you didn't request this password reset, please ignore this email. Your password will remain unchanged.</p>
	</body>
	</html>
	`, link)

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: Password Reset Request",
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="utf-8"`,
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(h)
		message.WriteString("\r\n")
	}
	message.WriteString("\r\n" + body)

	return []byte(message.String())
}
