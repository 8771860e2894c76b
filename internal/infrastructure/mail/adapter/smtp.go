package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/mail/port"
)

// SMTPMailer implements port.Mailer over plain SMTP with optional AUTH.
type SMTPMailer struct {
	host string
	port string
	from string
	auth smtp.Auth
}

// NewSMTPMailerFromEnv constructs a mailer from SMTP_HOST, SMTP_PORT,
// SMTP_FROM and optionally SMTP_USERNAME/SMTP_PASSWORD.
func NewSMTPMailerFromEnv() (*SMTPMailer, error) {
	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if host == "" {
		return nil, errors.New("smtp: SMTP_HOST environment variable is not set")
	}
	from := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if from == "" {
		return nil, errors.New("smtp: SMTP_FROM environment variable is not set")
	}
	p := strings.TrimSpace(os.Getenv("SMTP_PORT"))
	if p == "" {
		p = "587"
	}

	m := &SMTPMailer{host: host, port: p, from: from}
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		m.auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}
	return m, nil
}

// Ensure interface compliance at compile time
var _ port.Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(ctx context.Context, to string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	addr := net.JoinHostPort(m.host, m.port)
	if err := smtp.SendMail(addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", to, err)
	}
	return nil
}
