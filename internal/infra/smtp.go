package infra

import (
	"fmt"
	"net/smtp"

	"github.com/Crissancio/Backend-Taller/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for notification emails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

// NewMailer returns nil when SMTP_HOST is empty; callers treat a nil Mailer
// as "email channel disabled".
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom(),
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Send delivers a plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
