// Package mail sends outbound notification email over SMTP.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a message to a set of recipients. Implementations
// report via Enabled whether delivery is configured at all, so callers
// can skip the attempt entirely.
type Sender interface {
	Send(to []string, subject, body string) error
	Enabled() bool
}

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SMTPSender implements Sender over plain SMTP, with optional PLAIN
// authentication when a username is configured.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates a sender for the given transport settings.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 25
	}
	return &SMTPSender{cfg: cfg}
}

// Enabled reports whether the transport is configured.
func (s *SMTPSender) Enabled() bool {
	return s.cfg.Host != "" && s.cfg.From != ""
}

// Send delivers one message to all recipients in a single SMTP
// transaction.
func (s *SMTPSender) Send(to []string, subject, body string) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp transport not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Disabled is a Sender that is never configured. It stands in when no
// SMTP settings are present so callers need not nil-check.
type Disabled struct{}

func (Disabled) Send(to []string, subject, body string) error {
	return fmt.Errorf("mail delivery disabled")
}

func (Disabled) Enabled() bool { return false }
