// Package email delivers account verification mail.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers a verification code to a prospective account's
// mailbox.
type Sender interface {
	SendVerification(to, username, code string) error
}

// SMTPConfig holds the relay settings for outbound mail.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// SMTPSender sends verification mail through a plain SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender returns a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendVerification mails the six character code to the address being
// registered.
func (s *SMTPSender) SendVerification(to, username, code string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: Verify your Final Aisle account\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Hi %s,\r\n\r\n", username)
	fmt.Fprintf(&msg, "Your verification code is: %s\r\n\r\n", code)
	fmt.Fprintf(&msg, "Enter it in the game client to finish creating your account.\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("email: send verification to %s: %w", to, err)
	}
	return nil
}

// LogSender writes the code to the log instead of sending mail. Used
// when no SMTP relay is configured, so local setups can still complete
// registration.
type LogSender struct {
	Log *slog.Logger
}

var _ Sender = (*LogSender)(nil)

func (s *LogSender) SendVerification(to, username, code string) error {
	s.Log.Info("verification code issued (mail delivery disabled)",
		"email", to,
		"username", username,
		"code", code,
	)
	return nil
}
