package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"freightdesk/quote/internal/config"
	"freightdesk/quote/internal/logger"
)

// Sender defines the interface for sending emails.
// The rawMessage parameter should contain the full email message, including headers and body, properly formatted.
type Sender interface {
	Send(ctx context.Context, to []string, subject string, rawMessage []byte) error
}

// SMTPSender implements the Sender interface using Go's net/smtp package.
type SMTPSender struct {
	from string
	auth smtp.Auth
	addr string
}

// NewSMTPSender creates a new SMTPSender.
// Without a configured host it falls back to a LoggingSender.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		slog.Info("SMTP host not configured, using logging email sender")
		return &LoggingSender{}
	}

	var auth smtp.Auth
	if cfg.SmtpUsername != "" {
		auth = smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost)
	}
	return &SMTPSender{
		from: cfg.SmtpFromAddress,
		auth: auth,
		addr: fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
	}
}

// Send sends an email using SMTP.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if err := smtp.SendMail(s.addr, s.auth, s.from, to, rawMessage); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	logger.Info(ctx, "email sent via SMTP", "to", to, "subject", subject)
	return nil
}

// LoggingSender only logs email details. Used when SMTP isn't configured.
type LoggingSender struct{}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	logger.Info(ctx, "email logged instead of sent", "to", to, "subject", subject, "size", len(rawMessage))
	logger.Debug(ctx, "logged email content", "raw", string(rawMessage))
	return nil
}
