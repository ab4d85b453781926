package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"freightdesk/quote/internal/email"
	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/services"
)

// Notification is one outbound mail tied to an offer or file event.
type Notification struct {
	To         []string
	Cc         []string
	Subject    string
	Body       string
	Kind       models.MailLogType
	ExternalID string
}

// Dispatcher sends notifications and records each one in the mail log.
type Dispatcher struct {
	sender  email.Sender
	logs    services.IMailLogService
	catalog *Catalog
	from    string
	now     func() time.Time
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(sender email.Sender, logs services.IMailLogService, catalog *Catalog, from string) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		logs:    logs,
		catalog: catalog,
		from:    from,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for message dates and log timestamps.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Render resolves kind in language from the template catalog.
func (d *Dispatcher) Render(kind models.MailLogType, language models.Language, data TemplateData) (string, string, error) {
	return d.catalog.Render(kind, language, data)
}

// Dispatch sends n and then appends the outbound mail log, returning its id.
// Nothing is logged when sending fails, so the next sweep sees the mail as unsent.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (string, error) {
	if len(n.To) == 0 {
		return "", fmt.Errorf("dispatch %s for %s: no recipient", n.Kind, n.ExternalID)
	}
	at := d.now()
	msg := email.Message{
		From:    d.from,
		To:      n.To,
		Cc:      n.Cc,
		Subject: n.Subject,
		Body:    n.Body,
		Date:    at,
		Headers: map[string]string{
			"X-Quote-Reference": n.ExternalID,
			"X-Quote-Mail-Type": string(n.Kind),
		},
	}
	if err := d.sender.Send(ctx, msg.Recipients(), n.Subject, msg.Bytes()); err != nil {
		return "", fmt.Errorf("send %s for %s: %w", n.Kind, n.ExternalID, err)
	}

	id, err := d.logs.Append(ctx, &models.MailLog{
		Type:       n.Kind,
		ExternalID: n.ExternalID,
		Direction:  models.MailOutbound,
		From:       d.from,
		To:         append(append([]string{}, n.To...), n.Cc...),
		Recipient:  strings.ToLower(strings.TrimSpace(n.To[0])),
		Subject:    n.Subject,
		Body:       n.Body,
		CreatedAt:  at,
	})
	if err != nil {
		return "", fmt.Errorf("log %s for %s after sending: %w", n.Kind, n.ExternalID, err)
	}
	logger.Info(ctx, "notification dispatched", "type", n.Kind, "external_id", n.ExternalID, "to", n.To, "log_id", id)
	return id, nil
}
