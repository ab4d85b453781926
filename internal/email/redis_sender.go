package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"freightdesk/quote/internal/logger"
)

const (
	mockMailboxTTL  = time.Hour
	mockMailboxSize = 20
)

// MockEmail is one message held in the Redis mock mailbox.
type MockEmail struct {
	To      []string  `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// RedisSender implements the Sender interface by storing emails in a per-recipient
// Redis list. Used in mock mode so tests and staff can read what would have been sent.
type RedisSender struct {
	client *redis.Client
}

// NewRedisSender creates a new RedisSender
func NewRedisSender(client *redis.Client) *RedisSender {
	return &RedisSender{client: client}
}

func mailboxKey(address string) string {
	return "mockemail:" + strings.ToLower(strings.TrimSpace(address))
}

// Send pushes the message to the mailbox of every recipient.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	data, err := json.Marshal(MockEmail{To: to, Subject: subject, Body: string(rawMessage), SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, addr := range to {
		key := mailboxKey(addr)
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, mockMailboxSize-1)
		pipe.Expire(ctx, key, mockMailboxTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store email in Redis mailbox: %w", err)
	}

	logger.Debug(ctx, "mock email stored in Redis", "to", to, "subject", subject)
	return nil
}

// Latest returns the newest message for address, or nil if the mailbox is empty.
func (s *RedisSender) Latest(ctx context.Context, address string) (*MockEmail, error) {
	data, err := s.client.LIndex(ctx, mailboxKey(address), 0).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read mock mailbox for %s: %w", address, err)
	}
	var msg MockEmail
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode mock email for %s: %w", address, err)
	}
	return &msg, nil
}
