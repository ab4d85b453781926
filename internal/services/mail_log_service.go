package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freightdesk/quote/internal/db"
	"freightdesk/quote/internal/models"
)

// IMailLogService is the append-only log of every inbound and outbound message.
// It doubles as the idempotency source for reminders and notifications.
type IMailLogService interface {
	Append(ctx context.Context, entry *models.MailLog) (string, error)
	// HasLogOfKind reports whether a log of kind exists for externalID.
	// An empty recipient matches any recipient.
	HasLogOfKind(ctx context.Context, externalID string, kind models.MailLogType, recipient string) (bool, error)
	// Latest returns the most recent log of kind for externalID, or nil.
	Latest(ctx context.Context, externalID string, kind models.MailLogType) (*models.MailLog, error)
	// Find lists logs of kind created in [since, until]. Zero bounds are open.
	Find(ctx context.Context, externalID string, kind models.MailLogType, since, until time.Time) ([]models.MailLog, error)
}

type mailLogService struct {
	db  *mongo.Database
	now func() time.Time
}

// NewMailLogService creates a new MailLogService.
func NewMailLogService(database *mongo.Database) IMailLogService {
	return &mailLogService{db: database, now: func() time.Time { return time.Now().UTC() }}
}

func (s *mailLogService) collection() *mongo.Collection {
	return s.db.Collection(db.MailLogsCollection)
}

func (s *mailLogService) Append(ctx context.Context, entry *models.MailLog) (string, error) {
	entry.GenIDIfEmpty()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	entry.Recipient = strings.ToLower(strings.TrimSpace(entry.Recipient))
	if entry.Recipient == "" && len(entry.To) > 0 {
		entry.Recipient = strings.ToLower(strings.TrimSpace(entry.To[0]))
	}
	if _, err := s.collection().InsertOne(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to append %s mail log for %s: %w", entry.Type, entry.ExternalID, err)
	}
	return entry.ID, nil
}

func (s *mailLogService) HasLogOfKind(ctx context.Context, externalID string, kind models.MailLogType, recipient string) (bool, error) {
	filter := bson.M{"external_id": externalID, "type": kind}
	if recipient != "" {
		filter["recipient"] = strings.ToLower(strings.TrimSpace(recipient))
	}
	n, err := s.collection().CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check %s mail log for %s: %w", kind, externalID, err)
	}
	return n > 0, nil
}

func (s *mailLogService) Latest(ctx context.Context, externalID string, kind models.MailLogType) (*models.MailLog, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var entry models.MailLog
	err := s.collection().FindOne(ctx, bson.M{"external_id": externalID, "type": kind}, opts).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest %s mail log for %s: %w", kind, externalID, err)
	}
	return &entry, nil
}

func (s *mailLogService) Find(ctx context.Context, externalID string, kind models.MailLogType, since, until time.Time) ([]models.MailLog, error) {
	filter := bson.M{"external_id": externalID, "type": kind}
	window := bson.M{}
	if !since.IsZero() {
		window["$gte"] = since
	}
	if !until.IsZero() {
		window["$lte"] = until
	}
	if len(window) > 0 {
		filter["created_at"] = window
	}

	cursor, err := s.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s mail logs for %s: %w", kind, externalID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.MailLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s mail logs for %s: %w", kind, externalID, err)
	}
	return entries, nil
}
