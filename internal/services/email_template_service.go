package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freightdesk/quote/internal/db"
	"freightdesk/quote/internal/models"
)

// IEmailTemplateService reads and writes stored template overrides.
type IEmailTemplateService interface {
	ListTemplates(ctx context.Context) ([]models.EmailTemplate, error)
	SaveTemplate(ctx context.Context, template *models.EmailTemplate) error
	DeleteTemplate(ctx context.Context, kind models.MailLogType, language models.Language) error
}

// EmailTemplateService handles operations related to email templates
type EmailTemplateService struct {
	db *mongo.Database
}

// NewEmailTemplateService creates a new instance of EmailTemplateService
func NewEmailTemplateService(database *mongo.Database) *EmailTemplateService {
	return &EmailTemplateService{db: database}
}

func (s *EmailTemplateService) collection() *mongo.Collection {
	return s.db.Collection(db.EmailTemplatesCollection)
}

// ListTemplates returns every stored override.
func (s *EmailTemplateService) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	cursor, err := s.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.EmailTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("error decoding templates: %w", err)
	}
	return templates, nil
}

// SaveTemplate upserts an override keyed by type and language.
func (s *EmailTemplateService) SaveTemplate(ctx context.Context, template *models.EmailTemplate) error {
	filter := bson.M{"type": template.Type, "language": template.Language}
	update := bson.M{
		"$set":         bson.M{"subject": template.Subject, "body": template.Body},
		"$setOnInsert": bson.M{"_id": models.NewBase().ID},
	}
	if _, err := s.collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("error saving template %s/%s: %w", template.Type, template.Language, err)
	}
	return nil
}

// DeleteTemplate removes an override so the built-in default applies again.
func (s *EmailTemplateService) DeleteTemplate(ctx context.Context, kind models.MailLogType, language models.Language) error {
	if _, err := s.collection().DeleteOne(ctx, bson.M{"type": kind, "language": language}); err != nil {
		return fmt.Errorf("error deleting template %s/%s: %w", kind, language, err)
	}
	return nil
}
