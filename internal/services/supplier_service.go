package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freightdesk/quote/internal/db"
	"freightdesk/quote/internal/models"
)

// ISupplierService is the read side of the supplier directory.
type ISupplierService interface {
	// Match returns non-deleted suppliers serving the lane.
	Match(ctx context.Context, lane models.Lane) ([]models.Supplier, error)
	// FindContactByEmail resolves a reply sender to a contact, including soft-deleted ones.
	FindContactByEmail(ctx context.Context, email string) (*models.SupplierContact, error)
	// FindContactsByIDs returns the current state of the given contacts keyed by id.
	FindContactsByIDs(ctx context.Context, ids []string) (map[string]models.SupplierContact, error)
}

type supplierService struct {
	db *mongo.Database
}

// NewSupplierService creates a new SupplierService.
func NewSupplierService(database *mongo.Database) ISupplierService {
	return &supplierService{db: database}
}

func (s *supplierService) collection() *mongo.Collection {
	return s.db.Collection(db.SuppliersCollection)
}

// countryClause matches the given country or a wildcard lane entry.
func countryClause(country string) bson.M {
	return bson.M{"$in": bson.A{strings.ToUpper(strings.TrimSpace(country)), "", nil}}
}

func (s *supplierService) Match(ctx context.Context, lane models.Lane) ([]models.Supplier, error) {
	filter := bson.M{
		"deleted": bson.M{"$ne": true},
		"lanes": bson.M{"$elemMatch": bson.M{
			"direction":        lane.Direction,
			"load_country":     countryClause(lane.LoadCountry),
			"delivery_country": countryClause(lane.DeliveryCountry),
		}},
	}
	cursor, err := s.collection().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to match suppliers: %w", err)
	}
	defer cursor.Close(ctx)

	var suppliers []models.Supplier
	if err := cursor.All(ctx, &suppliers); err != nil {
		return nil, fmt.Errorf("failed to decode suppliers: %w", err)
	}
	for i := range suppliers {
		hydrateContacts(&suppliers[i])
	}
	return suppliers, nil
}

func (s *supplierService) FindContactByEmail(ctx context.Context, email string) (*models.SupplierContact, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var supplier models.Supplier
	// Directory entries keep the casing they were typed with.
	opts := options.FindOne().SetCollation(db.CaseInsensitive)
	err := s.collection().FindOne(ctx, bson.M{"contacts.email": email}, opts).Decode(&supplier)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("supplier contact %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find supplier contact %s: %w", email, err)
	}
	hydrateContacts(&supplier)
	for _, c := range supplier.Contacts {
		if strings.EqualFold(c.Email, email) {
			contact := c
			return &contact, nil
		}
	}
	return nil, fmt.Errorf("supplier contact %s: %w", email, ErrNotFound)
}

func (s *supplierService) FindContactsByIDs(ctx context.Context, ids []string) (map[string]models.SupplierContact, error) {
	contacts := make(map[string]models.SupplierContact, len(ids))
	if len(ids) == 0 {
		return contacts, nil
	}
	cursor, err := s.collection().Find(ctx, bson.M{"contacts.id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier contacts: %w", err)
	}
	defer cursor.Close(ctx)

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	for cursor.Next(ctx) {
		var supplier models.Supplier
		if err := cursor.Decode(&supplier); err != nil {
			return nil, fmt.Errorf("failed to decode supplier: %w", err)
		}
		hydrateContacts(&supplier)
		for _, c := range supplier.Contacts {
			if wanted[c.ID] {
				contacts[c.ID] = c
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suppliers: %w", err)
	}
	return contacts, nil
}

// hydrateContacts fills the denormalized contact fields from the owning supplier.
// A deleted supplier soft-deletes all its contacts.
func hydrateContacts(s *models.Supplier) {
	for i := range s.Contacts {
		c := &s.Contacts[i]
		if c.SupplierID == "" {
			c.SupplierID = s.ID
		}
		c.Email = strings.ToLower(strings.TrimSpace(c.Email))
		c.Language = models.ParseLanguage(string(c.Language))
		if s.Deleted {
			c.Deleted = true
		}
	}
}
