package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freightdesk/quote/internal/db"
	"freightdesk/quote/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrStaleStatus means a conditional update found the offer in another
	// status than the caller expected. The caller should re-read and decide again.
	ErrStaleStatus = errors.New("offer status changed concurrently")
)

// OfferChange describes one atomic mutation of an offer. Zero-valued fields are left untouched.
type OfferChange struct {
	Status  models.OfferStatus // "" keeps the status
	Reason  string
	OfferNo string
	// PreviousOfferNo is stored alongside a rewritten OfferNo so the old number still resolves.
	PreviousOfferNo string
	Customer        *models.Contact
	Lane            *models.Lane
	FinalPrice      string
	AppendBids      []models.SupplierOffer
	At              time.Time
}

// OfferFilter narrows FindByStatus. Zero times are ignored.
type OfferFilter struct {
	CreatedBefore       time.Time
	StatusChangedBefore time.Time
	Limit               int64
}

// IOfferService is the durable store of offers and their supplier bids.
type IOfferService interface {
	Create(ctx context.Context, offer *models.Offer) error
	FindByOfferNo(ctx context.Context, offerNo string) (*models.Offer, error)
	FindByStatus(ctx context.Context, status models.OfferStatus, filter OfferFilter) ([]models.Offer, error)
	Update(ctx context.Context, offerID string, expected models.OfferStatus, change OfferChange) (*models.Offer, error)
}

type offerService struct {
	db *mongo.Database
}

// NewOfferService creates a new OfferService.
func NewOfferService(database *mongo.Database) IOfferService {
	return &offerService{db: database}
}

func (s *offerService) collection() *mongo.Collection {
	return s.db.Collection(db.OffersCollection)
}

// Create inserts a new offer. A duplicate offer_no surfaces as a Mongo
// duplicate key error so callers can regenerate the number and retry.
func (s *offerService) Create(ctx context.Context, offer *models.Offer) error {
	offer.GenIDIfEmpty()
	if offer.SupplierOffers == nil {
		offer.SupplierOffers = []models.SupplierOffer{}
	}
	if offer.Transitions == nil {
		offer.Transitions = []models.StatusChange{}
	}
	if _, err := s.collection().InsertOne(ctx, offer); err != nil {
		return fmt.Errorf("failed to insert offer %s: %w", offer.OfferNo, err)
	}
	return nil
}

func (s *offerService) FindByOfferNo(ctx context.Context, offerNo string) (*models.Offer, error) {
	var offer models.Offer
	filter := bson.M{"$or": bson.A{bson.M{"offer_no": offerNo}, bson.M{"previous_offer_no": offerNo}}}
	err := s.collection().FindOne(ctx, filter).Decode(&offer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("offer %s: %w", offerNo, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find offer %s: %w", offerNo, err)
	}
	return &offer, nil
}

func (s *offerService) FindByStatus(ctx context.Context, status models.OfferStatus, filter OfferFilter) ([]models.Offer, error) {
	query := bson.M{"status": status}
	if !filter.CreatedBefore.IsZero() {
		query["created_at"] = bson.M{"$lt": filter.CreatedBefore}
	}
	if !filter.StatusChangedBefore.IsZero() {
		query["status_changed_at"] = bson.M{"$lt": filter.StatusChangedBefore}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := s.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers in %s: %w", status, err)
	}
	defer cursor.Close(ctx)

	var offers []models.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers in %s: %w", status, err)
	}
	return offers, nil
}

// Update applies change to the offer only while it is still in the expected
// status. Status, history, fields and appended bids land in one document
// write, so a transition never partially applies.
func (s *offerService) Update(ctx context.Context, offerID string, expected models.OfferStatus, change OfferChange) (*models.Offer, error) {
	at := change.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	set := bson.M{"updated_at": at}
	push := bson.M{}

	if change.Status != "" {
		set["status"] = change.Status
		set["status_changed_at"] = at
		push["transitions"] = models.StatusChange{From: expected, To: change.Status, At: at, Reason: change.Reason}
	}
	if change.OfferNo != "" {
		set["offer_no"] = change.OfferNo
		set["previous_offer_no"] = change.PreviousOfferNo
	}
	if change.Customer != nil {
		set["customer"] = *change.Customer
	}
	if change.Lane != nil {
		set["lane"] = *change.Lane
	}
	if change.FinalPrice != "" {
		set["final_price"] = change.FinalPrice
	}
	if len(change.AppendBids) > 0 {
		push["supplier_offers"] = bson.M{"$each": change.AppendBids}
	}

	update := bson.M{"$set": set}
	if len(push) > 0 {
		update["$push"] = push
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Offer
	err := s.collection().FindOneAndUpdate(ctx, bson.M{"_id": offerID, "status": expected}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("offer %s not in %s: %w", offerID, expected, ErrStaleStatus)
		}
		return nil, fmt.Errorf("failed to update offer %s: %w", offerID, err)
	}
	return &updated, nil
}
