package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the services.
const (
	OffersCollection             = "offers"
	MailLogsCollection           = "mail_logs"
	OfferConfigurationCollection = "offer_configuration"
	SuppliersCollection          = "suppliers"
	EmailTemplatesCollection     = "email_templates"
)

// CaseInsensitive compares strings ignoring case. Queries must pass it to use
// indexes built with it.
var CaseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	slog.Info("connected to MongoDB", "database", dbName)
	return client, client.Database(dbName), nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	slog.Info("MongoDB connection closed")
	return nil
}

// EnsureIndexes creates the indexes the workflow relies on. The unique
// offer_no index is what turns an offer number collision into a duplicate
// key error that Try can retry.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		OffersCollection: {
			{Keys: bson.D{{Key: "offer_no", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "previous_offer_no", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "status_changed_at", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		MailLogsCollection: {
			{Keys: bson.D{{Key: "external_id", Value: 1}, {Key: "type", Value: 1}, {Key: "recipient", Value: 1}}},
			{Keys: bson.D{{Key: "external_id", Value: 1}, {Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		SuppliersCollection: {
			{Keys: bson.D{{Key: "contacts.email", Value: 1}}, Options: options.Index().SetName("contacts_email_ci").SetCollation(CaseInsensitive)},
			{Keys: bson.D{{Key: "lanes.direction", Value: 1}}},
		},
		EmailTemplatesCollection: {
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "language", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for collection, models := range specs {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
