package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freightdesk/quote/internal/db"
	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/pricing"
)

const offerConfigUpdateChannel = "offer_config_updates"

// OfferConfigurationPatch is a partial update. Nil fields keep their current value.
type OfferConfigurationPatch struct {
	IsEnabled    *bool   `json:"is_enabled"`
	Rate         *string `json:"rate"`
	ProfitMargin *string `json:"profit_margin"`
}

// IOfferConfigService gives access to the pricing configuration and the processing kill switch.
type IOfferConfigService interface {
	Get(ctx context.Context) (*models.OfferConfiguration, error)
	Update(ctx context.Context, patch OfferConfigurationPatch) (*models.OfferConfiguration, error)
	Enabled(ctx context.Context) (bool, error)
	SubscribeToChanges(ctx context.Context) error
}

// offerConfigService implements IOfferConfigService.
type offerConfigService struct {
	db    *mongo.Database
	rdb   *redis.Client
	now   func() time.Time
	mutex sync.RWMutex
	cache *models.OfferConfiguration
}

// NewOfferConfigService creates a new OfferConfigService. rdb may be nil, in which
// case changes made by other processes are only seen after a restart.
func NewOfferConfigService(database *mongo.Database, rdb *redis.Client) IOfferConfigService {
	return &offerConfigService{
		db:  database,
		rdb: rdb,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *offerConfigService) collection() *mongo.Collection {
	return s.db.Collection(db.OfferConfigurationCollection)
}

// Get returns the configuration, creating the default record on first use.
func (s *offerConfigService) Get(ctx context.Context) (*models.OfferConfiguration, error) {
	s.mutex.RLock()
	cached := s.cache
	s.mutex.RUnlock()
	if cached != nil {
		c := *cached
		return &c, nil
	}

	loaded, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	s.cache = loaded
	s.mutex.Unlock()

	c := *loaded
	return &c, nil
}

func (s *offerConfigService) load(ctx context.Context) (*models.OfferConfiguration, error) {
	defaults := models.DefaultOfferConfiguration()
	update := bson.M{"$setOnInsert": bson.M{
		"is_enabled":    defaults.IsEnabled,
		"rate":          defaults.Rate,
		"profit_margin": defaults.ProfitMargin,
		"updated_at":    s.now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var cfg models.OfferConfiguration
	err := s.collection().FindOneAndUpdate(ctx, bson.M{"_id": models.OfferConfigurationID}, update, opts).Decode(&cfg)
	if err != nil {
		// Two processes racing on the first upsert: the loser reads the winner's record.
		if db.IsMongoDuplicateKeyError(err) {
			err = s.collection().FindOne(ctx, bson.M{"_id": models.OfferConfigurationID}).Decode(&cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load offer configuration: %w", err)
		}
	}
	return &cfg, nil
}

// Update applies patch with a read-modify-write of the singleton record
// and tells every process to drop its cached copy.
func (s *offerConfigService) Update(ctx context.Context, patch OfferConfigurationPatch) (*models.OfferConfiguration, error) {
	if patch.Rate != nil {
		if err := pricing.ValidatePercentage("rate", *patch.Rate); err != nil {
			return nil, err
		}
	}
	if patch.ProfitMargin != nil {
		if err := pricing.ValidatePercentage("profit_margin", *patch.ProfitMargin); err != nil {
			return nil, err
		}
	}

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if patch.IsEnabled != nil {
		current.IsEnabled = *patch.IsEnabled
	}
	if patch.Rate != nil {
		current.Rate = *patch.Rate
	}
	if patch.ProfitMargin != nil {
		current.ProfitMargin = *patch.ProfitMargin
	}
	current.ID = models.OfferConfigurationID
	current.UpdatedAt = s.now()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection().ReplaceOne(ctx, bson.M{"_id": models.OfferConfigurationID}, current, opts); err != nil {
		return nil, fmt.Errorf("failed to save offer configuration: %w", err)
	}

	s.invalidate()
	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, offerConfigUpdateChannel, current.UpdatedAt.Format(time.RFC3339Nano)).Err(); err != nil {
			logger.Warn(ctx, "failed to publish offer configuration update", "error", err)
		}
	}

	logger.Info(ctx, "offer configuration updated",
		"is_enabled", current.IsEnabled, "rate", current.Rate, "profit_margin", current.ProfitMargin)
	c := *current
	return &c, nil
}

// Enabled reports the kill switch. A read failure is returned, never guessed.
func (s *offerConfigService) Enabled(ctx context.Context) (bool, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return cfg.IsEnabled, nil
}

func (s *offerConfigService) invalidate() {
	s.mutex.Lock()
	s.cache = nil
	s.mutex.Unlock()
}

// SubscribeToChanges drops the cached configuration whenever another process
// publishes an update. It blocks until ctx is cancelled.
func (s *offerConfigService) SubscribeToChanges(ctx context.Context) error {
	if s.rdb == nil {
		slog.Info("Redis client not configured, offer configuration changes are not followed")
		return nil
	}

	pubsub := s.rdb.Subscribe(ctx, offerConfigUpdateChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", offerConfigUpdateChannel, err)
	}
	slog.Info("subscribed to offer configuration updates", "channel", offerConfigUpdateChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			slog.Debug("offer configuration changed elsewhere", "payload", msg.Payload)
			s.invalidate()
		}
	}
}
