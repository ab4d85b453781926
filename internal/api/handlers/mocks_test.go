package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/services"
)

// --- Mocks ---

// MockAsynqClient
type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

// MockOfferService
type MockOfferService struct {
	mock.Mock
}

func (m *MockOfferService) Create(ctx context.Context, offer *models.Offer) error {
	return m.Called(ctx, offer).Error(0)
}

func (m *MockOfferService) FindByOfferNo(ctx context.Context, offerNo string) (*models.Offer, error) {
	args := m.Called(ctx, offerNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *MockOfferService) FindByStatus(ctx context.Context, status models.OfferStatus, filter services.OfferFilter) ([]models.Offer, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *MockOfferService) Update(ctx context.Context, offerID string, expected models.OfferStatus, change services.OfferChange) (*models.Offer, error) {
	args := m.Called(ctx, offerID, expected, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

// MockOfferConfigService
type MockOfferConfigService struct {
	mock.Mock
}

func (m *MockOfferConfigService) Get(ctx context.Context) (*models.OfferConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OfferConfiguration), args.Error(1)
}

func (m *MockOfferConfigService) Update(ctx context.Context, patch services.OfferConfigurationPatch) (*models.OfferConfiguration, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OfferConfiguration), args.Error(1)
}

func (m *MockOfferConfigService) Enabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockOfferConfigService) SubscribeToChanges(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ services.IOfferService       = (*MockOfferService)(nil)
	_ services.IOfferConfigService = (*MockOfferConfigService)(nil)
)
