package catalog

import (
	"context"
	"sync"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

// MockShopRepository is a mock implementation of catalog.ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) FindByID(ctx context.Context, id int64) (*catalog.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Shop), args.Error(1)
}

func (m *MockShopRepository) FindByOwner(ctx context.Context, ownerID int64) (*catalog.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Shop), args.Error(1)
}

func (m *MockShopRepository) GetOrCreate(ctx context.Context, shop *catalog.Shop) (*catalog.Shop, bool, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*catalog.Shop), args.Bool(1), args.Error(2)
}

func (m *MockShopRepository) Update(ctx context.Context, shop *catalog.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockShopRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Shop, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Shop), args.Get(1).(int64), args.Error(2)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id int64) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetOrCreateByName(ctx context.Context, name string) (*catalog.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockParameterRepository is a mock implementation of catalog.ParameterRepository
type MockParameterRepository struct {
	mock.Mock
}

func (m *MockParameterRepository) GetOrCreateByName(ctx context.Context, name string) (*catalog.Parameter, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Parameter), args.Error(1)
}

func (m *MockParameterRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, shopID, externalID int64) (*catalog.Product, error) {
	args := m.Called(ctx, shopID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, product *catalog.Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) UpsertParameter(ctx context.Context, productID, parameterID int64, value string) error {
	args := m.Called(ctx, productID, parameterID, value)
	return args.Error(0)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindMissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockProductRepository) CountByShop(ctx context.Context, shopID int64) (int64, error) {
	args := m.Called(ctx, shopID)
	return args.Get(0).(int64), args.Error(1)
}

// MockFeedFetcher is a mock implementation of FeedFetcher
type MockFeedFetcher struct {
	mock.Mock
}

func (m *MockFeedFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	args := m.Called(ctx, feedURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// stubDecoder returns a fixed feed
type stubDecoder struct {
	feed *catalog.Feed
	err  error
}

func (d stubDecoder) Decode(data []byte) (*catalog.Feed, error) {
	return d.feed, d.err
}

// countingLocker records lock usage
type countingLocker struct {
	mu       sync.Mutex
	acquired []string
	released int
	err      error
}

func (l *countingLocker) Acquire(ctx context.Context, key string) (Unlock, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.acquired = append(l.acquired, key)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

// MockFeedArchive is a mock implementation of FeedArchive
type MockFeedArchive struct {
	mock.Mock
}

func (m *MockFeedArchive) Archive(ctx context.Context, ownerID int64, body []byte) (string, error) {
	args := m.Called(ctx, ownerID, body)
	return args.String(0), args.Error(1)
}

// recordingMetrics captures RecordIngest calls
type recordingMetrics struct {
	summaries []*IngestSummary
	errs      []error
}

func (r *recordingMetrics) RecordIngest(ctx context.Context, summary *IngestSummary, err error) {
	r.summaries = append(r.summaries, summary)
	r.errs = append(r.errs, err)
}
