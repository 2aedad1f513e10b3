package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/pkg/config"
)

func configuredJamAI() *config.JamAIConfig {
	return &config.JamAIConfig{
		APIKey:             "jamai_sk_live",
		ChatTableID:        "health_assistant",
		SymptomTableID:     "symptom_classifier",
		AppointmentTableID: "appointment_bookings",
	}
}

type MockGenTablesProvider struct {
	mock.Mock
}

func (m *MockGenTablesProvider) AddRow(ctx context.Context, kind providers.TableKind, tableID string, data map[string]interface{}) (*providers.GeneratedRow, error) {
	args := m.Called(ctx, kind, tableID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.GeneratedRow), args.Error(1)
}

func (m *MockGenTablesProvider) ListRows(ctx context.Context, kind providers.TableKind, tableID string) ([]map[string]interface{}, error) {
	args := m.Called(ctx, kind, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}

func (m *MockGenTablesProvider) UpdateRow(ctx context.Context, kind providers.TableKind, tableID, rowID string, data map[string]interface{}) (interface{}, error) {
	args := m.Called(ctx, kind, tableID, rowID, data)
	return args.Get(0), args.Error(1)
}

func (m *MockGenTablesProvider) ListTables(ctx context.Context, kind providers.TableKind) (interface{}, error) {
	args := m.Called(ctx, kind)
	return args.Get(0), args.Error(1)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, request *entities.AppointmentRequest) (*entities.AppointmentConfirmation, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AppointmentConfirmation), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context) ([]entities.Appointment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, update *entities.AppointmentUpdate) (interface{}, error) {
	args := m.Called(ctx, update)
	return args.Get(0), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByRow(ctx context.Context, rowID string, limit int) ([]*entities.AuditEntry, error) {
	args := m.Called(ctx, rowID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AuditEntry), args.Error(1)
}

type MockAdminCredentialRepository struct {
	mock.Mock
}

func (m *MockAdminCredentialRepository) LoadAll(ctx context.Context) ([]entities.AdminCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.AdminCredential), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, phoneNumber, message string) error {
	args := m.Called(ctx, phoneNumber, message)
	return args.Error(0)
}

// recordingEventBus keeps published events and delivers them to subscribers in-process
type recordingEventBus struct {
	mu          sync.Mutex
	published   []*entities.AppointmentEvent
	subscribers []chan *entities.AppointmentEvent
	publishErr  error
}

func (b *recordingEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, event)
	for _, sub := range b.subscribers {
		sub <- event
	}
	return nil
}

func (b *recordingEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.AppointmentEvent, 8)
	b.subscribers = append(b.subscribers, ch)
	return ch, nil
}

func (b *recordingEventBus) Close() error { return nil }

func (b *recordingEventBus) Published() []*entities.AppointmentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.AppointmentEvent(nil), b.published...)
}

// memoryCache is a CacheProvider over a map
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, providers.ErrCacheMiss
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *memoryCache) Deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}
