package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
)

// CacheInvalidationService drops cached diagnostics whenever an appointment
// event changes the row counts they report
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for appointment events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelAppointments)
	if err != nil {
		return fmt.Errorf("failed to subscribe to appointment events: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if !s.started {
		return
	}
	<-s.done
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.AppointmentEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.AppointmentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidateDiagnostics(ctx); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to invalidate diagnostics cache")
		return
	}
	log.Debug().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Invalidated diagnostics cache")
}

// InvalidateDiagnostics removes the cached diagnostics response
func (s *CacheInvalidationService) InvalidateDiagnostics(ctx context.Context) error {
	if err := s.cache.Delete(ctx, providers.HTTPCacheKey(providers.DiagnosticsCachePath, "")); err != nil {
		return fmt.Errorf("failed to invalidate diagnostics cache: %w", err)
	}
	return nil
}
