package providers

import (
	"context"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// EventChannelAppointments carries every appointment booked/updated event
const EventChannelAppointments = "appointments:events"

// EventBus defines the interface for publishing and subscribing to appointment events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error

	// Subscribe subscribes to events on a channel until ctx is cancelled
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// NoopEventBus drops published events. It is used when Redis is not configured.
type NoopEventBus struct{}

func (NoopEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	return nil
}

func (NoopEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	ch := make(chan *entities.AppointmentEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NoopEventBus) Close() error { return nil }
