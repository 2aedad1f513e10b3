package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	redisclient "github.com/zatekoja/clinicassistant/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 64

// RedisEventBus implements the EventBus interface using Redis Pub/Sub.
// One Redis subscription per channel fans out to every local subscriber.
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   map[string]map[chan *entities.AppointmentEvent]struct{}
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string]map[chan *entities.AppointmentEvent]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Published appointment event")
	return nil
}

// Subscribe subscribes to events on a channel
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	b.mu.Lock()

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}

	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.AppointmentEvent]struct{})
	}

	eventChan := make(chan *entities.AppointmentEvent, subscriberBuffer)
	b.subscribers[channel][eventChan] = struct{}{}
	subscriberCount := len(b.subscribers[channel])
	b.mu.Unlock()

	log.Info().Str("channel", channel).Int("subscribers", subscriberCount).Msg("Subscribed to appointment events")

	go func() {
		<-ctx.Done()
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	defer b.closeChannel(channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.AppointmentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Dropping malformed appointment event")
				continue
			}

			b.mu.RLock()
			for subscriber := range b.subscribers[channel] {
				select {
				case subscriber <- &event:
				default:
					log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber buffer full, skipping event")
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, eventChan chan *entities.AppointmentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers, exists := b.subscribers[channel]
	if !exists {
		return
	}
	if _, ok := subscribers[eventChan]; !ok {
		return
	}

	delete(subscribers, eventChan)
	close(eventChan)

	if len(subscribers) == 0 {
		delete(b.subscribers, channel)
		if pubsub, ok := b.subscriptions[channel]; ok {
			_ = pubsub.Close()
			delete(b.subscriptions, channel)
		}
	}
}

func (b *RedisEventBus) closeChannel(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subscriber := range b.subscribers[channel] {
		close(subscriber)
	}
	delete(b.subscribers, channel)

	if pubsub, ok := b.subscriptions[channel]; ok {
		delete(b.subscriptions, channel)
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close subscription %s: %w", channel, err)
		}
	}
	return nil
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	channels := make([]string, 0, len(b.subscriptions))
	for channel := range b.subscriptions {
		channels = append(channels, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range channels {
		if err := b.closeChannel(channel); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
