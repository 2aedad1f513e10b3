package jamai

import (
	"context"
	"sync"
	"time"
)

// tokenBucket throttles outbound calls. A nil bucket means no limit.
type tokenBucket struct {
	tokens chan struct{}
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
		done:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}
	bucket.ticker = time.NewTicker(interval)

	go bucket.refill()
	return bucket
}

func (b *tokenBucket) refill() {
	for {
		select {
		case <-b.done:
			return
		case <-b.ticker.C:
			select {
			case b.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Wait blocks until a token is available or ctx is done
func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

// Stop halts the refill goroutine
func (b *tokenBucket) Stop() {
	b.once.Do(func() {
		b.ticker.Stop()
		close(b.done)
	})
}
