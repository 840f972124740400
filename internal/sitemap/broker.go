package sitemap

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kailashsur/filmyfly/internal/queue"
)

// EventPublisher is implemented by *queue.Publisher.
type EventPublisher interface {
	PublishSitemapRequested(ctx context.Context, ev queue.SitemapRequested) error
}

// BrokerSubmitter routes requests through the message broker and falls back
// to the local worker when publishing fails.  Close must run before the
// local worker is closed.
type BrokerSubmitter struct {
	pub     EventPublisher
	local   Submitter
	log     Logger
	timeout time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewBrokerSubmitter(pub EventPublisher, local Submitter, log Logger) *BrokerSubmitter {
	return &BrokerSubmitter{pub: pub, local: local, log: log, timeout: 5 * time.Second}
}

// Submit publishes in the background.  It reports false only after Close.
func (b *BrokerSubmitter) Submit(reason string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	ev := queue.SitemapRequested{
		ID:          uuid.NewString(),
		Reason:      reason,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := b.pub.PublishSitemapRequested(ctx, ev); err != nil {
			b.log.Warnf("sitemap request %s not published, running locally: %v", ev.ID, err)
			b.local.Submit(reason)
		}
	}()
	return true
}

// Close stops accepting requests and waits for pending publishes, including
// their local fallbacks.
func (b *BrokerSubmitter) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.inflight.Wait()
}

// HandleRequested feeds a consumed broker message into the local worker.
func HandleRequested(local Submitter, log Logger) queue.Handler {
	return func(_ context.Context, ev queue.SitemapRequested) error {
		if !local.Submit("broker: " + ev.Reason) {
			log.Infof("sitemap request %s coalesced", ev.ID)
		}
		return nil
	}
}
