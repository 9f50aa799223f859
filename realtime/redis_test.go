package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

// No server is needed: the subscription is lazy, and cancel must shut the
// forwarding goroutine down and close the stream regardless of delivery.
func TestRedisFeedCancelClosesStream(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:1"})
	defer client.Close()
	feed := NewRedisFeed(client)

	events, cancel := feed.Subscribe(context.Background(), 7)
	cancel()
	cancel() // idempotent

	select {
	case _, open := <-events:
		assert.False(t, open, "stream must be closed, not delivering")
	case <-time.After(2 * time.Second):
		t.Fatal("subscription stream not closed after cancel")
	}
}
