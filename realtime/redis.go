package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/ricabook/lovestayteste/models"

	"github.com/go-redis/redis/v8"
)

// RedisFeed broadcasts message inserts over Redis pub/sub, one channel per
// conversation, so every server instance sees inserts made by its peers.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func conversationChannel(conversationID uint) string {
	return fmt.Sprintf("conversation:%d", conversationID)
}

func (f *RedisFeed) Publish(ctx context.Context, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, conversationChannel(msg.ConversationID), payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, conversationID uint) (<-chan models.Message, func()) {
	sub := f.client.Subscribe(ctx, conversationChannel(conversationID))
	out := make(chan models.Message, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for m := range sub.Channel() {
			var msg models.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				log.Printf("realtime: dropping undecodable payload on %s: %v", m.Channel, err)
				continue
			}
			select {
			case out <- msg:
			case <-done:
				// the subscriber is gone; stop forwarding instead of
				// blocking on its undrained buffer
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			sub.Close()
		})
	}
	return out, cancel
}
