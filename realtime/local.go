package realtime

import (
	"context"
	"log"
	"sync"

	"github.com/ricabook/lovestayteste/models"
)

// LocalFeed is an in-process Feed for single-node deployments and tests.
type LocalFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[uint]map[int]chan models.Message
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[uint]map[int]chan models.Message)}
}

func (f *LocalFeed) Publish(_ context.Context, msg models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[msg.ConversationID] {
		select {
		case ch <- msg:
		default:
			// slow subscriber, drop rather than block the publisher
			log.Printf("realtime: dropping event for conversation %d, subscriber buffer full", msg.ConversationID)
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(_ context.Context, conversationID uint) (<-chan models.Message, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++

	ch := make(chan models.Message, 16)
	if f.subs[conversationID] == nil {
		f.subs[conversationID] = make(map[int]chan models.Message)
	}
	f.subs[conversationID][id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[conversationID][id]; ok {
			delete(f.subs[conversationID], id)
			close(sub)
		}
	}
	return ch, cancel
}
