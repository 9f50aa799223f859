package messaging

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/realtime"
	"github.com/ricabook/lovestayteste/services"
	"github.com/ricabook/lovestayteste/utils"
)

// Entry is one row of the conversation view. Confirmed entries carry the
// server id; a provisional entry has a temp- id and exists only locally
// until the insert is confirmed or rolled back.
type Entry struct {
	models.Message
	TempID string `json:"tempID,omitempty"`
}

func (e Entry) Provisional() bool { return e.TempID != "" }

// Channel maintains the time-ordered message view for one conversation and
// gives immediate feedback for locally sent messages ahead of server
// confirmation. A channel owns at most one feed subscription at a time; the
// subscription follows the bound conversation across Load calls.
type Channel struct {
	store    Store
	feed     realtime.Feed
	senderID uint

	mu             sync.Mutex
	conversationID uint
	messages       []Entry
	loading        bool
	gen            uint64
	unsubscribe    func()
}

func NewChannel(store Store, feed realtime.Feed, senderID uint) *Channel {
	return &Channel{store: store, feed: feed, senderID: senderID}
}

// Load binds the channel to a conversation, replaces the view with the
// fetched history and resubscribes the feed. Calling Load again while a
// previous fetch is in flight is safe: each call bumps a generation counter
// and a fetch whose generation is stale discards its result on arrival.
// Loading with conversationID 0 clears the view and fetches nothing.
func (c *Channel) Load(ctx context.Context, conversationID uint) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.conversationID = conversationID

	if conversationID == 0 {
		c.messages = nil
		c.loading = false
		c.mu.Unlock()
		return nil
	}

	c.loading = true
	events, cancel := c.feed.Subscribe(context.Background(), conversationID)
	c.unsubscribe = cancel
	c.mu.Unlock()

	go func() {
		for m := range events {
			c.apply(gen, m)
		}
	}()

	msgs, err := c.store.ListMessages(ctx, conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// the channel moved to another conversation while this fetch was in
		// flight, its result must not overwrite the newer state
		return nil
	}
	c.loading = false
	if err != nil {
		return &services.TransportError{Op: "load messages", Err: err}
	}

	entries := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, Entry{Message: m})
	}
	c.messages = entries
	return nil
}

// apply folds one confirmed insert event into the view:
//  1. events already present by id are ignored, so an overlapping fetch plus
//     push never duplicates a row
//  2. a provisional entry with the same body is promoted in place (the temp
//     id never reaches the server, body text is the best reconciliation key)
//  3. everything else appends in delivery order
func (c *Channel) apply(gen uint64, m models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}

	for _, e := range c.messages {
		if e.ID != 0 && e.ID == m.ID {
			return
		}
	}

	for i, e := range c.messages {
		if e.Provisional() && e.Body == m.Body {
			c.messages[i] = Entry{Message: m}
			return
		}
	}

	c.messages = append(c.messages, Entry{Message: m})
}

// SendMessage appends a provisional entry synchronously, then persists the
// message. On success the provisional entry is promoted to the authoritative
// row; on failure it is removed and the error is returned for the caller to
// surface. Concurrent sends each get their own temp id and reconcile
// independently.
func (c *Channel) SendMessage(ctx context.Context, body string) error {
	trimmed := strings.TrimSpace(body)

	c.mu.Lock()
	conversationID := c.conversationID
	if conversationID == 0 || trimmed == "" {
		c.mu.Unlock()
		return nil
	}
	gen := c.gen
	tempID := "temp-" + utils.GenerateShortToken(8)
	c.messages = append(c.messages, Entry{
		Message: models.Message{
			ConversationID: conversationID,
			SenderID:       c.senderID,
			Body:           trimmed,
			CreatedAt:      time.Now(),
		},
		TempID: tempID,
	})
	c.mu.Unlock()

	m, err := c.store.InsertMessage(ctx, conversationID, c.senderID, trimmed)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// the view was reloaded or rebound mid-send; the provisional entry is
		// already gone, only the error still matters
		if err != nil {
			return &services.TransportError{Op: "send message", Err: err}
		}
		return nil
	}

	if err != nil {
		for i, e := range c.messages {
			if e.TempID == tempID {
				c.messages = append(c.messages[:i], c.messages[i+1:]...)
				break
			}
		}
		return &services.TransportError{Op: "send message", Err: err}
	}

	for i, e := range c.messages {
		if e.TempID == tempID {
			c.messages[i] = Entry{Message: m}
			return nil
		}
	}
	// the feed event won the race and reconciled by body; nothing to do if
	// the row is already present
	for _, e := range c.messages {
		if e.ID == m.ID {
			return nil
		}
	}
	c.messages = append(c.messages, Entry{Message: m})
	return nil
}

// Messages returns a snapshot of the view in display order.
func (c *Channel) Messages() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Channel) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Channel) ConversationID() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Close tears down the feed subscription and invalidates in-flight work.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
