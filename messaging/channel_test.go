package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/realtime"
	"github.com/ricabook/lovestayteste/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeStore is an in-memory Store with injectable failures and delays.
type fakeStore struct {
	mu        sync.Mutex
	nextID    uint
	messages  map[uint][]models.Message
	feed      realtime.Feed
	insertErr error
	listDelay chan struct{} // when set, ListMessages blocks until closed
}

func newFakeStore(feed realtime.Feed) *fakeStore {
	return &fakeStore{messages: make(map[uint][]models.Message), feed: feed}
}

func (s *fakeStore) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	s.mu.Lock()
	delay := s.listDelay
	s.mu.Unlock()
	if delay != nil {
		<-delay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages[conversationID]))
	copy(out, s.messages[conversationID])
	return out, nil
}

func (s *fakeStore) InsertMessage(ctx context.Context, conversationID, senderID uint, body string) (models.Message, error) {
	s.mu.Lock()
	if s.insertErr != nil {
		err := s.insertErr
		s.mu.Unlock()
		return models.Message{}, err
	}
	s.nextID++
	msg := models.Message{
		ID:             s.nextID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	s.mu.Unlock()

	if s.feed != nil {
		s.feed.Publish(ctx, msg)
	}
	return msg, nil
}

func (s *fakeStore) seed(conversationID, senderID uint, body string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg := models.Message{
		ID:             s.nextID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	return msg
}

func TestLoadFetchesHistoryInOrder(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)
	store.seed(1, 10, "first")
	store.seed(1, 20, "second")

	channel := NewChannel(store, feed, 10)
	defer channel.Close()

	require.NoError(t, channel.Load(context.Background(), 1))

	entries := channel.Messages()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Body)
	assert.Equal(t, "second", entries[1].Body)
	assert.False(t, channel.Loading())
}

func TestSendMessageOptimisticThenConfirmed(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)

	channel := NewChannel(store, feed, 10)
	defer channel.Close()
	require.NoError(t, channel.Load(context.Background(), 1))

	require.NoError(t, channel.SendMessage(context.Background(), "hello"))

	entries := channel.Messages()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Body)
	assert.False(t, entries[0].Provisional(), "entry is promoted once the insert returns")
	assert.NotZero(t, entries[0].ID)

	// the feed also delivered the insert; the view must not grow a duplicate
	assert.Never(t, func() bool {
		return len(channel.Messages()) != 1
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestSendMessageBlankIsNoOp(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)

	channel := NewChannel(store, feed, 10)
	defer channel.Close()
	require.NoError(t, channel.Load(context.Background(), 1))

	require.NoError(t, channel.SendMessage(context.Background(), "   "))
	assert.Empty(t, channel.Messages())
}

func TestSendMessageRollbackOnFailure(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)
	store.insertErr = errors.New("connection reset")

	channel := NewChannel(store, feed, 10)
	defer channel.Close()
	require.NoError(t, channel.Load(context.Background(), 1))

	err := channel.SendMessage(context.Background(), "doomed")
	var transportErr *services.TransportError
	require.ErrorAs(t, err, &transportErr)

	assert.Empty(t, channel.Messages(), "the provisional entry is removed on failure")
}

func TestFeedEventsAppendAndDeduplicate(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)

	channel := NewChannel(store, feed, 10)
	defer channel.Close()
	require.NoError(t, channel.Load(context.Background(), 1))

	incoming := models.Message{ID: 77, ConversationID: 1, SenderID: 20, Body: "from the other side", CreatedAt: time.Now()}
	require.NoError(t, feed.Publish(context.Background(), incoming))
	require.NoError(t, feed.Publish(context.Background(), incoming)) // redelivery

	require.Eventually(t, func() bool {
		return len(channel.Messages()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Never(t, func() bool {
		return len(channel.Messages()) != 1
	}, 200*time.Millisecond, 20*time.Millisecond)

	entries := channel.Messages()
	assert.Equal(t, uint(77), entries[0].ID)
}

func TestConcurrentSendsReconcileIndependently(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)

	channel := NewChannel(store, feed, 10)
	defer channel.Close()
	require.NoError(t, channel.Load(context.Background(), 1))

	var wg sync.WaitGroup
	for _, body := range []string{"one", "two", "three"} {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			assert.NoError(t, channel.SendMessage(context.Background(), body))
		}(body)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		entries := channel.Messages()
		if len(entries) != 3 {
			return false
		}
		for _, e := range entries {
			if e.Provisional() || e.ID == 0 {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)

	seen := map[string]bool{}
	for _, e := range channel.Messages() {
		seen[e.Body] = true
	}
	assert.Equal(t, map[string]bool{"one": true, "two": true, "three": true}, seen)
}

func TestStaleLoadIsDiscardedOnConversationSwitch(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)
	store.seed(1, 10, "old conversation history")
	store.seed(2, 20, "new conversation history")

	release := make(chan struct{})
	store.listDelay = release

	channel := NewChannel(store, feed, 10)
	defer channel.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// slow fetch for conversation 1, still in flight when we switch
		channel.Load(context.Background(), 1)
	}()

	// let the first Load pass its setup before rebinding
	require.Eventually(t, func() bool {
		return channel.ConversationID() == 1
	}, time.Second, time.Millisecond)

	store.mu.Lock()
	store.listDelay = nil
	store.mu.Unlock()
	require.NoError(t, channel.Load(context.Background(), 2))
	close(release)
	wg.Wait()

	entries := channel.Messages()
	require.Len(t, entries, 1)
	assert.Equal(t, "new conversation history", entries[0].Body)
	assert.Equal(t, uint(2), channel.ConversationID())
}

func TestLoadZeroClearsView(t *testing.T) {
	feed := realtime.NewLocalFeed()
	store := newFakeStore(feed)
	store.seed(1, 10, "hello")

	channel := NewChannel(store, feed, 10)
	defer channel.Close()
	require.NoError(t, channel.Load(context.Background(), 1))
	require.NotEmpty(t, channel.Messages())

	require.NoError(t, channel.Load(context.Background(), 0))
	assert.Empty(t, channel.Messages())
	assert.False(t, channel.Loading())
}

func openMessagingDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Conversation{}, &models.Message{}))
	return db
}

// Full round trip through the persistent store: the recipient's channel on
// the same feed sees exactly one copy of a sent message.
func TestGormStoreRoundTrip(t *testing.T) {
	db := openMessagingDB(t)
	feed := realtime.NewLocalFeed()
	store := NewGormStore(db, feed)

	conversation := models.Conversation{GuestID: 10, OwnerID: 20}
	require.NoError(t, db.Create(&conversation).Error)

	sender := NewChannel(store, feed, 10)
	defer sender.Close()
	receiver := NewChannel(store, feed, 20)
	defer receiver.Close()

	require.NoError(t, sender.Load(context.Background(), conversation.ID))
	require.NoError(t, receiver.Load(context.Background(), conversation.ID))

	require.NoError(t, sender.SendMessage(context.Background(), "hello"))

	require.Eventually(t, func() bool {
		entries := receiver.Messages()
		return len(entries) == 1 && entries[0].Body == "hello" && !entries[0].Provisional()
	}, time.Second, 10*time.Millisecond)

	assert.Never(t, func() bool {
		return len(receiver.Messages()) != 1 || len(sender.Messages()) != 1
	}, 200*time.Millisecond, 20*time.Millisecond)

	// the row is durable: a fresh load sees it without the feed
	fresh := NewChannel(store, realtime.NewLocalFeed(), 20)
	defer fresh.Close()
	require.NoError(t, fresh.Load(context.Background(), conversation.ID))
	entries := fresh.Messages()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Body)
	assert.Equal(t, uint(10), entries[0].SenderID)

	// last_message_at was bumped by the insert
	var reloaded models.Conversation
	require.NoError(t, db.First(&reloaded, conversation.ID).Error)
	assert.WithinDuration(t, time.Now(), reloaded.LastMessageAt, 5*time.Second)
}
