package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu       sync.Mutex
	received []Message
}

func (c *collector) handle(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, msg)
	return nil
}

func (c *collector) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.received...)
}

func TestWatermillBridge_PublishSubscribeRoundtrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewWatermillBridge()
	defer bridge.Close()

	col := &collector{}
	require.NoError(t, bridge.Subscribe(ctx, "test.topic", col.handle))

	sent := Message{
		Topic:    "test.topic",
		UserID:   "user:alice",
		Payload:  []byte(`{"hello":"world"}`),
		Metadata: map[string]string{"trace": "abc123"},
	}
	require.NoError(t, bridge.Publish(ctx, sent))

	require.Eventually(t, func() bool {
		return len(col.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	got := col.messages()[0]
	assert.Equal(t, "test.topic", got.Topic)
	assert.Equal(t, "user:alice", got.UserID)
	assert.Equal(t, sent.Payload, got.Payload)
	assert.Equal(t, "abc123", got.Metadata["trace"])
}

func TestWatermillBridge_TopicsAreIndependent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewWatermillBridge()
	defer bridge.Close()

	one := &collector{}
	two := &collector{}
	require.NoError(t, bridge.Subscribe(ctx, "topic.one", one.handle))
	require.NoError(t, bridge.Subscribe(ctx, "topic.two", two.handle))

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "topic.one", Payload: []byte("a")}))

	require.Eventually(t, func() bool {
		return len(one.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, two.messages())
}

func TestWatermillBridge_CancelStopsSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	bridge := NewWatermillBridge()
	defer bridge.Close()

	col := &collector{}
	require.NoError(t, bridge.Subscribe(ctx, "test.topic", col.handle))
	cancel()

	// Give the subscription loop a moment to wind down before publishing.
	time.Sleep(50 * time.Millisecond)
	_ = bridge.Publish(context.Background(), Message{Topic: "test.topic", Payload: []byte("late")})

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, col.messages())
}
