package realtimesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
)

func TestHubPublishMessage(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(ChatTopic("p1"))
	defer cancel()
	other, cancelOther := hub.Subscribe(ChatTopic("p2"))
	defer cancelOther()

	msg := chat.Message{ID: "m1", ProjectID: "p1", Content: "hello"}
	hub.PublishMessage(msg)

	select {
	case ev := <-ch:
		assert.Equal(t, KindMessage, ev.Kind)
		assert.Equal(t, msg, ev.Payload)
	default:
		t.Fatal("expected a message event")
	}

	select {
	case ev := <-other:
		t.Fatalf("unexpected event on other topic: %+v", ev)
	default:
	}
}

func TestHubFirehose(t *testing.T) {
	hub := NewHub()
	all, cancel := hub.Subscribe(TopicAll)
	defer cancel()

	hub.PublishMessage(chat.Message{ID: "m1", ProjectID: "p1"})
	hub.PublishMessage(chat.Message{ID: "m2", ProjectID: "p2"})

	require.Len(t, all, 2)
	assert.Equal(t, ChatTopic("p1"), (<-all).Topic)
	assert.Equal(t, ChatTopic("p2"), (<-all).Topic)
}

func TestHubSlowConsumerDropped(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(ChatTopic("p1"))
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.PublishTyping("p1", "user", true)
	}
	assert.Len(t, ch, subscriberBuffer, "overflow must be dropped, not block")
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(ChatTopic("p1"))
	cancel()

	_, open := <-ch
	assert.False(t, open)
	hub.PublishTyping("p1", "user", true) // must not panic on closed channel
}

func TestHubPresence(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(ChatTopic("p1"))
	defer cancel()

	hub.Track("p1", "alice")
	hub.Track("p1", "bob")
	assert.ElementsMatch(t, []string{"alice", "bob"}, hub.Snapshot("p1"))

	hub.Untrack("p1", "alice")
	assert.Equal(t, []string{"bob"}, hub.Snapshot("p1"))

	var rosters int
	for len(ch) > 0 {
		ev := <-ch
		require.Equal(t, KindPresence, ev.Kind)
		rosters++
	}
	assert.Equal(t, 3, rosters)
}
