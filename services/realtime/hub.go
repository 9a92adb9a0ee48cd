package realtimesvc

import (
	"fmt"
	"sync"
	"time"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
)

// Event kinds carried over a topic.
const (
	KindMessage  = "message"
	KindTyping   = "typing"
	KindPresence = "presence"
)

// subscriber channels are buffered; a full one gets the event dropped so a
// stuck client can never stall the hub.
const subscriberBuffer = 16

// ChatTopic is the per-project channel name.
func ChatTopic(projectID string) string { return "chat:" + projectID }

// TopicAll receives every published event regardless of topic. The back
// office subscribes here to watch all conversations at once.
const TopicAll = "*"

type (
	Event struct {
		Topic   string      `json:"topic"`
		Kind    string      `json:"kind"`
		Payload interface{} `json:"payload"`
	}

	TypingPayload struct {
		ProjectID  string `json:"project_id"`
		SenderType string `json:"sender_type"`
		Typing     bool   `json:"typing"`
	}

	PresencePayload struct {
		ProjectID string   `json:"project_id"`
		Online    []string `json:"online"`
	}

	subscriber struct {
		id int64
		ch chan Event
	}

	// Hub is a process-local broadcast fabric for chat, typing, and
	// presence events.
	Hub struct {
		mu       sync.RWMutex
		subs     map[string][]subscriber
		presence map[string]map[string]time.Time // topic -> client -> joined at
		nextID   int64
	}
)

var _ chat.Publisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		subs:     make(map[string][]subscriber),
		presence: make(map[string]map[string]time.Time),
	}
}

// Subscribe registers a listener on a topic. The returned cancel func must
// be called when the listener goes away.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	h.mu.Lock()
	h.nextID++
	sub := subscriber{id: h.nextID, ch: make(chan Event, subscriberBuffer)}
	h.subs[topic] = append(h.subs[topic], sub)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subs[topic]
		for i, s := range subs {
			if s.id == sub.id {
				h.subs[topic] = append(subs[:i], subs[i+1:]...)
				close(s.ch)
				break
			}
		}
		if len(h.subs[topic]) == 0 {
			delete(h.subs, topic)
		}
	}
	return sub.ch, cancel
}

func (h *Hub) Publish(topic, kind string, payload interface{}) {
	ev := Event{Topic: topic, Kind: kind, Payload: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[topic] {
		select {
		case sub.ch <- ev:
		default: // slow consumer, drop
		}
	}
	if topic == TopicAll {
		return
	}
	for _, sub := range h.subs[TopicAll] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// PublishMessage fans a persisted chat message out to its project channel.
func (h *Hub) PublishMessage(msg chat.Message) {
	h.Publish(ChatTopic(msg.ProjectID), KindMessage, msg)
}

func (h *Hub) PublishTyping(projectID, senderType string, typing bool) {
	h.Publish(ChatTopic(projectID), KindTyping, TypingPayload{
		ProjectID:  projectID,
		SenderType: senderType,
		Typing:     typing,
	})
}

// Track marks a client online on a topic and broadcasts the new roster.
func (h *Hub) Track(projectID, clientID string) {
	topic := ChatTopic(projectID)
	h.mu.Lock()
	if h.presence[topic] == nil {
		h.presence[topic] = make(map[string]time.Time)
	}
	h.presence[topic][clientID] = time.Now().UTC()
	h.mu.Unlock()

	h.Publish(topic, KindPresence, PresencePayload{ProjectID: projectID, Online: h.Snapshot(projectID)})
}

func (h *Hub) Untrack(projectID, clientID string) {
	topic := ChatTopic(projectID)
	h.mu.Lock()
	delete(h.presence[topic], clientID)
	if len(h.presence[topic]) == 0 {
		delete(h.presence, topic)
	}
	h.mu.Unlock()

	h.Publish(topic, KindPresence, PresencePayload{ProjectID: projectID, Online: h.Snapshot(projectID)})
}

// Snapshot returns the clients currently tracked on a project channel.
func (h *Hub) Snapshot(projectID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := h.presence[ChatTopic(projectID)]
	online := make([]string, 0, len(clients))
	for id := range clients {
		online = append(online, id)
	}
	return online
}

// SubscriberCount is exposed for the debug endpoints.
func (h *Hub) SubscriberCount() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var n int
	for _, subs := range h.subs {
		n += len(subs)
	}
	return fmt.Sprintf("%d subscribers on %d topics", n, len(h.subs))
}
