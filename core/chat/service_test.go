package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	Repository
	created []Message
}

func (r *fakeRepo) CreateMessage(_ context.Context, msg Message) (Message, error) {
	msg.ID = "msg-1"
	r.created = append(r.created, msg)
	return msg, nil
}

type fakePublisher struct {
	published []Message
}

func (p *fakePublisher) PublishMessage(msg Message) {
	p.published = append(p.published, msg)
}

func TestServiceSend(t *testing.T) {
	ctx := context.Background()

	t.Run("persists then publishes", func(t *testing.T) {
		repo := &fakeRepo{}
		pub := &fakePublisher{}
		svc := NewService(repo, pub)

		msg, err := svc.Send(ctx, NewMessage{
			ProjectID:  "p1",
			UserID:     "u1",
			SenderType: SenderUser,
			Content:    "  hello  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.Content)
		assert.False(t, msg.CreatedAt.IsZero())

		require.Len(t, repo.created, 1)
		require.Len(t, pub.published, 1)
		assert.Equal(t, "msg-1", pub.published[0].ID)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, nil)

		_, err := svc.Send(ctx, NewMessage{ProjectID: "p1", UserID: "u1", SenderType: SenderUser, Content: "   "})
		assert.Equal(t, ErrEmptyMessage, err)
	})

	t.Run("file-only message is allowed", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, nil)

		msg, err := svc.Send(ctx, NewMessage{
			ProjectID:  "p1",
			UserID:     "u1",
			SenderType: SenderAdmin,
			FileURL:    "https://files.example.com/spec.pdf",
			FileName:   "spec.pdf",
			FileType:   "application/pdf",
		})
		require.NoError(t, err)
		assert.Empty(t, msg.Content)
		assert.Equal(t, "spec.pdf", msg.FileName)
	})
}

func TestApplyInbound(t *testing.T) {
	msgs := []Message{{ID: "a"}, {ID: "b"}}

	msgs = ApplyInbound(msgs, Message{ID: "c"})
	require.Len(t, msgs, 3)

	// at-least-once delivery must not duplicate entries
	msgs = ApplyInbound(msgs, Message{ID: "b"})
	assert.Len(t, msgs, 3)
}

func TestTypingTracker(t *testing.T) {
	now := time.Now()
	tracker := NewTypingTracker(3 * time.Second)
	tracker.now = func() time.Time { return now }

	tracker.Set("p1:user", true)
	tracker.Set("p2:admin", true)
	assert.True(t, tracker.IsTyping("p1:user"))
	assert.ElementsMatch(t, []string{"p1:user", "p2:admin"}, tracker.Active())

	// an explicit stop clears immediately
	tracker.Set("p2:admin", false)
	assert.False(t, tracker.IsTyping("p2:admin"))

	// a stale signal expires on its own
	now = now.Add(4 * time.Second)
	assert.False(t, tracker.IsTyping("p1:user"))
	assert.Empty(t, tracker.Active())
}
