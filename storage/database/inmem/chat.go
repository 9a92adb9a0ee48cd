package inmemrepos

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
)

type chatRepository struct {
	db *DB
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	msg.ID = uuid.New().String()
	r.db.messages[msg.ID] = msg
	return msg, nil
}

func (r *chatRepository) QueryMessagesByProject(_ context.Context, projectID string) ([]chat.Message, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var msgs []chat.Message
	for _, m := range r.db.messages {
		if m.ProjectID == projectID {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

func (r *chatRepository) MarkMessageRead(_ context.Context, id string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if m, ok := r.db.messages[id]; ok {
		m.IsRead = true
		r.db.messages[id] = m
	}
	return nil
}

func (r *chatRepository) MarkProjectMessagesRead(_ context.Context, projectID, senderType string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for id, m := range r.db.messages {
		if m.ProjectID == projectID && m.SenderType == senderType && !m.IsRead {
			m.IsRead = true
			r.db.messages[id] = m
		}
	}
	return nil
}

func (r *chatRepository) UnreadCountsBySender(_ context.Context, senderType string) (map[string]int, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, m := range r.db.messages {
		if m.SenderType == senderType && !m.IsRead {
			counts[m.ProjectID]++
		}
	}
	return counts, nil
}

func (r *chatRepository) DeleteMessagesByProject(_ context.Context, projectID string) (int, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	var n int
	for id, m := range r.db.messages {
		if m.ProjectID == projectID {
			delete(r.db.messages, id)
			n++
		}
	}
	return n, nil
}
