package inmemrepos

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	n.ID = uuid.New().String()
	r.db.notifications[n.ID] = n
	return n, nil
}

func (r *notificationRepository) QueryNotificationsByUser(_ context.Context, userID string) ([]notification.Notification, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var notifs []notification.Notification
	for _, n := range r.db.notifications {
		if n.UserID == userID {
			notifs = append(notifs, n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (r *notificationRepository) MarkNotificationRead(_ context.Context, id string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if n, ok := r.db.notifications[id]; ok {
		n.IsRead = true
		r.db.notifications[id] = n
	}
	return nil
}

func (r *notificationRepository) DeleteNotificationsByProject(_ context.Context, projectID string) (int, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	var count int
	for id, n := range r.db.notifications {
		if n.ProjectID == projectID {
			delete(r.db.notifications, id)
			count++
		}
	}
	return count, nil
}
