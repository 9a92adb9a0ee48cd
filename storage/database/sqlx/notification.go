package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
)

type notificationRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	ProjectID string      `db:"project_id"`
	Title     string      `db:"title"`
	Message   string      `db:"message"`
	Type      string      `db:"type"`
	IsRead    bool        `db:"is_read"`
	SentBy    null.String `db:"sent_by"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r notificationRow) toNotification() notification.Notification {
	return notification.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		ProjectID: r.ProjectID,
		Title:     r.Title,
		Message:   r.Message,
		Type:      r.Type,
		IsRead:    r.IsRead,
		SentBy:    r.SentBy.String,
		CreatedAt: r.CreatedAt,
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = uuid.New().String()
	row := notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		ProjectID: n.ProjectID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		SentBy:    null.NewString(n.SentBy, n.SentBy != ""),
		CreatedAt: n.CreatedAt,
	}
	query := `
		INSERT INTO notifications (id, user_id, project_id, title, message, type, is_read, sent_by, created_at)
		VALUES (:id, :user_id, :project_id, :title, :message, :type, :is_read, :sent_by, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) QueryNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	var rows []notificationRow
	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifs = append(notifs, r.toNotification())
	}
	return notifs, nil
}

func (repo notificationRepository) MarkNotificationRead(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return nil
}

func (repo notificationRepository) DeleteNotificationsByProject(ctx context.Context, projectID string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM notifications WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting notifications")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
