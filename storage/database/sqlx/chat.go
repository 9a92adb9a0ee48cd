package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
)

type messageRow struct {
	ID         string      `db:"id"`
	ProjectID  string      `db:"project_id"`
	UserID     string      `db:"user_id"`
	SenderType string      `db:"sender_type"`
	Content    string      `db:"content"`
	FileURL    null.String `db:"file_url"`
	FileName   null.String `db:"file_name"`
	FileType   null.String `db:"file_type"`
	IsRead     bool        `db:"is_read"`
	CreatedAt  time.Time   `db:"created_at"`
}

func newMessageRow(msg chat.Message) messageRow {
	return messageRow{
		ID:         msg.ID,
		ProjectID:  msg.ProjectID,
		UserID:     msg.UserID,
		SenderType: msg.SenderType,
		Content:    msg.Content,
		FileURL:    null.NewString(msg.FileURL, msg.FileURL != ""),
		FileName:   null.NewString(msg.FileName, msg.FileName != ""),
		FileType:   null.NewString(msg.FileType, msg.FileType != ""),
		IsRead:     msg.IsRead,
		CreatedAt:  msg.CreatedAt,
	}
}

func (r messageRow) toMessage() chat.Message {
	return chat.Message{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		UserID:     r.UserID,
		SenderType: r.SenderType,
		Content:    r.Content,
		FileURL:    r.FileURL.String,
		FileName:   r.FileName.String,
		FileType:   r.FileType.String,
		IsRead:     r.IsRead,
		CreatedAt:  r.CreatedAt,
	}
}

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *sqlx.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	msg.ID = uuid.New().String()
	query := `
		INSERT INTO messages (id, project_id, user_id, sender_type, content, file_url, file_name, file_type, is_read, created_at)
		VALUES (:id, :project_id, :user_id, :sender_type, :content, :file_url, :file_name, :file_type, :is_read, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, newMessageRow(msg)); err != nil {
		return chat.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

func (repo chatRepository) QueryMessagesByProject(ctx context.Context, projectID string) ([]chat.Message, error) {
	var rows []messageRow
	query := `SELECT * FROM messages WHERE project_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	msgs := make([]chat.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toMessage())
	}
	return msgs, nil
}

func (repo chatRepository) MarkMessageRead(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return nil
}

func (repo chatRepository) MarkProjectMessagesRead(ctx context.Context, projectID, senderType string) error {
	query := `UPDATE messages SET is_read = TRUE WHERE project_id = $1 AND sender_type = $2 AND is_read = FALSE`
	if _, err := repo.db.ExecContext(ctx, query, projectID, senderType); err != nil {
		return errors.Wrap(err, "marking project messages read")
	}
	return nil
}

func (repo chatRepository) UnreadCountsBySender(ctx context.Context, senderType string) (map[string]int, error) {
	var rows []struct {
		ProjectID string `db:"project_id"`
		Count     int    `db:"count"`
	}
	query := `
		SELECT project_id, COUNT(*) AS count
		FROM messages
		WHERE sender_type = $1 AND is_read = FALSE
		GROUP BY project_id`
	if err := repo.db.SelectContext(ctx, &rows, query, senderType); err != nil {
		return nil, errors.Wrap(err, "counting unread messages")
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.ProjectID] = r.Count
	}
	return counts, nil
}

func (repo chatRepository) DeleteMessagesByProject(ctx context.Context, projectID string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM messages WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting messages")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
