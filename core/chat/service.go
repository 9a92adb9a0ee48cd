package chat

import (
	"context"
	"errors"
	"time"

	"github.com/praveengyadahalli143-byte/TechpG/core"
)

var ErrEmptyMessage = errors.New("a message needs text content or a file")

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		QueryMessagesByProject(ctx context.Context, projectID string) ([]Message, error)
		MarkMessageRead(ctx context.Context, id string) error
		// MarkProjectMessagesRead marks all of a sender type's messages in a
		// project as read (e.g. admin opening a chat reads all user messages).
		MarkProjectMessagesRead(ctx context.Context, projectID, senderType string) error
		// UnreadCountsBySender returns unread message counts grouped by
		// project for the given sender type.
		UnreadCountsBySender(ctx context.Context, senderType string) (map[string]int, error)
		DeleteMessagesByProject(ctx context.Context, projectID string) (int, error)
	}

	// Publisher fans a persisted message out to live subscribers; push
	// delivery is best-effort, the store remains the source of truth.
	Publisher interface {
		PublishMessage(msg Message)
	}

	Service struct {
		repo Repository
		pub  Publisher
	}
)

func NewService(repo Repository, pub Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

func (svc *Service) Send(ctx context.Context, nm NewMessage) (Message, error) {
	nm.Content = core.CleanString(nm.Content)
	if nm.Content == "" && nm.FileURL == "" {
		return Message{}, ErrEmptyMessage
	}
	msg := Message{
		ProjectID:  nm.ProjectID,
		UserID:     nm.UserID,
		SenderType: nm.SenderType,
		Content:    nm.Content,
		FileURL:    nm.FileURL,
		FileName:   nm.FileName,
		FileType:   nm.FileType,
		CreatedAt:  time.Now().UTC(),
	}
	msg, err := svc.repo.CreateMessage(ctx, msg)
	if err != nil {
		return Message{}, err
	}
	if svc.pub != nil {
		svc.pub.PublishMessage(msg)
	}
	return msg, nil
}

func (svc *Service) History(ctx context.Context, projectID string) ([]Message, error) {
	return svc.repo.QueryMessagesByProject(ctx, projectID)
}

func (svc *Service) MarkRead(ctx context.Context, id string) error {
	return svc.repo.MarkMessageRead(ctx, id)
}

func (svc *Service) MarkProjectRead(ctx context.Context, projectID, senderType string) error {
	return svc.repo.MarkProjectMessagesRead(ctx, projectID, senderType)
}

func (svc *Service) UnreadCounts(ctx context.Context, senderType string) (map[string]int, error) {
	return svc.repo.UnreadCountsBySender(ctx, senderType)
}

func (svc *Service) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := svc.repo.DeleteMessagesByProject(ctx, projectID)
	return err
}
