package notification

import (
	"context"
	"errors"
	"time"

	"github.com/praveengyadahalli143-byte/TechpG/core"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotificationsByUser(ctx context.Context, userID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) error
		DeleteNotificationsByProject(ctx context.Context, projectID string) (int, error)
	}

	// NewNotification contains information needed to send a Notification.
	NewNotification struct {
		UserID    string `json:"user_id" validate:"required"`
		ProjectID string `json:"project_id" validate:"required"`
		Title     string `json:"title" validate:"required"`
		Message   string `json:"message" validate:"required"`
		Type      string `json:"type"`
		SentBy    string `json:"sent_by"`
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Send(ctx context.Context, nn NewNotification) (Notification, error) {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	if nn.Type == "" || !ValidType(nn.Type) {
		nn.Type = TypeInfo
	}
	n := Notification{
		UserID:    nn.UserID,
		ProjectID: nn.ProjectID,
		Title:     nn.Title,
		Message:   nn.Message,
		Type:      nn.Type,
		SentBy:    nn.SentBy,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, n)
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUser(ctx, userID)
}

func (svc *Service) MarkRead(ctx context.Context, id string) error {
	return svc.repo.MarkNotificationRead(ctx, id)
}

func (svc *Service) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := svc.repo.DeleteNotificationsByProject(ctx, projectID)
	return err
}
