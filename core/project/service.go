package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

var (
	ErrNotFound      = errors.New("project not found")
	ErrMemberExists  = errors.New("this email is already a team member")
	ErrInvalidStatus = errors.New("invalid project status")
	ErrInvalidType   = errors.New("invalid project type")
)

// statusNotificationTypes maps a new project status to the notification type
// sent alongside it.
var statusNotificationTypes = map[string]string{
	StatusApproved:   notification.TypeApproval,
	StatusRejected:   notification.TypeRejection,
	StatusInProgress: notification.TypeInfo,
	StatusCompleted:  notification.TypeInfo,
	StatusPending:    notification.TypeStatusUpdate,
}

type (
	Repository interface {
		CreateProject(ctx context.Context, p Project) (Project, error)
		GetProject(ctx context.Context, id string) (Project, error)
		// GetProjectByOwner returns the owner's project, if any.
		GetProjectByOwner(ctx context.Context, userID string) (Project, error)
		// QueryProjects joins each project's owner; filter may be nil.
		QueryProjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error)
		UpdateProjectStatus(ctx context.Context, id, status string) (Project, error)
		DeleteProject(ctx context.Context, id string) error

		CreateUpdate(ctx context.Context, u Update) (Update, error)
		QueryRecentUpdates(ctx context.Context, limit int) ([]Update, error)
		DeleteUpdatesByProject(ctx context.Context, projectID string) (int, error)

		CreateMember(ctx context.Context, m Member) (Member, error)
		QueryMembers(ctx context.Context, projectID string) ([]Member, error)
		// GetMembershipByEmail returns any membership for the email.
		GetMembershipByEmail(ctx context.Context, email string) (Member, error)
		DeleteMembersByProject(ctx context.Context, projectID string) (int, error)
	}

	Service struct {
		repo     Repository
		usrSvc   *user.Service
		chatSvc  *chat.Service
		notifSvc *notification.Service
		logger   core.Logger
	}
)

func NewService(repo Repository, usrSvc *user.Service, chatSvc *chat.Service, notifSvc *notification.Service, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		usrSvc:   usrSvc,
		chatSvc:  chatSvc,
		notifSvc: notifSvc,
		logger:   logger,
	}
}

// Create registers a project for its owner; called by the registration pipeline.
func (svc *Service) Create(ctx context.Context, ownerID, projectType, statement string) (Project, error) {
	if !ValidType(projectType) {
		return Project{}, ErrInvalidType
	}
	now := time.Now().UTC()
	p := Project{
		UserID:           ownerID,
		ProjectType:      projectType,
		ProblemStatement: statement,
		Status:           StatusPending,
		RegistrationDate: now,
		LastUpdated:      now,
	}
	return svc.repo.CreateProject(ctx, p)
}

func (svc *Service) Get(ctx context.Context, id string) (Project, error) {
	return svc.repo.GetProject(ctx, id)
}

// GetForUser resolves the project a user may access: their own first, then
// one they were invited to as a team member.
func (svc *Service) GetForUser(ctx context.Context, usr user.User) (Project, error) {
	p, err := svc.repo.GetProjectByOwner(ctx, usr.ID)
	if err == nil {
		return p, nil
	}
	if err != ErrNotFound {
		return Project{}, err
	}
	m, err := svc.repo.GetMembershipByEmail(ctx, core.CleanString(usr.Email, true /* lower */))
	if err != nil {
		return Project{}, err
	}
	return svc.repo.GetProject(ctx, m.ProjectID)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error) {
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "registration_date", Ascending: false}}
	}
	return svc.repo.QueryProjects(ctx, filter, ordering)
}

// UpdateStatus moves a project through its lifecycle: the project row is
// updated, an audit Update is recorded, the owner is notified, and an
// approval additionally drops a congratulatory message into the project chat.
func (svc *Service) UpdateStatus(ctx context.Context, id, status, note, adminID string) (Project, error) {
	if !ValidStatus(status) {
		return Project{}, ErrInvalidStatus
	}

	p, err := svc.repo.UpdateProjectStatus(ctx, id, status)
	if err != nil {
		return Project{}, err
	}

	updateText := note
	if updateText == "" {
		updateText = fmt.Sprintf("Status changed to %s", status)
	}
	if _, err = svc.repo.CreateUpdate(ctx, Update{
		ProjectID:       id,
		UpdateText:      updateText,
		StatusChangedTo: status,
		UpdatedBy:       adminID,
		CreatedAt:       time.Now().UTC(),
	}); err != nil {
		return Project{}, err
	}

	readable := strings.ReplaceAll(status, "_", " ")
	msg := strings.TrimSpace(fmt.Sprintf("Your %s project status has been updated to %q. %s", p.ProjectType, readable, note))
	if _, err = svc.notifSvc.Send(ctx, notification.NewNotification{
		UserID:    p.UserID,
		ProjectID: id,
		Title:     fmt.Sprintf("Project Status: %s", strings.ToUpper(readable)),
		Message:   msg,
		Type:      statusNotificationTypes[status],
		SentBy:    adminID,
	}); err != nil {
		// the status change itself stuck; notification loss is not fatal
		svc.logger.Error(fmt.Sprintf("sending status notification: %v", err), err)
	}

	if status == StatusApproved {
		if _, err = svc.chatSvc.Send(ctx, chat.NewMessage{
			ProjectID:  id,
			UserID:     p.UserID,
			SenderType: chat.SenderAdmin,
			Content: fmt.Sprintf("🎉 **Congratulations!** Your project %q has been **APPROVED**. \n\n"+
				"You can now start the development. Our team will guide you through the next steps in this chat.", p.ProjectType),
		}); err != nil {
			svc.logger.Error(fmt.Sprintf("sending approval chat message: %v", err), err)
		}
	}

	return p, nil
}

// Delete removes a project and everything hanging off it. Related rows go
// first so a failed run can be retried without orphan references.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.chatSvc.DeleteByProject(ctx, id); err != nil {
		return err
	}
	if _, err := svc.repo.DeleteUpdatesByProject(ctx, id); err != nil {
		return err
	}
	if err := svc.notifSvc.DeleteByProject(ctx, id); err != nil {
		return err
	}
	if _, err := svc.repo.DeleteMembersByProject(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteProject(ctx, id)
}

// Invite adds a collaborator email to a project's team.
func (svc *Service) Invite(ctx context.Context, projectID, email string) (Member, error) {
	email = core.CleanString(email, true /* lower */)
	m := Member{
		ProjectID: projectID,
		Email:     email,
		JoinedAt:  time.Now().UTC(),
	}
	member, err := svc.repo.CreateMember(ctx, m)
	if err != nil {
		if err == ErrMemberExists {
			return Member{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Member{}, err
	}
	return member, nil
}

func (svc *Service) Members(ctx context.Context, projectID string) ([]Member, error) {
	return svc.repo.QueryMembers(ctx, projectID)
}

func (svc *Service) RecentUpdates(ctx context.Context, limit int) ([]Update, error) {
	if limit <= 0 {
		limit = 50
	}
	return svc.repo.QueryRecentUpdates(ctx, limit)
}
