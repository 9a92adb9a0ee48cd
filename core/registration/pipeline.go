package registration

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

// Pipeline turns a completed answer set into a user row and a pending
// project row, in that order. A project-write failure leaves the user row
// behind on purpose; see Submit.
type Pipeline struct {
	users    *user.Service
	projects *project.Service
	validate *validator.Validate
	mailer   core.EmailService
	conf     *core.Config
	logger   core.Logger
}

func NewPipeline(users *user.Service, projects *project.Service, validate *validator.Validate, mailer core.EmailService, conf *core.Config, logger core.Logger) *Pipeline {
	return &Pipeline{
		users:    users,
		projects: projects,
		validate: validate,
		mailer:   mailer,
		conf:     conf,
		logger:   logger,
	}
}

// Submit performs the two ordered writes. There is no compensating delete
// when the second write fails: the orphaned user record keeps the email
// claimed so the student can be recovered manually instead of silently
// losing the registration. The orphan is logged for the admins.
func (p *Pipeline) Submit(ctx context.Context, ans Answers) error {
	nu := user.NewUser{
		FullName:     ans[FieldFullName],
		Email:        ans[FieldEmail],
		PhoneNumber:  ans[FieldPhoneNumber],
		CollegeName:  ans[FieldCollegeName],
		CourseBranch: ans[FieldCourseBranch],
		Password:     ans[FieldPassword],
	}
	if err := nu.Validate(ctx, p.validate, p.users); err != nil {
		return err
	}

	usr, err := p.users.Create(ctx, nu)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	if _, err = p.projects.Create(ctx, usr.ID, ans[FieldProjectType], ans[FieldProblemStatement]); err != nil {
		p.logger.Error(fmt.Sprintf("registration: project write failed, user %s (%s) left without a project: %v", usr.ID, usr.Email, err), err)
		return errors.Wrap(err, "creating project")
	}

	p.sendWelcomeEmail(usr, ans[FieldProjectType])
	return nil
}

func (p *Pipeline) sendWelcomeEmail(usr user.User, projectType string) {
	if p.mailer == nil {
		return
	}
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your %s project registration has been received and is pending review.\n"+
			"Track its progress and chat with the team on your dashboard:\n%s%s\n\n"+
			"Team TechpG",
		usr.FullName, projectType, p.conf.FrontendBaseURL, DashboardPath)
	p.mailer.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:     "Project Registration Received",
		TextContent: body,
	})
}

// EmailExists implements IdentityLookup on top of the user service.
type EmailChecker struct {
	Users *user.Service
}

func (c EmailChecker) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := c.Users.GetByEmail(ctx, email)
	if err == user.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FailureText renders a persistence error for the failure transcript entry,
// appending the driver's machine code when one is present.
func FailureText(err error) string {
	if err == nil {
		return "An unknown error occurred"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		msg := pqErr.Message
		if msg == "" {
			msg = pqErr.Detail
		}
		return fmt.Sprintf("%s [Code: %s]", msg, string(pqErr.Code))
	}
	return err.Error()
}
