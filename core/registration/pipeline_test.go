package registration

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

type fakeUserRepo struct {
	users       []user.User
	createCalls int
	createErr   error
}

func (r *fakeUserRepo) CheckEmailUniqueness(_ context.Context, email string, _ ...user.User) error {
	for _, u := range r.users {
		if u.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (r *fakeUserRepo) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	r.createCalls++
	if r.createErr != nil {
		return user.User{}, r.createErr
	}
	usr.ID = "user-1"
	r.users = append(r.users, usr)
	return usr, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	for _, u := range r.users {
		if (filter.ID != "" && u.ID == filter.ID) || (filter.Email != "" && u.Email == filter.Email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *fakeUserRepo) QueryAllUsers(context.Context) ([]user.User, error) { return r.users, nil }

func (r *fakeUserRepo) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	return usr, nil
}

func (r *fakeUserRepo) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	return 0, nil
}

type fakeProjectRepo struct {
	project.Repository

	projects    []project.Project
	createCalls int
	createErr   error
}

func (r *fakeProjectRepo) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	r.createCalls++
	if r.createErr != nil {
		return project.Project{}, r.createErr
	}
	p.ID = "project-1"
	r.projects = append(r.projects, p)
	return p, nil
}

type silentLogger struct{}

func (silentLogger) Debug(string, ...interface{}) {}
func (silentLogger) Info(string, ...interface{})  {}
func (silentLogger) Warn(string, ...interface{})  {}
func (silentLogger) Error(string, ...interface{}) {}
func (silentLogger) Fatal(string, ...interface{}) {}

func validAnswers() Answers {
	return Answers{
		FieldProjectType:      "major",
		FieldFullName:         "Jane Doe",
		FieldEmail:            "jane@x.com",
		FieldPhoneNumber:      "9876543210",
		FieldCollegeName:      "ABC College",
		FieldCourseBranch:     "B.Tech CSE",
		FieldPassword:         "secret1",
		FieldProblemSource:    SourceOwn,
		FieldProblemStatement: "Build a tracker",
	}
}

func newTestPipeline(userRepo *fakeUserRepo, projectRepo *fakeProjectRepo) *Pipeline {
	conf := &core.Config{TestMode: true}
	usrSvc := user.NewService(userRepo, conf)
	projSvc := project.NewService(projectRepo, usrSvc, nil, nil, silentLogger{})
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	return NewPipeline(usrSvc, projSvc, validate, nil, conf, silentLogger{})
}

func TestPipelineSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("both writes in order", func(t *testing.T) {
		userRepo := &fakeUserRepo{}
		projectRepo := &fakeProjectRepo{}
		p := newTestPipeline(userRepo, projectRepo)

		err := p.Submit(ctx, validAnswers())
		require.NoError(t, err)

		assert.Equal(t, 1, userRepo.createCalls)
		assert.Equal(t, 1, projectRepo.createCalls)

		require.Len(t, userRepo.users, 1)
		usr := userRepo.users[0]
		assert.Equal(t, "jane@x.com", usr.Email)
		assert.NoError(t, usr.CheckPassword("secret1"))

		require.Len(t, projectRepo.projects, 1)
		proj := projectRepo.projects[0]
		assert.Equal(t, "user-1", proj.UserID)
		assert.Equal(t, project.TypeMajor, proj.ProjectType)
		assert.Equal(t, project.StatusPending, proj.Status)
		assert.Equal(t, "Build a tracker", proj.ProblemStatement)
	})

	t.Run("duplicate email rejected before any write", func(t *testing.T) {
		userRepo := &fakeUserRepo{users: []user.User{{ID: "u0", Email: "jane@x.com"}}}
		projectRepo := &fakeProjectRepo{}
		p := newTestPipeline(userRepo, projectRepo)

		err := p.Submit(ctx, validAnswers())
		require.Error(t, err)
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
		assert.Equal(t, 0, userRepo.createCalls)
		assert.Equal(t, 0, projectRepo.createCalls)
	})

	t.Run("project write failure keeps user row", func(t *testing.T) {
		userRepo := &fakeUserRepo{}
		projectRepo := &fakeProjectRepo{createErr: errors.New("relation does not exist")}
		p := newTestPipeline(userRepo, projectRepo)

		err := p.Submit(ctx, validAnswers())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "relation does not exist")
		assert.Len(t, userRepo.users, 1, "user row is kept on purpose")
	})
}

func TestEmailChecker(t *testing.T) {
	ctx := context.Background()
	userRepo := &fakeUserRepo{users: []user.User{{ID: "u0", Email: "jane@x.com"}}}
	usrSvc := user.NewService(userRepo, &core.Config{TestMode: true})
	checker := EmailChecker{Users: usrSvc}

	exists, err := checker.EmailExists(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = checker.EmailExists(ctx, "fresh@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFailureText(t *testing.T) {
	assert.Equal(t, "boom", FailureText(errors.New("boom")))
	assert.Equal(t, "An unknown error occurred", FailureText(nil))
	assert.Equal(t, "wrapped: boom", FailureText(errors.Wrap(errors.New("boom"), "wrapped")))
}
