package user

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveengyadahalli143-byte/TechpG/core"
)

type fakeRepo struct {
	users map[string]User // keyed by email
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]User)}
}

func (r *fakeRepo) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...User) error {
	usr, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil
	}
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return nil
		}
	}
	return ErrEmailExists
}

func (r *fakeRepo) CreateUser(_ context.Context, usr User) (User, error) {
	usr.ID = "usr-" + usr.Email
	r.users[strings.ToLower(usr.Email)] = usr
	return usr, nil
}

func (r *fakeRepo) GetUser(_ context.Context, filter GetFilter) (User, error) {
	for _, usr := range r.users {
		if (filter.ID != "" && usr.ID == filter.ID) || (filter.Email != "" && strings.EqualFold(usr.Email, filter.Email)) {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) QueryAllUsers(_ context.Context) ([]User, error) {
	users := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		users = append(users, usr)
	}
	return users, nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, usr User) (User, error) {
	r.users[strings.ToLower(usr.Email)] = usr
	return usr, nil
}

func (r *fakeRepo) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	var n int
	for email, usr := range r.users {
		for _, id := range ids {
			if usr.ID == id {
				delete(r.users, email)
				n++
			}
		}
	}
	return n, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, &core.Config{TestMode: true}), repo
}

func TestServiceCreate(t *testing.T) {
	svc, _ := newTestService()

	usr, err := svc.Create(context.Background(), NewUser{
		FullName:     "Jane Doe",
		Email:        "jane@test.cd",
		PhoneNumber:  "9876543210",
		CollegeName:  "ABC College",
		CourseBranch: "B.Tech CSE",
		Password:     "s3cret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.False(t, usr.CreatedAt.IsZero())
	assert.NoError(t, usr.CheckPassword("s3cret1"))
	assert.Error(t, usr.CheckPassword("nope"))
	assert.NotContains(t, string(usr.PasswordHash), "s3cret1")
}

func TestServiceAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	_, err := svc.Create(ctx, NewUser{FullName: "Jane Doe", Email: "jane@test.cd", Password: "s3cret1"})
	require.NoError(t, err)

	usr, err := svc.Authenticate(ctx, "Jane@Test.CD", "s3cret1")
	require.NoError(t, err)
	assert.Equal(t, "jane@test.cd", usr.Email)

	// unknown email and bad password are indistinguishable
	_, err = svc.Authenticate(ctx, "jane@test.cd", "nope")
	assert.Equal(t, ErrNotFound, err)
	_, err = svc.Authenticate(ctx, "who@test.cd", "s3cret1")
	assert.Equal(t, ErrNotFound, err)
}

func TestServiceCheckEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	usr, err := svc.Create(ctx, NewUser{FullName: "Jane Doe", Email: "jane@test.cd", Password: "s3cret1"})
	require.NoError(t, err)

	require.NoError(t, svc.CheckEmailUniqueness(ctx, "new@test.cd"))

	err = svc.CheckEmailUniqueness(ctx, "jane@test.cd")
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "email", vErr.Fields[0].Field)

	// the owner of the email is excluded
	assert.NoError(t, svc.CheckEmailUniqueness(ctx, "jane@test.cd", usr))
}

func TestNewUserValidate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	nu := NewUser{
		FullName:     "  Jane Doe  ",
		Email:        "Jane@Test.CD",
		PhoneNumber:  "+91 98765 43210",
		CollegeName:  "ABC College",
		CourseBranch: "B.Tech CSE",
		Password:     "s3cret1",
	}
	require.NoError(t, nu.Validate(ctx, validate, svc))
	assert.Equal(t, "Jane Doe", nu.FullName)
	assert.Equal(t, "jane@test.cd", nu.Email)
	assert.Equal(t, "9876543210", nu.PhoneNumber)

	bad := nu
	bad.PhoneNumber = "12345"
	assert.Error(t, bad.Validate(ctx, validate, svc))
}
