package inmemrepos

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) && !excluded[u.ID] {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (r *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	r.db.users[usr.ID] = usr
	return usr, nil
}

func (r *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := r.db.users[filter.ID]; ok {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range r.db.users {
		if strings.EqualFold(usr.Email, filter.Email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) QueryAllUsers(context.Context) ([]user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	users := make([]user.User, 0, len(r.db.users))
	for _, usr := range r.db.users {
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	r.db.users[usr.ID] = usr
	return usr, nil
}

func (r *userRepository) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := r.db.users[id]; ok {
			delete(r.db.users, id)
			n++
		}
	}
	return n, nil
}
