package inmemrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
)

type adminRepository struct {
	db *DB
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) *adminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CreateAdmin(_ context.Context, adm admin.AdminUser) (admin.AdminUser, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, existing := range r.db.admins {
		if strings.EqualFold(existing.Email, adm.Email) {
			return admin.AdminUser{}, admin.ErrEmailExists
		}
	}
	adm.ID = uuid.New().String()
	r.db.admins[adm.ID] = adm
	return adm, nil
}

func (r *adminRepository) GetAdminByID(_ context.Context, id string) (admin.AdminUser, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if adm, ok := r.db.admins[id]; ok {
		return adm, nil
	}
	return admin.AdminUser{}, admin.ErrNotFound
}

func (r *adminRepository) GetAdminByEmail(_ context.Context, email string) (admin.AdminUser, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, adm := range r.db.admins {
		if strings.EqualFold(adm.Email, email) {
			return adm, nil
		}
	}
	return admin.AdminUser{}, admin.ErrNotFound
}

func (r *adminRepository) UpdateAdmin(_ context.Context, adm admin.AdminUser) (admin.AdminUser, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.admins[adm.ID]; !ok {
		return admin.AdminUser{}, admin.ErrNotFound
	}
	r.db.admins[adm.ID] = adm
	return adm, nil
}
