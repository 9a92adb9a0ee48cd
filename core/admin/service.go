package admin

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/praveengyadahalli143-byte/TechpG/core"
)

const (
	RoleSuperAdmin         = "super_admin"
	RoleProjectCoordinator = "project_coordinator"
)

var (
	ErrNotFound    = errors.New("admin not found")
	ErrEmailExists = errors.New("an admin with this email already exists")
)

type (
	AdminUser struct {
		ID           string    `json:"id" db:"id"`
		Email        string    `json:"email" db:"email"`
		Role         string    `json:"role" db:"role"`
		PasswordHash []byte    `json:"-" db:"password_hash"`
		CreatedAt    time.Time `json:"created_at" db:"created_at"`
	}

	Repository interface {
		CreateAdmin(ctx context.Context, adm AdminUser) (AdminUser, error)
		GetAdminByID(ctx context.Context, id string) (AdminUser, error)
		GetAdminByEmail(ctx context.Context, email string) (AdminUser, error)
		UpdateAdmin(ctx context.Context, adm AdminUser) (AdminUser, error)
	}

	Service struct {
		repo Repository
	}
)

func (adm *AdminUser) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	adm.PasswordHash = hash
	return nil
}

func (adm *AdminUser) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(adm.PasswordHash, []byte(pwd))
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, email, role, pwd string) (AdminUser, error) {
	if role != RoleSuperAdmin && role != RoleProjectCoordinator {
		role = RoleProjectCoordinator
	}
	adm := AdminUser{
		Email:     core.CleanString(email, true /* lower */),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := adm.SetPassword(pwd); err != nil {
		return AdminUser{}, err
	}
	return svc.repo.CreateAdmin(ctx, adm)
}

func (svc *Service) GetByID(ctx context.Context, id string) (AdminUser, error) {
	return svc.repo.GetAdminByID(ctx, id)
}

// Authenticate fails with ErrNotFound for both an unknown email and a wrong
// password so callers cannot probe which one it was.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (AdminUser, error) {
	adm, err := svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return AdminUser{}, err
	}
	if err = adm.CheckPassword(pwd); err != nil {
		return AdminUser{}, ErrNotFound
	}
	return adm, nil
}

func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (AdminUser, error) {
	adm, err := svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return AdminUser{}, err
	}
	if err = adm.SetPassword(pwd); err != nil {
		return AdminUser{}, err
	}
	return svc.repo.UpdateAdmin(ctx, adm)
}
