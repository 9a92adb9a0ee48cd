package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
)

type adminRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type adminRepository struct {
	db *sqlx.DB
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *sqlx.DB) *adminRepository {
	return &adminRepository{db: db}
}

func trapAdminNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return admin.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo adminRepository) CreateAdmin(ctx context.Context, adm admin.AdminUser) (admin.AdminUser, error) {
	adm.ID = uuid.New().String()
	row := adminRow(adm)
	query := `
		INSERT INTO admin_users (id, email, role, password_hash, created_at)
		VALUES (:id, :email, :role, :password_hash, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return admin.AdminUser{}, admin.ErrEmailExists
		}
		return admin.AdminUser{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo adminRepository) GetAdminByID(ctx context.Context, id string) (admin.AdminUser, error) {
	var row adminRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM admin_users WHERE id = $1`, id); err != nil {
		return admin.AdminUser{}, trapAdminNoRowsErr(err, "getting admin")
	}
	return admin.AdminUser(row), nil
}

func (repo adminRepository) GetAdminByEmail(ctx context.Context, email string) (admin.AdminUser, error) {
	var row adminRow
	query := `SELECT * FROM admin_users WHERE LOWER(email) = LOWER($1)`
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		return admin.AdminUser{}, trapAdminNoRowsErr(err, "getting admin")
	}
	return admin.AdminUser(row), nil
}

func (repo adminRepository) UpdateAdmin(ctx context.Context, adm admin.AdminUser) (admin.AdminUser, error) {
	row := adminRow(adm)
	query := `UPDATE admin_users SET email = :email, role = :role, password_hash = :password_hash WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return admin.AdminUser{}, errors.Wrap(err, "updating admin")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return admin.AdminUser{}, admin.ErrNotFound
	}
	return adm, nil
}
