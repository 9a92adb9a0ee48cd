package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

type projectRow struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	ProjectType      string    `db:"project_type"`
	ProblemStatement string    `db:"problem_statement"`
	Status           string    `db:"status"`
	RegistrationDate time.Time `db:"registration_date"`
	LastUpdated      time.Time `db:"last_updated"`
}

// projectOwnerRow carries a project joined with its owner.
type projectOwnerRow struct {
	projectRow
	OwnerID           null.String `db:"owner_id"`
	OwnerFullName     null.String `db:"owner_full_name"`
	OwnerEmail        null.String `db:"owner_email"`
	OwnerPhoneNumber  null.String `db:"owner_phone_number"`
	OwnerCollegeName  null.String `db:"owner_college_name"`
	OwnerCourseBranch null.String `db:"owner_course_branch"`
}

func (r projectRow) toProject() project.Project {
	return project.Project{
		ID:               r.ID,
		UserID:           r.UserID,
		ProjectType:      r.ProjectType,
		ProblemStatement: r.ProblemStatement,
		Status:           r.Status,
		RegistrationDate: r.RegistrationDate,
		LastUpdated:      r.LastUpdated,
	}
}

func (r projectOwnerRow) toProject() project.Project {
	p := r.projectRow.toProject()
	if r.OwnerID.Valid {
		p.Owner = &user.User{
			ID:           r.OwnerID.String,
			FullName:     r.OwnerFullName.String,
			Email:        r.OwnerEmail.String,
			PhoneNumber:  r.OwnerPhoneNumber.String,
			CollegeName:  r.OwnerCollegeName.String,
			CourseBranch: r.OwnerCourseBranch.String,
		}
	}
	return p
}

type updateRow struct {
	ID              string      `db:"id"`
	ProjectID       string      `db:"project_id"`
	UpdateText      string      `db:"update_text"`
	StatusChangedTo string      `db:"status_changed_to"`
	UpdatedBy       null.String `db:"updated_by"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (r updateRow) toUpdate() project.Update {
	return project.Update{
		ID:              r.ID,
		ProjectID:       r.ProjectID,
		UpdateText:      r.UpdateText,
		StatusChangedTo: r.StatusChangedTo,
		UpdatedBy:       r.UpdatedBy.String,
		CreatedAt:       r.CreatedAt,
	}
}

type memberRow struct {
	ID        string    `db:"id"`
	ProjectID string    `db:"project_id"`
	Email     string    `db:"email"`
	JoinedAt  time.Time `db:"joined_at"`
}

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

func trapProjectNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return project.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo projectRepository) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	p.ID = uuid.New().String()
	query := `
		INSERT INTO projects (id, user_id, project_type, problem_statement, status, registration_date, last_updated)
		VALUES (:id, :user_id, :project_type, :problem_statement, :status, :registration_date, :last_updated)`
	row := projectRow{
		ID:               p.ID,
		UserID:           p.UserID,
		ProjectType:      p.ProjectType,
		ProblemStatement: p.ProblemStatement,
		Status:           p.Status,
		RegistrationDate: p.RegistrationDate,
		LastUpdated:      p.LastUpdated,
	}
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return p, nil
}

func (repo projectRepository) GetProject(ctx context.Context, id string) (project.Project, error) {
	var row projectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM projects WHERE id = $1`, id); err != nil {
		return project.Project{}, trapProjectNoRowsErr(err, "getting project")
	}
	return row.toProject(), nil
}

func (repo projectRepository) GetProjectByOwner(ctx context.Context, userID string) (project.Project, error) {
	var row projectRow
	query := `SELECT * FROM projects WHERE user_id = $1 ORDER BY registration_date DESC LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, query, userID); err != nil {
		return project.Project{}, trapProjectNoRowsErr(err, "getting project by owner")
	}
	return row.toProject(), nil
}

const projectOwnerSelect = `
	SELECT p.*,
	       u.id            AS owner_id,
	       u.full_name     AS owner_full_name,
	       u.email         AS owner_email,
	       u.phone_number  AS owner_phone_number,
	       u.college_name  AS owner_college_name,
	       u.course_branch AS owner_course_branch
	FROM projects p
	LEFT JOIN users u ON u.id = p.user_id`

func (repo projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter, ordering []core.DBOrdering) ([]project.Project, error) {
	query := projectOwnerSelect
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil {
		filter.Clean()
		if filter.Status != "" {
			conds = append(conds, "p.status = ?")
			args = append(args, filter.Status)
		}
		if filter.Type != "" {
			conds = append(conds, "p.project_type = ?")
			args = append(args, filter.Type)
		}
		if filter.Search != "" {
			conds = append(conds, "(u.full_name ILIKE ? OR u.email ILIKE ? OR u.college_name ILIKE ?)")
			like := "%" + filter.Search + "%"
			args = append(args, like, like, like)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		clauses := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			clauses = append(clauses, "p."+ord.String())
		}
		query += " ORDER BY " + strings.Join(clauses, ", ")
	}

	var rows []projectOwnerRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	projects := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.toProject())
	}
	return projects, nil
}

func (repo projectRepository) UpdateProjectStatus(ctx context.Context, id, status string) (project.Project, error) {
	var row projectRow
	query := `UPDATE projects SET status = $1, last_updated = $2 WHERE id = $3 RETURNING *`
	if err := repo.db.GetContext(ctx, &row, query, status, time.Now().UTC(), id); err != nil {
		return project.Project{}, trapProjectNoRowsErr(err, "updating project status")
	}
	return row.toProject(), nil
}

func (repo projectRepository) DeleteProject(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting project")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (repo projectRepository) CreateUpdate(ctx context.Context, u project.Update) (project.Update, error) {
	u.ID = uuid.New().String()
	row := updateRow{
		ID:              u.ID,
		ProjectID:       u.ProjectID,
		UpdateText:      u.UpdateText,
		StatusChangedTo: u.StatusChangedTo,
		UpdatedBy:       null.NewString(u.UpdatedBy, u.UpdatedBy != ""),
		CreatedAt:       u.CreatedAt,
	}
	query := `
		INSERT INTO project_updates (id, project_id, update_text, status_changed_to, updated_by, created_at)
		VALUES (:id, :project_id, :update_text, :status_changed_to, :updated_by, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return project.Update{}, errors.Wrap(err, "inserting project update")
	}
	return u, nil
}

func (repo projectRepository) QueryRecentUpdates(ctx context.Context, limit int) ([]project.Update, error) {
	var rows []updateRow
	query := `SELECT * FROM project_updates ORDER BY created_at DESC LIMIT $1`
	if err := repo.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "querying project updates")
	}
	updates := make([]project.Update, 0, len(rows))
	for _, r := range rows {
		updates = append(updates, r.toUpdate())
	}
	return updates, nil
}

func (repo projectRepository) DeleteUpdatesByProject(ctx context.Context, projectID string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM project_updates WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting project updates")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo projectRepository) CreateMember(ctx context.Context, m project.Member) (project.Member, error) {
	m.ID = uuid.New().String()
	row := memberRow(m)
	query := `
		INSERT INTO project_members (id, project_id, email, joined_at)
		VALUES (:id, :project_id, :email, :joined_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return project.Member{}, project.ErrMemberExists
		}
		return project.Member{}, errors.Wrap(err, "inserting project member")
	}
	return m, nil
}

func (repo projectRepository) QueryMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	var rows []memberRow
	query := `SELECT * FROM project_members WHERE project_id = $1 ORDER BY joined_at`
	if err := repo.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, errors.Wrap(err, "querying project members")
	}
	members := make([]project.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, project.Member(r))
	}
	return members, nil
}

func (repo projectRepository) GetMembershipByEmail(ctx context.Context, email string) (project.Member, error) {
	var row memberRow
	query := `SELECT * FROM project_members WHERE LOWER(email) = LOWER($1) ORDER BY joined_at LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		return project.Member{}, trapProjectNoRowsErr(err, "getting project membership")
	}
	return project.Member(row), nil
}

func (repo projectRepository) DeleteMembersByProject(ctx context.Context, projectID string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting project members")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
