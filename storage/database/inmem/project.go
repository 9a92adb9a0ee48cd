package inmemrepos

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	p.ID = uuid.New().String()
	r.db.projects[p.ID] = p
	return p, nil
}

func (r *projectRepository) GetProject(_ context.Context, id string) (project.Project, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if p, ok := r.db.projects[id]; ok {
		return p, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (r *projectRepository) GetProjectByOwner(_ context.Context, userID string) (project.Project, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var (
		found  bool
		latest project.Project
	)
	for _, p := range r.db.projects {
		if p.UserID == userID && (!found || p.RegistrationDate.After(latest.RegistrationDate)) {
			latest = p
			found = true
		}
	}
	if !found {
		return project.Project{}, project.ErrNotFound
	}
	return latest, nil
}

func (r *projectRepository) QueryProjects(_ context.Context, filter *project.QueryFilter, ordering []core.DBOrdering) ([]project.Project, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var projects []project.Project
	for _, p := range r.db.projects {
		if owner, ok := r.db.users[p.UserID]; ok {
			owner := owner
			p.Owner = &owner
		}
		if r.matches(p, filter) {
			projects = append(projects, p)
		}
	}
	// newest first, matching the default DB ordering
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].RegistrationDate.After(projects[j].RegistrationDate)
	})
	return projects, nil
}

func (r *projectRepository) matches(p project.Project, filter *project.QueryFilter) bool {
	if filter == nil {
		return true
	}
	filter.Clean()
	if filter.Status != "" && p.Status != filter.Status {
		return false
	}
	if filter.Type != "" && p.ProjectType != filter.Type {
		return false
	}
	if filter.Search != "" {
		if p.Owner == nil {
			return false
		}
		needle := strings.ToLower(filter.Search)
		haystack := strings.ToLower(p.Owner.FullName + " " + p.Owner.Email + " " + p.Owner.CollegeName)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (r *projectRepository) UpdateProjectStatus(_ context.Context, id, status string) (project.Project, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	p, ok := r.db.projects[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	p.Status = status
	p.LastUpdated = time.Now().UTC()
	r.db.projects[id] = p
	return p, nil
}

func (r *projectRepository) DeleteProject(_ context.Context, id string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.projects[id]; !ok {
		return project.ErrNotFound
	}
	delete(r.db.projects, id)
	return nil
}

func (r *projectRepository) CreateUpdate(_ context.Context, u project.Update) (project.Update, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	u.ID = uuid.New().String()
	r.db.updates[u.ID] = u
	return u, nil
}

func (r *projectRepository) QueryRecentUpdates(_ context.Context, limit int) ([]project.Update, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	updates := make([]project.Update, 0, len(r.db.updates))
	for _, u := range r.db.updates {
		updates = append(updates, u)
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].CreatedAt.After(updates[j].CreatedAt) })
	if len(updates) > limit {
		updates = updates[:limit]
	}
	return updates, nil
}

func (r *projectRepository) DeleteUpdatesByProject(_ context.Context, projectID string) (int, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	var n int
	for id, u := range r.db.updates {
		if u.ProjectID == projectID {
			delete(r.db.updates, id)
			n++
		}
	}
	return n, nil
}

func (r *projectRepository) CreateMember(_ context.Context, m project.Member) (project.Member, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, existing := range r.db.members {
		if existing.ProjectID == m.ProjectID && strings.EqualFold(existing.Email, m.Email) {
			return project.Member{}, project.ErrMemberExists
		}
	}
	m.ID = uuid.New().String()
	r.db.members[m.ID] = m
	return m, nil
}

func (r *projectRepository) QueryMembers(_ context.Context, projectID string) ([]project.Member, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var members []project.Member
	for _, m := range r.db.members {
		if m.ProjectID == projectID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (r *projectRepository) GetMembershipByEmail(_ context.Context, email string) (project.Member, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var (
		found    bool
		earliest project.Member
	)
	for _, m := range r.db.members {
		if strings.EqualFold(m.Email, email) && (!found || m.JoinedAt.Before(earliest.JoinedAt)) {
			earliest = m
			found = true
		}
	}
	if !found {
		return project.Member{}, project.ErrNotFound
	}
	return earliest, nil
}

func (r *projectRepository) DeleteMembersByProject(_ context.Context, projectID string) (int, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	var n int
	for id, m := range r.db.members {
		if m.ProjectID == projectID {
			delete(r.db.members, id)
			n++
		}
	}
	return n, nil
}
