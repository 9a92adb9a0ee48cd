package project

import (
	"time"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

// Project types
const (
	TypeMini  = "mini"
	TypeMajor = "major"
)

// Statuses, in dashboard display order.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var (
	Types    = []string{TypeMini, TypeMajor}
	Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusInProgress, StatusCompleted}
)

func ValidType(t string) bool {
	return t == TypeMini || t == TypeMajor
}

func ValidStatus(s string) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type Project struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ProjectType      string    `json:"project_type"`
	ProblemStatement string    `json:"problem_statement"`
	Status           string    `json:"status"`
	RegistrationDate time.Time `json:"registration_date"` // UTC
	LastUpdated      time.Time `json:"last_updated"`      // UTC

	// Owner is populated on queries that join the users table.
	Owner *user.User `json:"users,omitempty"`
}

// Update is one entry of a project's audit trail; written on every status change.
type Update struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	UpdateText      string    `json:"update_text"`
	StatusChangedTo string    `json:"status_changed_to"`
	UpdatedBy       string    `json:"updated_by"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

// Member is an invited collaborator; identified by email, which may or may
// not belong to a registered user yet.
type Member struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Email     string    `json:"email"`
	JoinedAt  time.Time `json:"joined_at"` // UTC
}

// QueryFilter narrows the admin registrations list; fields AND together.
type QueryFilter struct {
	Status string `query:"status"`
	Type   string `query:"type"`
	// Search matches case-insensitively on the owner's name, email or college.
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.Type == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
}
