package notification

import "time"

// Notification types
const (
	TypeStatusUpdate   = "status_update"
	TypeInfo           = "info"
	TypeActionRequired = "action_required"
	TypeApproval       = "approval"
	TypeRejection      = "rejection"
)

var Types = []string{TypeStatusUpdate, TypeInfo, TypeActionRequired, TypeApproval, TypeRejection}

func ValidType(t string) bool {
	for _, typ := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	SentBy    string    `json:"sent_by"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Template is an admin quick-pick for composing notifications.
type Template struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var Templates = []Template{
	{Label: "Project Approved - Proceed to next steps", Value: "Your project has been approved! Please proceed to the next steps. Our team will contact you shortly with further instructions."},
	{Label: "Project Rejected - Resubmit with changes", Value: "Your project submission requires modifications. Please review the feedback and resubmit with the necessary changes."},
	{Label: "Action Required - Submit documents", Value: "Action required: Please submit the required documents for your project registration to proceed further."},
	{Label: "Project In Progress - Welcome aboard", Value: "Great news! Your project is now in progress. Welcome aboard! Check your dashboard for milestones and deadlines."},
	{Label: "Project Completed - Congratulations", Value: "Congratulations! Your project has been marked as completed. Thank you for your hard work!"},
	{Label: "Custom message", Value: ""},
}
