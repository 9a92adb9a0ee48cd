package chat

import "time"

// Sender types
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
)

// Message is one chat entry between a project's students and the admin team.
// File fields are set when the message carries an attachment; the file itself
// lives in the file store and only its metadata travels here.
type Message struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	UserID     string    `json:"user_id"`
	SenderType string    `json:"sender_type"`
	Content    string    `json:"content"`
	FileURL    string    `json:"file_url,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	FileType   string    `json:"file_type,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewMessage contains information needed to send a Message.
type NewMessage struct {
	ProjectID  string `json:"project_id" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
	SenderType string `json:"sender_type" validate:"required,oneof=user admin"`
	Content    string `json:"content"`
	FileURL    string `json:"file_url"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
}

// ApplyInbound appends an inbound event's message to a transcript unless a
// message with the same ID is already present. This is the only
// de-duplication discipline for push-delivered messages: delivery may be
// at-least-once, application must be exactly-once.
func ApplyInbound(msgs []Message, incoming Message) []Message {
	for _, m := range msgs {
		if m.ID == incoming.ID {
			return msgs
		}
	}
	return append(msgs, incoming)
}
