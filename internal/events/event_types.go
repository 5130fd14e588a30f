package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventUserRegistered      EventType = "user_registered"
	EventPasswordResetAsked  EventType = "password_reset_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title     string               `json:"title"`
	IssueType domain.IssueType     `json:"issue_type"`
	Urgency   domain.TicketUrgency `json:"urgency"`
	DueDate   *time.Time           `json:"due_date,omitempty"`
	CreatedBy string               `json:"created_by"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Notes     string              `json:"notes,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo string `json:"assigned_to"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	AuthorID   string `json:"author_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// UserRegisteredPayload payload. Carries the raw verification token
// for the mailer; it is never persisted or logged in raw form.
type UserRegisteredPayload struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	VerifyToken string `json:"-"`
}

// PasswordResetPayload payload. Same raw-token handling as above.
type PasswordResetPayload struct {
	Email      string `json:"email"`
	ResetToken string `json:"-"`
}
