package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/validation"
)

// TicketRequest is the create/update payload. The validation layer owns
// field semantics; the embedded input keeps absent-vs-empty intact.
type TicketRequest struct {
	validation.TicketInput
	DueDate *string `json:"dueDate"`
}

// CommentRequest payload for ticket comments.
type CommentRequest struct {
	Content    *string `json:"content"`
	IsInternal *bool   `json:"isInternal"`
}

// AssignRequest payload for ticket assignment.
type AssignRequest struct {
	AssignedTo string `json:"assignedTo"`
}

// BulkRequest payload for bulk status changes.
type BulkRequest struct {
	TicketIDs []string `json:"ticketIds"`
	Action    *string  `json:"action"`
	Notes     *string  `json:"notes"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	IssueType   domain.IssueType     `json:"issueType"`
	Urgency     domain.TicketUrgency `json:"urgency"`
	Status      domain.TicketStatus  `json:"status"`
	Category    *string              `json:"category,omitempty"`
	Department  *string              `json:"department,omitempty"`
	Location    *string              `json:"location,omitempty"`
	ContactInfo *domain.ContactInfo  `json:"contactInfo,omitempty"`
	Metadata    map[string]any       `json:"metadata,omitempty"`
	AssignedTo  *string              `json:"assignedTo,omitempty"`
	CreatedBy   string               `json:"createdBy"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	ClosedAt    *time.Time           `json:"closedAt,omitempty"`
}

// CommentResponse is a single thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	AuthorID   string    `json:"authorId"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"isInternal"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TicketDetailResponse bundles a ticket with its visible thread.
type TicketDetailResponse struct {
	TicketResponse
	Comments []CommentResponse `json:"comments"`
}

// BulkResponse reports a bulk operation outcome.
type BulkResponse struct {
	Requested int                 `json:"requested"`
	Updated   int64               `json:"updated"`
	Status    domain.TicketStatus `json:"status"`
}

// ReportResponse aggregates dashboard counts.
type ReportResponse struct {
	ByStatus    map[string]int64 `json:"byStatus"`
	ByUrgency   map[string]int64 `json:"byUrgency"`
	ByIssueType map[string]int64 `json:"byIssueType"`
	Overdue     int64            `json:"overdue"`
}

// NewTicketResponse maps a domain ticket onto the API view.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		IssueType:   ticket.IssueType,
		Urgency:     ticket.Urgency,
		Status:      ticket.Status,
		Category:    ticket.Category,
		Department:  ticket.Department,
		Location:    ticket.Location,
		ContactInfo: ticket.ContactInfo,
		Metadata:    ticket.Metadata,
		AssignedTo:  ticket.AssignedTo,
		CreatedBy:   ticket.CreatedBy,
		DueDate:     ticket.DueDate,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ClosedAt:    ticket.ClosedAt,
	}
}

// NewCommentResponse maps a domain comment onto the API view.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}
