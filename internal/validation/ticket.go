package validation

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketInput is the raw create/update payload. Pointer fields
// distinguish absent from empty, updates send partial payloads.
type TicketInput struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	IssueType   *string             `json:"issueType"`
	Urgency     *string             `json:"urgency"`
	Status      *string             `json:"status"`
	Category    *string             `json:"category"`
	Department  *string             `json:"department"`
	Location    *string             `json:"location"`
	ContactInfo *domain.ContactInfo `json:"contactInfo"`
	Attachments []AttachmentInput   `json:"attachments"`
	Metadata    map[string]any      `json:"metadata"`
	AssignedTo  *string             `json:"assignedTo"`
	CreatedBy   *string             `json:"createdBy"`
}

// SanitizedTicket is the cleaned payload produced on success. When the
// validation failed it carries only the resolved defaults; callers
// must never persist it unless Valid is true.
type SanitizedTicket struct {
	Title       string
	Description string
	IssueType   domain.IssueType
	Urgency     domain.TicketUrgency
	Status      domain.TicketStatus
	Category    *string
	Department  *string
	Location    *string
	ContactInfo *domain.ContactInfo
	AssignedTo  *string
	CreatedBy   *string
	Metadata    map[string]any
	CreatedAt   *time.Time
	UpdatedAt   time.Time
}

// TicketValidation bundles the accumulated result with sanitized data.
type TicketValidation struct {
	Result
	Sanitized SanitizedTicket
}

// ValidateTicketData validates a create or update payload. Creation
// requires title, description, and issueType; a missing required field
// short-circuits before any per-field validation runs. Field
// validators then accumulate into a single result, defaults are
// resolved, and the full sanitized payload is built only when the
// result is still valid.
func ValidateTicketData(input *TicketInput, isUpdate bool) *TicketValidation {
	out := &TicketValidation{Result: Result{Valid: true}}
	now := time.Now().UTC()

	if input == nil {
		out.AddError("", "ticket payload must be an object")
		return out
	}

	if !isUpdate {
		missing := false
		if isBlank(input.Title) {
			out.AddError("title", "title is required")
			missing = true
		}
		if isBlank(input.Description) {
			out.AddError("description", "description is required")
			missing = true
		}
		if isBlank(input.IssueType) {
			out.AddError("issueType", "issueType is required")
			missing = true
		}
		if missing {
			return out
		}
	}

	ValidateTitle(input.Title, &out.Result)
	ValidateDescription(input.Description, &out.Result)
	ValidateIssueType(input.IssueType, &out.Result)
	ValidateUrgency(input.Urgency, &out.Result)
	ValidateStatus(input.Status, isUpdate, &out.Result)
	ValidateCategory(input.Category, &out.Result)
	ValidateDepartment(input.Department, &out.Result)
	ValidateLocation(input.Location, &out.Result)
	ValidateContactInfo(input.ContactInfo, &out.Result)
	ValidateAttachments(input.Attachments, &out.Result)
	ValidateMetadata(input.Metadata, &out.Result)
	ValidateUserID("assignedTo", input.AssignedTo, &out.Result)
	ValidateUserID("createdBy", input.CreatedBy, &out.Result)

	urgency := domain.TicketUrgencyMedium
	if input.Urgency != nil {
		if resolved, ok := urgencies[*input.Urgency]; ok {
			urgency = resolved
		}
	}
	var status domain.TicketStatus
	if input.Status != nil {
		status = statuses[*input.Status]
	} else if !isUpdate {
		status = domain.TicketStatusOpen
	}

	out.Sanitized.Urgency = urgency
	out.Sanitized.Status = status
	out.Sanitized.UpdatedAt = now
	if !isUpdate {
		createdAt := now
		out.Sanitized.CreatedAt = &createdAt
	}

	if !out.Valid {
		return out
	}

	if input.Title != nil {
		out.Sanitized.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		out.Sanitized.Description = strings.TrimSpace(*input.Description)
	}
	if input.IssueType != nil {
		out.Sanitized.IssueType = issueTypes[*input.IssueType]
	}
	out.Sanitized.Category = trimmedOptional(input.Category)
	out.Sanitized.Department = trimmedOptional(input.Department)
	out.Sanitized.Location = trimmedOptional(input.Location)
	out.Sanitized.ContactInfo = SanitizeContactInfo(input.ContactInfo)
	out.Sanitized.AssignedTo = input.AssignedTo
	out.Sanitized.CreatedBy = input.CreatedBy
	out.Sanitized.Metadata = SanitizeMetadata(input.Metadata)
	return out
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmedOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
