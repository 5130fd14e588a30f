package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// staffTransitions whitelists status changes technicians and admins may
// apply. Regular users never change status through updates.
var staffTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:         {domain.TicketStatusInProgress, domain.TicketStatusAwaitingUser, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress:   {domain.TicketStatusAwaitingUser, domain.TicketStatusResolved, domain.TicketStatusClosed, domain.TicketStatusOpen},
	domain.TicketStatusAwaitingUser: {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:     {domain.TicketStatusClosed, domain.TicketStatusInProgress, domain.TicketStatusOpen},
	domain.TicketStatusClosed:       {domain.TicketStatusOpen},
}

// TicketService coordinates ticket lifecycle, comments, assignment, and
// bulk operations on top of the validation layer.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// TicketDependencies encapsulates requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// TicketDetail is a ticket with its visible comment thread.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Comments []domain.Comment
}

// BulkResult reports the outcome of a bulk status change.
type BulkResult struct {
	Requested int
	Updated   int64
	Status    domain.TicketStatus
}

// Create validates and persists a new ticket for the acting user. The
// creator always comes from the authenticated principal, never from the
// payload. Returns the ticket plus any validation warnings.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input *validation.TicketInput, dueDate *string) (*domain.Ticket, []string, error) {
	if input != nil {
		input.CreatedBy = &actor.ID
	}
	if input != nil && input.AssignedTo != nil && !isStaff(actor.Role) {
		return nil, nil, apperrors.NewForbidden("only technicians and admins may assign tickets")
	}
	checked := validation.ValidateTicketData(input, false)
	if !checked.Valid {
		return nil, checked.Warnings, s.validationError(&checked.Result, "ticket validation failed")
	}
	if checked.Sanitized.AssignedTo != nil {
		if _, err := s.resolveAssignee(ctx, *checked.Sanitized.AssignedTo); err != nil {
			return nil, nil, err
		}
	}

	due := validation.ValidateDueDate(dueDate, checked.Sanitized.Urgency)
	if !due.Valid {
		return nil, nil, s.validationError(&due.Result, "due date validation failed")
	}
	warnings := append(checked.Warnings, due.Warnings...)

	resolvedDue := due.DueDate
	if resolvedDue == nil {
		if slaDue, ok := validation.CalculateSLADueDate(checked.Sanitized.Urgency, time.Now().UTC()); ok {
			resolvedDue = &slaDue
		}
	}

	ticket := &domain.Ticket{
		Title:       checked.Sanitized.Title,
		Description: checked.Sanitized.Description,
		IssueType:   checked.Sanitized.IssueType,
		Urgency:     checked.Sanitized.Urgency,
		Status:      checked.Sanitized.Status,
		Category:    checked.Sanitized.Category,
		Department:  checked.Sanitized.Department,
		Location:    checked.Sanitized.Location,
		ContactInfo: checked.Sanitized.ContactInfo,
		Metadata:    checked.Sanitized.Metadata,
		AssignedTo:  checked.Sanitized.AssignedTo,
		CreatedBy:   actor.ID,
		DueDate:     resolvedDue,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, nil, err
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("urgency", string(ticket.Urgency)),
		zap.String("created_by", actor.ID),
	)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:     ticket.Title,
			IssueType: ticket.IssueType,
			Urgency:   ticket.Urgency,
			DueDate:   ticket.DueDate,
			CreatedBy: ticket.CreatedBy,
		},
	})
	return ticket, warnings, nil
}

// Get loads a ticket with its comment thread. Regular users can only
// read their own tickets and never see internal comments.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID, isStaff(actor.Role))
	if err != nil {
		return nil, err
	}
	return &TicketDetail{Ticket: ticket, Comments: comments}, nil
}

// List returns tickets matching the validated filters. Regular users
// are scoped to their own tickets regardless of the filters supplied.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input validation.FilterInput) ([]domain.Ticket, *validation.TicketFilters, error) {
	checked := validation.ValidateTicketFilters(input)
	if !checked.Valid {
		return nil, nil, s.validationError(&checked.Result, "filter validation failed")
	}
	filters := checked.Filters

	repoFilter := repository.TicketFilter{
		Status:    filters.Status,
		Urgency:   filters.Urgency,
		IssueType: filters.IssueType,
		Search:    filters.Search,
		DateFrom:  filters.DateFrom,
		DateTo:    filters.DateTo,
		Limit:     filters.Limit,
		Offset:    (filters.Page - 1) * filters.Limit,
		SortBy:    filters.SortBy,
		SortOrder: filters.SortOrder,
	}
	if !isStaff(actor.Role) {
		repoFilter.CreatedBy = &actor.ID
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, nil, err
	}
	return tickets, &filters, nil
}

// Update applies a partial update. Regular users may only edit their
// own tickets and cannot touch status or assignment; staff status
// changes must follow the transition whitelist.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, ticketID string, input *validation.TicketInput, dueDate *string) (*domain.Ticket, []string, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}

	staff := isStaff(actor.Role)
	if !staff {
		if ticket.CreatedBy != actor.ID {
			return nil, nil, apperrors.NewForbidden("you do not have access to this ticket")
		}
		if input != nil && input.Status != nil {
			return nil, nil, apperrors.NewForbidden("only technicians and admins may change ticket status")
		}
		if input != nil && input.AssignedTo != nil {
			return nil, nil, apperrors.NewForbidden("only technicians and admins may assign tickets")
		}
	}

	checked := validation.ValidateTicketData(input, true)
	if !checked.Valid {
		return nil, checked.Warnings, s.validationError(&checked.Result, "ticket validation failed")
	}
	warnings := checked.Warnings

	if input.Title != nil {
		ticket.Title = checked.Sanitized.Title
	}
	if input.Description != nil {
		ticket.Description = checked.Sanitized.Description
	}
	if input.IssueType != nil {
		ticket.IssueType = checked.Sanitized.IssueType
	}
	if input.Urgency != nil {
		ticket.Urgency = checked.Sanitized.Urgency
	}
	if input.Category != nil {
		ticket.Category = checked.Sanitized.Category
	}
	if input.Department != nil {
		ticket.Department = checked.Sanitized.Department
	}
	if input.Location != nil {
		ticket.Location = checked.Sanitized.Location
	}
	if input.ContactInfo != nil {
		ticket.ContactInfo = checked.Sanitized.ContactInfo
	}
	if input.Metadata != nil {
		ticket.Metadata = checked.Sanitized.Metadata
	}
	if staff && input.AssignedTo != nil {
		if _, err := s.resolveAssignee(ctx, *checked.Sanitized.AssignedTo); err != nil {
			return nil, warnings, err
		}
		ticket.AssignedTo = checked.Sanitized.AssignedTo
	}

	if dueDate != nil {
		due := validation.ValidateDueDate(dueDate, ticket.Urgency)
		if !due.Valid {
			return nil, warnings, s.validationError(&due.Result, "due date validation failed")
		}
		warnings = append(warnings, due.Warnings...)
		if due.DueDate != nil {
			ticket.DueDate = due.DueDate
		}
	}

	oldStatus := ticket.Status
	if input.Status != nil {
		newStatus := checked.Sanitized.Status
		if newStatus != oldStatus {
			if !transitionAllowed(oldStatus, newStatus) {
				return nil, warnings, apperrors.NewValidationError(
					"invalid status transition",
					map[string]any{"from": oldStatus, "to": newStatus},
				)
			}
			ticket.Status = newStatus
			if newStatus == domain.TicketStatusClosed {
				now := time.Now().UTC()
				ticket.ClosedAt = &now
			} else {
				ticket.ClosedAt = nil
			}
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warnings, apperrors.NewNotFound("ticket", nil)
		}
		return nil, warnings, err
	}

	if ticket.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  actor.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, warnings, nil
}

// AddComment validates and attaches a comment to a ticket. The author
// is always the acting user; only staff may post internal notes.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID string, input *validation.CommentInput) (*domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}

	if input != nil {
		input.Author = &actor.ID
	}
	checked := validation.ValidateComment(input)
	if !checked.Valid {
		return nil, s.validationError(&checked.Result, "comment validation failed")
	}
	if checked.Sanitized.IsInternal && !isStaff(actor.Role) {
		return nil, apperrors.NewForbidden("only technicians and admins may post internal notes")
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    checked.Sanitized.Content,
		IsInternal: checked.Sanitized.IsInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			AuthorID:   comment.AuthorID,
			IsInternal: comment.IsInternal,
			Preview:    preview(comment.Content, 80),
		},
	})
	return comment, nil
}

// Assign hands a ticket to a technician or admin. The assignee must be
// an active staff account.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, assigneeID string) (*domain.Ticket, error) {
	if !validation.IsValidUserID(assigneeID) {
		return nil, apperrors.NewValidationError("assignee is not a valid user id", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.resolveAssignee(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	ticket.AssignedTo = &assignee.ID
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketAssignedPayload{AssignedTo: assignee.ID},
	})
	return ticket, nil
}

// Bulk applies one status action to many tickets in a single statement.
// Validation reports per-position errors; the operation only runs when
// every id passed.
func (s *TicketService) Bulk(ctx context.Context, actor *domain.User, input *validation.BulkInput) (*BulkResult, error) {
	checked := validation.ValidateBulkOperation(input)
	if !checked.Valid {
		return nil, s.validationError(&checked.Result, "bulk operation validation failed")
	}

	op := checked.Sanitized
	status := op.Action.Status()
	var closedAt *time.Time
	if op.Action == domain.BulkActionClosed {
		now := time.Now().UTC()
		closedAt = &now
	}

	updated, err := s.tickets.BulkUpdateStatus(ctx, op.TicketIDs, status, closedAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk status change applied",
		zap.String("action", string(op.Action)),
		zap.Int("requested", len(op.TicketIDs)),
		zap.Int64("updated", updated),
		zap.String("performed_by", actor.ID),
	)
	return &BulkResult{
		Requested: len(op.TicketIDs),
		Updated:   updated,
		Status:    status,
	}, nil
}

// Report aggregates ticket counts for the admin dashboard.
func (s *TicketService) Report(ctx context.Context) (*repository.ReportCounts, error) {
	return s.tickets.Counts(ctx)
}

// resolveAssignee loads the target account and checks it can hold
// tickets. Every path that sets assignedTo goes through here, so a
// ticket can never point at a missing, suspended, or non-staff account.
func (s *TicketService) resolveAssignee(ctx context.Context, assigneeID string) (*domain.User, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee", nil)
		}
		return nil, err
	}
	if !isStaff(assignee.Role) {
		return nil, apperrors.NewValidationError("tickets can only be assigned to technicians or admins", nil)
	}
	if assignee.Status != domain.UserStatusActive {
		return nil, apperrors.NewValidationError("assignee account is not active", nil)
	}
	return assignee, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	return ticket, nil
}

// validationError maps an accumulated result onto the error taxonomy.
// Malicious-content rejections get their own code and counter so
// security noise stands apart from ordinary bad input.
func (s *TicketService) validationError(res *validation.Result, message string) error {
	if res.Security {
		if s.metrics != nil {
			s.metrics.RecordSecurityRejection()
		}
		s.logger.Warn("payload rejected for disallowed content", zap.Any("errors", res.Errors))
		return apperrors.NewSecurityRejection(message, res.ErrorDetails())
	}
	return apperrors.NewValidationError(message, res.ErrorDetails())
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func isStaff(role domain.UserRole) bool {
	return role == domain.RoleTechnician || role == domain.RoleAdmin
}

func canAccess(actor *domain.User, ticket *domain.Ticket) bool {
	if isStaff(actor.Role) {
		return true
	}
	return ticket.CreatedBy == actor.ID
}

func transitionAllowed(from, to domain.TicketStatus) bool {
	for _, allowed := range staffTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max])
}
