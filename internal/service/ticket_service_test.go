package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets    map[string]*domain.Ticket
	nextID     int
	bulkIDs    []string
	bulkStatus domain.TicketStatus
	bulkClosed *time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.nextID++
	// 24-hex ids so bulk validation accepts them.
	ticket.ID = fmt.Sprintf("%024d", r.nextID)
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	copied.UpdatedAt = time.Now().UTC()
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) BulkUpdateStatus(ctx context.Context, ids []string, status domain.TicketStatus, closedAt *time.Time) (int64, error) {
	r.bulkIDs = ids
	r.bulkStatus = status
	r.bulkClosed = closedAt
	var updated int64
	for _, id := range ids {
		if ticket, ok := r.tickets[id]; ok {
			ticket.Status = status
			ticket.ClosedAt = closedAt
			updated++
		}
	}
	return updated, nil
}

func (r *fakeTicketRepo) Counts(ctx context.Context) (*repository.ReportCounts, error) {
	counts := &repository.ReportCounts{
		ByStatus:    map[string]int64{},
		ByUrgency:   map[string]int64{},
		ByIssueType: map[string]int64{},
	}
	for _, ticket := range r.tickets {
		counts.ByStatus[string(ticket.Status)]++
		counts.ByUrgency[string(ticket.Urgency)]++
		counts.ByIssueType[string(ticket.IssueType)]++
	}
	return counts, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
	nextID   int
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.nextID++
	comment.ID = fmt.Sprintf("comment-%d", r.nextID)
	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		out = append(out, comment)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash string) error { return nil }
func (r *fakeUserRepo) SetResetToken(ctx context.Context, id, hash string, exp time.Time) error {
	return nil
}
func (r *fakeUserRepo) GetByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeUserRepo) SetVerifyToken(ctx context.Context, id, hash string, exp time.Time) error {
	return nil
}
func (r *fakeUserRepo) ConsumeVerifyToken(ctx context.Context, hash string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeUserRepo) ReplaceRefreshToken(ctx context.Context, id, token string) error { return nil }
func (r *fakeUserRepo) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	return nil
}
func (r *fakeUserRepo) ClearRefreshToken(ctx context.Context, id string) error { return nil }

const (
	endUserID    = "0c5b0df5-5b35-4b0a-9d1a-3f2e1d4c5b6a"
	otherUserID  = "1d6c1ef6-6c46-4c1b-8e2b-4a3f2e5d6c7b"
	technicianID = "2e7d2fa7-7d57-4d2c-9f3c-5b4a3f6e7d8c"
)

func newFixture() (*TicketService, *fakeTicketRepo, *fakeCommentRepo) {
	tickets := newFakeTicketRepo()
	comments := &fakeCommentRepo{}
	users := &fakeUserRepo{users: map[string]*domain.User{
		endUserID:    {ID: endUserID, Role: domain.RoleUser, Status: domain.UserStatusActive},
		technicianID: {ID: technicianID, Role: domain.RoleTechnician, Status: domain.UserStatusActive},
	}}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		CommentRepo: comments,
		UserRepo:    users,
		Logger:      zap.NewNop(),
	})
	return svc, tickets, comments
}

func endUser() *domain.User {
	return &domain.User{ID: endUserID, Role: domain.RoleUser, Status: domain.UserStatusActive}
}

func technician() *domain.User {
	return &domain.User{ID: technicianID, Role: domain.RoleTechnician, Status: domain.UserStatusActive}
}

func createTicket(t *testing.T, svc *TicketService, actor *domain.User) *domain.Ticket {
	t.Helper()
	title := "Lab PC will not boot"
	desc := "The workstation in lab 3 shows a blank screen after powering on."
	issueType := "hardware"
	ticket, _, err := svc.Create(context.Background(), actor, &validation.TicketInput{
		Title:       &title,
		Description: &desc,
		IssueType:   &issueType,
	}, nil)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error")
	}
	return apperrors.ToDomainError(err).Code
}

func TestCreateAppliesSLADueDate(t *testing.T) {
	svc, _, _ := newFixture()
	before := time.Now().UTC()

	ticket := createTicket(t, svc, endUser())
	if ticket.Urgency != domain.TicketUrgencyMedium {
		t.Errorf("urgency = %s, want medium default", ticket.Urgency)
	}
	if ticket.DueDate == nil {
		t.Fatalf("expected SLA due date to be filled in")
	}
	got := ticket.DueDate.Sub(before)
	if got < 47*time.Hour || got > 49*time.Hour {
		t.Errorf("due date offset = %v, want ~48h for medium", got)
	}
	if ticket.CreatedBy != endUserID {
		t.Errorf("createdBy = %s, want the acting user", ticket.CreatedBy)
	}
}

func TestCreateIgnoresSpoofedCreator(t *testing.T) {
	svc, _, _ := newFixture()
	title := "Spoof attempt"
	desc := "Trying to open a ticket under somebody else's identity."
	issueType := "account"
	spoofed := otherUserID
	ticket, _, err := svc.Create(context.Background(), endUser(), &validation.TicketInput{
		Title:       &title,
		Description: &desc,
		IssueType:   &issueType,
		CreatedBy:   &spoofed,
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.CreatedBy != endUserID {
		t.Errorf("createdBy = %s, payload value must be ignored", ticket.CreatedBy)
	}
}

func TestCreateSecurityRejection(t *testing.T) {
	svc, _, _ := newFixture()
	title := "<script>alert(1)</script> broken"
	desc := "This description is fine and long enough to pass checks."
	issueType := "software"
	_, _, err := svc.Create(context.Background(), endUser(), &validation.TicketInput{
		Title:       &title,
		Description: &desc,
		IssueType:   &issueType,
	}, nil)
	if code := domainCode(t, err); code != "SECURITY_REJECTED" {
		t.Errorf("code = %s, want SECURITY_REJECTED", code)
	}
}

func TestCreateAssignmentRules(t *testing.T) {
	svc, _, _ := newFixture()
	title := "Projector flickers in room 12"
	desc := "The ceiling projector flickers and drops the signal every few minutes."
	issueType := "hardware"
	assignee := technicianID

	// Regular users cannot pre-assign tickets at creation.
	_, _, err := svc.Create(context.Background(), endUser(), &validation.TicketInput{
		Title:       &title,
		Description: &desc,
		IssueType:   &issueType,
		AssignedTo:  &assignee,
	}, nil)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN for user assignment at creation", code)
	}

	// Staff may, and the assignee must resolve to active staff.
	ticket, _, err := svc.Create(context.Background(), technician(), &validation.TicketInput{
		Title:       &title,
		Description: &desc,
		IssueType:   &issueType,
		AssignedTo:  &assignee,
	}, nil)
	if err != nil {
		t.Fatalf("staff create with assignee: %v", err)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != technicianID {
		t.Errorf("assignedTo = %v, want %s", ticket.AssignedTo, technicianID)
	}

	ghost := otherUserID
	_, _, err = svc.Create(context.Background(), technician(), &validation.TicketInput{
		Title:       &title,
		Description: &desc,
		IssueType:   &issueType,
		AssignedTo:  &ghost,
	}, nil)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND for unknown assignee", code)
	}
}

func TestUpdateOwnershipRules(t *testing.T) {
	svc, _, _ := newFixture()
	ticket := createTicket(t, svc, endUser())

	stranger := &domain.User{ID: otherUserID, Role: domain.RoleUser, Status: domain.UserStatusActive}
	title := "Hijacked title here"
	_, _, err := svc.Update(context.Background(), stranger, ticket.ID, &validation.TicketInput{Title: &title}, nil)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN for foreign ticket", code)
	}

	status := "resolved"
	_, _, err = svc.Update(context.Background(), endUser(), ticket.ID, &validation.TicketInput{Status: &status}, nil)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN for user status change", code)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, _, _ := newFixture()
	tech := technician()

	t.Run("open to in-progress", func(t *testing.T) {
		ticket := createTicket(t, svc, endUser())
		status := "in-progress"
		updated, _, err := svc.Update(context.Background(), tech, ticket.ID, &validation.TicketInput{Status: &status}, nil)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Status != domain.TicketStatusInProgress {
			t.Errorf("status = %s", updated.Status)
		}
	})

	t.Run("closing stamps closedAt", func(t *testing.T) {
		ticket := createTicket(t, svc, endUser())
		status := "closed"
		updated, _, err := svc.Update(context.Background(), tech, ticket.ID, &validation.TicketInput{Status: &status}, nil)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ClosedAt == nil {
			t.Errorf("expected closedAt to be stamped")
		}
	})

	t.Run("reopen clears closedAt", func(t *testing.T) {
		ticket := createTicket(t, svc, endUser())
		status := "closed"
		if _, _, err := svc.Update(context.Background(), tech, ticket.ID, &validation.TicketInput{Status: &status}, nil); err != nil {
			t.Fatalf("close: %v", err)
		}
		status = "open"
		updated, _, err := svc.Update(context.Background(), tech, ticket.ID, &validation.TicketInput{Status: &status}, nil)
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		if updated.ClosedAt != nil {
			t.Errorf("closedAt must be cleared on reopen")
		}
	})

	t.Run("closed to resolved rejected", func(t *testing.T) {
		ticket := createTicket(t, svc, endUser())
		status := "closed"
		if _, _, err := svc.Update(context.Background(), tech, ticket.ID, &validation.TicketInput{Status: &status}, nil); err != nil {
			t.Fatalf("close: %v", err)
		}
		status = "resolved"
		_, _, err := svc.Update(context.Background(), tech, ticket.ID, &validation.TicketInput{Status: &status}, nil)
		if code := domainCode(t, err); code != "VALIDATION_FAILED" {
			t.Errorf("code = %s, want VALIDATION_FAILED for illegal transition", code)
		}
	})
}

func TestCommentsAndInternalVisibility(t *testing.T) {
	svc, _, _ := newFixture()
	ticket := createTicket(t, svc, endUser())
	tech := technician()

	internal := true
	content := "swap the PSU, ordering part"
	_, err := svc.AddComment(context.Background(), endUser(), ticket.ID, &validation.CommentInput{
		Content:    &content,
		IsInternal: &internal,
	})
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %s, users must not post internal notes", code)
	}

	if _, err := svc.AddComment(context.Background(), tech, ticket.ID, &validation.CommentInput{
		Content:    &content,
		IsInternal: &internal,
	}); err != nil {
		t.Fatalf("tech internal comment: %v", err)
	}

	public := "we are looking into it"
	if _, err := svc.AddComment(context.Background(), tech, ticket.ID, &validation.CommentInput{Content: &public}); err != nil {
		t.Fatalf("tech public comment: %v", err)
	}

	detail, err := svc.Get(context.Background(), endUser(), ticket.ID)
	if err != nil {
		t.Fatalf("get as user: %v", err)
	}
	if len(detail.Comments) != 1 {
		t.Errorf("user sees %d comments, want 1 public", len(detail.Comments))
	}

	detail, err = svc.Get(context.Background(), tech, ticket.ID)
	if err != nil {
		t.Fatalf("get as tech: %v", err)
	}
	if len(detail.Comments) != 2 {
		t.Errorf("tech sees %d comments, want 2", len(detail.Comments))
	}
}

func TestAssignRules(t *testing.T) {
	svc, _, _ := newFixture()
	ticket := createTicket(t, svc, endUser())
	tech := technician()

	updated, err := svc.Assign(context.Background(), tech, ticket.ID, technicianID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != technicianID {
		t.Errorf("assignedTo = %v", updated.AssignedTo)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Errorf("assignment must move open tickets to in-progress, got %s", updated.Status)
	}

	_, err = svc.Assign(context.Background(), tech, ticket.ID, otherUserID)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND for unknown assignee", code)
	}

	_, err = svc.Assign(context.Background(), tech, ticket.ID, "not-an-id")
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED for malformed id", code)
	}

	_, err = svc.Assign(context.Background(), tech, ticket.ID, endUserID)
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED for non-staff assignee", code)
	}

	// The update path runs the same assignee resolution.
	assignee := endUserID
	_, _, err = svc.Update(context.Background(), tech, ticket.ID, &validation.TicketInput{AssignedTo: &assignee}, nil)
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED when updating to a non-staff assignee", code)
	}
}

func TestBulkClosesTickets(t *testing.T) {
	svc, tickets, _ := newFixture()
	a := createTicket(t, svc, endUser())
	b := createTicket(t, svc, endUser())

	action := "closed"
	result, err := svc.Bulk(context.Background(), technician(), &validation.BulkInput{
		TicketIDs: []string{a.ID, b.ID},
		Action:    &action,
	})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if result.Updated != 2 {
		t.Errorf("updated = %d, want 2", result.Updated)
	}
	if result.Status != domain.TicketStatusClosed {
		t.Errorf("status = %s, want closed", result.Status)
	}
	if tickets.bulkClosed == nil {
		t.Errorf("closed action must pass a closedAt timestamp")
	}
}

func TestBulkRejectsBadIDs(t *testing.T) {
	svc, tickets, _ := newFixture()
	action := "resolved"
	_, err := svc.Bulk(context.Background(), technician(), &validation.BulkInput{
		TicketIDs: []string{"not-an-id"},
		Action:    &action,
	})
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", code)
	}
	if tickets.bulkIDs != nil {
		t.Errorf("repository must not be touched when validation fails")
	}
}

func TestListScopesRegularUsers(t *testing.T) {
	svc, _, _ := newFixture()
	createTicket(t, svc, endUser())
	other := &domain.User{ID: otherUserID, Role: domain.RoleUser, Status: domain.UserStatusActive}
	createTicket(t, svc, other)

	mine, _, err := svc.List(context.Background(), endUser(), validation.FilterInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("user list = %d tickets, want own only", len(mine))
	}

	all, _, err := svc.List(context.Background(), technician(), validation.FilterInput{})
	if err != nil {
		t.Fatalf("list as tech: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("tech list = %d tickets, want all", len(all))
	}
}
