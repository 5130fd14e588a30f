package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures validated listing parameters. SortBy arrives
// pre-whitelisted from the validation layer and is mapped to a column
// here; nothing user-supplied is interpolated.
type TicketFilter struct {
	CreatedBy  *string
	AssignedTo *string
	Status     *domain.TicketStatus
	Urgency    *domain.TicketUrgency
	IssueType  *domain.IssueType
	Search     *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}

// ReportCounts aggregates ticket counts for the admin dashboard.
type ReportCounts struct {
	ByStatus    map[string]int64
	ByUrgency   map[string]int64
	ByIssueType map[string]int64
	Overdue     int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// BulkUpdateStatus moves all given tickets to the status and
	// returns how many rows changed.
	BulkUpdateStatus(ctx context.Context, ids []string, status domain.TicketStatus, closedAt *time.Time) (int64, error)
	Counts(ctx context.Context) (*ReportCounts, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, issue_type, urgency, status, category,
       department, location, contact_info, metadata, assigned_to, created_by,
       due_date, created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, issue_type, urgency, status, category,
            department, location, contact_info, metadata, assigned_to, created_by, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.IssueType,
		ticket.Urgency,
		ticket.Status,
		ticket.Category,
		ticket.Department,
		ticket.Location,
		ticket.ContactInfo,
		ticket.Metadata,
		ticket.AssignedTo,
		ticket.CreatedBy,
		ticket.DueDate,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, issue_type=$3, urgency=$4, status=$5,
            category=$6, department=$7, location=$8, contact_info=$9, metadata=$10,
            assigned_to=$11, due_date=$12, closed_at=$13, updated_at=NOW()
        WHERE id=$14`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.IssueType,
		ticket.Urgency,
		ticket.Status,
		ticket.Category,
		ticket.Department,
		ticket.Location,
		ticket.ContactInfo,
		ticket.Metadata,
		ticket.AssignedTo,
		ticket.DueDate,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		scanTargets(&ticket)...,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// sortColumns maps validated sort fields to SQL columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"urgency":   "urgency",
	"status":    "status",
	"title":     "title",
	"dueDate":   "due_date",
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Urgency != nil {
		args = append(args, *filter.Urgency)
		clauses = append(clauses, fmt.Sprintf("urgency=$%d", len(args)))
	}
	if filter.IssueType != nil {
		args = append(args, *filter.IssueType)
		clauses = append(clauses, fmt.Sprintf("issue_type=$%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), column, order, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) BulkUpdateStatus(ctx context.Context, ids []string, status domain.TicketStatus, closedAt *time.Time) (int64, error) {
	const query = `
        UPDATE tickets SET status=$1, closed_at=$2, updated_at=NOW()
        WHERE id = ANY($3)`
	cmd, err := r.pool.Exec(ctx, query, status, closedAt, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) Counts(ctx context.Context) (*ReportCounts, error) {
	counts := &ReportCounts{
		ByStatus:    map[string]int64{},
		ByUrgency:   map[string]int64{},
		ByIssueType: map[string]int64{},
	}

	for column, target := range map[string]map[string]int64{
		"status":     counts.ByStatus,
		"urgency":    counts.ByUrgency,
		"issue_type": counts.ByIssueType,
	} {
		rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM tickets GROUP BY %s`, column, column))
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, err
			}
			target[key] = count
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	const overdueQuery = `
        SELECT COUNT(*) FROM tickets
        WHERE due_date IS NOT NULL AND due_date < NOW()
          AND status NOT IN ('resolved', 'closed')`
	if err := r.pool.QueryRow(ctx, overdueQuery).Scan(&counts.Overdue); err != nil {
		return nil, err
	}
	return counts, nil
}

func scanTargets(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.IssueType,
		&ticket.Urgency,
		&ticket.Status,
		&ticket.Category,
		&ticket.Department,
		&ticket.Location,
		&ticket.ContactInfo,
		&ticket.Metadata,
		&ticket.AssignedTo,
		&ticket.CreatedBy,
		&ticket.DueDate,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(scanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
