package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketQuery captures search parameters resolved by the visibility router.
//
// A non-zero Number short-circuits every other filter: number lookup is a
// direct-access key across the whole collection. Title, Status and Priority
// are case-insensitive substring matches; empty string means unrestricted.
type TicketQuery struct {
	Number     int
	OwnerID    *string
	AssigneeID *string
	Title      string
	Status     string
	Priority   string
	Page       int
	PageSize   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	// ApplyStatusChange persists the ticket's new status together with its
	// audit entry as one transactional unit.
	ApplyStatusChange(ctx context.Context, ticket *domain.Ticket, change *domain.StatusChange) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	DeleteByID(ctx context.Context, id string) error
	Query(ctx context.Context, query TicketQuery) ([]domain.Ticket, int, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates a Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, number, owner_user_id, assignee_user_id, title, description, status, priority, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, owner_user_id, assignee_user_id, title, description, status, priority, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.OwnerID,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.UpdatedAt); err != nil {
		return util.NewStorageError(err)
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assignee_user_id=$1, title=$2, description=$3, status=$4, priority=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ID,
	)
	if err != nil {
		return util.NewStorageError(err)
	}
	if cmd.RowsAffected() == 0 {
		return util.NewNotFound("ticket", map[string]any{"id": ticket.ID})
	}
	return nil
}

func (r *ticketRepository) ApplyStatusChange(ctx context.Context, ticket *domain.Ticket, change *domain.StatusChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return util.NewStorageError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateQuery = `
        UPDATE tickets SET assignee_user_id=$1, status=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := tx.Exec(ctx, updateQuery, ticket.AssigneeID, ticket.Status, ticket.ID)
	if err != nil {
		return util.NewStorageError(err)
	}
	if cmd.RowsAffected() == 0 {
		return util.NewNotFound("ticket", map[string]any{"id": ticket.ID})
	}

	const insertQuery = `
        INSERT INTO status_changes (ticket_id, changed_by_user_id, status, changed_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	if err := tx.QueryRow(ctx, insertQuery,
		change.TicketID,
		change.ChangedByID,
		change.Status,
		change.ChangedAt,
	).Scan(&change.ID); err != nil {
		return util.NewStorageError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return util.NewStorageError(err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.OwnerID,
		&ticket.AssigneeID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, util.NewStorageError(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) DeleteByID(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return util.NewStorageError(err)
	}
	if cmd.RowsAffected() == 0 {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}
	return nil
}

func (r *ticketRepository) Query(ctx context.Context, query TicketQuery) ([]domain.Ticket, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if query.Number > 0 {
		args = append(args, query.Number)
		clauses = append(clauses, fmt.Sprintf("number=$%d", len(args)))
	} else {
		if query.OwnerID != nil {
			args = append(args, *query.OwnerID)
			clauses = append(clauses, fmt.Sprintf("owner_user_id=$%d", len(args)))
		}
		if query.AssigneeID != nil {
			args = append(args, *query.AssigneeID)
			clauses = append(clauses, fmt.Sprintf("assignee_user_id=$%d", len(args)))
		}
		if term := strings.TrimSpace(query.Title); term != "" {
			args = append(args, "%"+strings.ToLower(term)+"%")
			clauses = append(clauses, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
		}
		if term := strings.TrimSpace(query.Status); term != "" {
			args = append(args, "%"+strings.ToLower(term)+"%")
			clauses = append(clauses, fmt.Sprintf("LOWER(status) LIKE $%d", len(args)))
		}
		if term := strings.TrimSpace(query.Priority); term != "" {
			args = append(args, "%"+strings.ToLower(term)+"%")
			clauses = append(clauses, fmt.Sprintf("LOWER(priority) LIKE $%d", len(args)))
		}
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	sql := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total FROM tickets WHERE %s
        ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, util.NewStorageError(err)
	}
	defer rows.Close()

	var result []domain.Ticket
	total := 0
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Number,
			&ticket.OwnerID,
			&ticket.AssigneeID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, util.NewStorageError(err)
		}
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, util.NewStorageError(err)
	}
	return result, total, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY created_at DESC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, util.NewStorageError(err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Number,
			&ticket.OwnerID,
			&ticket.AssigneeID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, util.NewStorageError(err)
		}
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, util.NewStorageError(err)
	}
	return result, nil
}
