package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// StatusChangeRepository stores the append-only audit trail.
type StatusChangeRepository interface {
	Append(ctx context.Context, change *domain.StatusChange) error
	// ListByTicket returns entries newest first; no entries yields an empty
	// slice, not an error.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusChange, error)
}

type statusChangeRepository struct {
	pool *pgxpool.Pool
}

// NewStatusChangeRepository builds a Postgres-backed audit store.
func NewStatusChangeRepository(pool *pgxpool.Pool) StatusChangeRepository {
	return &statusChangeRepository{pool: pool}
}

func (r *statusChangeRepository) Append(ctx context.Context, change *domain.StatusChange) error {
	const query = `
        INSERT INTO status_changes (ticket_id, changed_by_user_id, status, changed_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	if err := r.pool.QueryRow(ctx, query,
		change.TicketID,
		change.ChangedByID,
		change.Status,
		change.ChangedAt,
	).Scan(&change.ID); err != nil {
		return util.NewStorageError(err)
	}
	return nil
}

func (r *statusChangeRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusChange, error) {
	const query = `
        SELECT id, ticket_id, changed_by_user_id, status, changed_at
        FROM status_changes WHERE ticket_id=$1 ORDER BY changed_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, util.NewStorageError(err)
	}
	defer rows.Close()

	result := []domain.StatusChange{}
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(
			&change.ID,
			&change.TicketID,
			&change.ChangedByID,
			&change.Status,
			&change.ChangedAt,
		); err != nil {
			return nil, util.NewStorageError(err)
		}
		result = append(result, change)
	}
	if err := rows.Err(); err != nil {
		return nil, util.NewStorageError(err)
	}
	return result, nil
}
