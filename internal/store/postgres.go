package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/request-desk/internal/domain"
	apperrors "github.com/spec-kit/request-desk/pkg/util/errorutil"
)

// PostgresStore persists the collection in a single tickets table with the
// message thread embedded as JSONB, so every row is a complete record and
// a mutate is one transactional read-modify-write.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const ticketsSchema = `
CREATE TABLE IF NOT EXISTS tickets (
    id                 TEXT PRIMARY KEY,
    title              TEXT NOT NULL,
    description        TEXT NOT NULL,
    category           TEXT NOT NULL,
    status             TEXT NOT NULL,
    owner_id           TEXT NOT NULL,
    owner_display_name TEXT NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL,
    messages           JSONB NOT NULL DEFAULT '[]'
)`

// NewPostgresStore ensures the schema exists and returns the store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("postgres pool not configured")
	}
	if _, err := pool.Exec(ctx, ticketsSchema); err != nil {
		return nil, fmt.Errorf("ensure tickets schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

const ticketColumns = `id, title, description, category, status, owner_id, owner_display_name, created_at, updated_at, messages`

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	return scanTicket(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at, id`)
	if err != nil {
		return nil, apperrors.NewTransient(err)
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewTransient(err)
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, ticket *domain.Ticket) error {
	messages, err := json.Marshal(ticket.Messages)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	_, err = s.pool.Exec(ctx, `
        INSERT INTO tickets (id, title, description, category, status, owner_id, owner_display_name, created_at, updated_at, messages)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.OwnerID,
		ticket.OwnerDisplayName,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		messages,
	)
	if err != nil {
		return apperrors.NewTransient(err)
	}
	return nil
}

// Mutate locks the row for the duration of fn so concurrent mutations on
// the same ticket serialize at the database.
func (s *PostgresStore) Mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewTransient(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1 FOR UPDATE`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	if err := fn(ticket); err != nil {
		return nil, err
	}
	messages, err := json.Marshal(ticket.Messages)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if _, err := tx.Exec(ctx, `
        UPDATE tickets SET title=$1, description=$2, category=$3, status=$4, updated_at=$5, messages=$6
        WHERE id=$7`,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.UpdatedAt,
		messages,
		ticket.ID,
	); err != nil {
		return nil, apperrors.NewTransient(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewTransient(err)
	}
	return ticket, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var messages []byte
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.OwnerID,
		&ticket.OwnerDisplayName,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&messages,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperrors.NewTransient(err)
	}
	if err := json.Unmarshal(messages, &ticket.Messages); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ticket, nil
}
