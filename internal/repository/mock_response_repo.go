package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"scope-chat/internal/domain"
)

// MockResponseRepository da acceso al pool de respuestas enlatadas.
type MockResponseRepository interface {
	GetByID(ctx context.Context, id int64) (domain.MockResponse, error)
	Count(ctx context.Context) (int, error)
	// InsertAll carga los mensajes con ids 1..N dentro de una transaccion.
	InsertAll(ctx context.Context, messages []string) error
}

type PgMockResponseRepository struct {
	pool *pgxpool.Pool
}

func NewPgMockResponseRepository(pool *pgxpool.Pool) *PgMockResponseRepository {
	return &PgMockResponseRepository{pool: pool}
}

func (r *PgMockResponseRepository) GetByID(ctx context.Context, id int64) (domain.MockResponse, error) {
	var m domain.MockResponse
	err := r.pool.QueryRow(ctx, `SELECT id, message FROM mock_responses WHERE id = $1`, id).Scan(&m.ID, &m.Message)
	if err != nil {
		return domain.MockResponse{}, translatePgError(err)
	}
	return m, nil
}

func (r *PgMockResponseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mock_responses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PgMockResponseRepository) InsertAll(ctx context.Context, messages []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, msg := range messages {
		if _, err := tx.Exec(ctx, `INSERT INTO mock_responses (id, message) VALUES ($1, $2)`, int64(i+1), msg); err != nil {
			return fmt.Errorf("insert mock response %d: %w", i+1, translatePgError(err))
		}
	}
	return tx.Commit(ctx)
}

type SQLiteMockResponseRepository struct {
	db *sql.DB
}

func NewSQLiteMockResponseRepository(db *sql.DB) *SQLiteMockResponseRepository {
	return &SQLiteMockResponseRepository{db: db}
}

func (r *SQLiteMockResponseRepository) GetByID(ctx context.Context, id int64) (domain.MockResponse, error) {
	var m domain.MockResponse
	err := r.db.QueryRowContext(ctx, `SELECT id, message FROM mock_responses WHERE id = ?`, id).Scan(&m.ID, &m.Message)
	if err != nil {
		return domain.MockResponse{}, translateSQLiteError(err)
	}
	return m, nil
}

func (r *SQLiteMockResponseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mock_responses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SQLiteMockResponseRepository) InsertAll(ctx context.Context, messages []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO mock_responses (id, message) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		if _, err := stmt.ExecContext(ctx, int64(i+1), msg); err != nil {
			return fmt.Errorf("insert mock response %d: %w", i+1, translateSQLiteError(err))
		}
	}
	return tx.Commit()
}
