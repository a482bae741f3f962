package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"scope-chat/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	GetByGroupMember(ctx context.Context, group int, member string) (domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateConsent(ctx context.Context, id int64, consent string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetByGroupMember(ctx context.Context, group int, member string) (domain.User, error) {
	const query = `
		SELECT id, name, student_id, group_number, member, consent, created_at
		FROM users
		WHERE group_number = $1 AND member = $2
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, group, member).Scan(
		&u.ID,
		&u.Name,
		&u.StudentID,
		&u.Group,
		&u.Member,
		&u.Consent,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, translatePgError(err)
	}
	return u, nil
}

// Create inserta el usuario y completa user.ID con el id asignado.
func (r *PgUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (name, student_id, group_number, member, consent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.StudentID,
		user.Group,
		user.Member,
		user.Consent,
		user.CreatedAt,
	).Scan(&user.ID)
	return translatePgError(err)
}

func (r *PgUserRepository) UpdateConsent(ctx context.Context, id int64, consent string) error {
	const query = `UPDATE users SET consent = $1 WHERE id = $2`
	tag, err := r.pool.Exec(ctx, query, consent, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SQLiteUserRepository implementa UserRepository sobre database/sql + sqlite3.
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) GetByGroupMember(ctx context.Context, group int, member string) (domain.User, error) {
	const query = `
		SELECT id, name, student_id, group_number, member, consent, created_at
		FROM users
		WHERE group_number = ? AND member = ?
	`
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, group, member).Scan(
		&u.ID,
		&u.Name,
		&u.StudentID,
		&u.Group,
		&u.Member,
		&u.Consent,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, translateSQLiteError(err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (name, student_id, group_number, member, consent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.StudentID,
		user.Group,
		user.Member,
		user.Consent,
		user.CreatedAt,
	)
	if err != nil {
		return translateSQLiteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *SQLiteUserRepository) UpdateConsent(ctx context.Context, id int64, consent string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET consent = ? WHERE id = ?`, consent, id)
	if err != nil {
		return translateSQLiteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
