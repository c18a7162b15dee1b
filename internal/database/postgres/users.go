package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/face-engine/internal/database"
)

const userColumns = `id, first_name, last_name, email, phone, portrait_path,
	is_active, is_superuser, created_by, updated_by, created_at, updated_at`

// UserRepository provides PostgreSQL-backed user storage.
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Get returns a single user by id.
func (r *UserRepository) Get(ctx context.Context, id int64) (*database.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// EmailExists checks whether any user already has the email.
// Emails are compared case-insensitively.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`,
		strings.TrimSpace(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]database.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ListWithoutEncoding returns users that have no face encoding stored.
func (r *UserRepository) ListWithoutEncoding(ctx context.Context) ([]database.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE NOT EXISTS (SELECT 1 FROM face_encodings fe WHERE fe.user_id = u.id)
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query users without encoding: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

// CreateWithEncoding inserts the user and its encoding in one transaction.
func (r *UserRepository) CreateWithEncoding(ctx context.Context, u *database.User, encoding []float64) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email, phone, portrait_path,
		                   is_active, is_superuser, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, u.FirstName, u.LastName, u.Email, u.Phone, u.PortraitPath,
		u.IsActive, u.IsSuperuser, u.CreatedBy, u.UpdatedBy,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return database.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO face_encodings (user_id, encoding) VALUES ($1, $2)`,
		u.ID, database.EncodeVector(encoding),
	); err != nil {
		return fmt.Errorf("insert face encoding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return database.ErrDuplicateEmail
		}
		return fmt.Errorf("commit user: %w", err)
	}
	return nil
}

// Delete removes a user. Encodings cascade, recognition logs keep a null user_id.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return checkAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*database.User, error) {
	var u database.User
	if err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PortraitPath,
		&u.IsActive, &u.IsSuperuser, &u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUsers(rows *sql.Rows) ([]database.User, error) {
	var users []database.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
