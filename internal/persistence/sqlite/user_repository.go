package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/booking-platform/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, email, display_name, password_hash, is_host, created_at, updated_at"

// CreateUser inserts a new account record.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}

	user.Email = normalizeEmail(user.Email)

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.IsHost,
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	return user, nil
}

// GetUser retrieves an account by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.db.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves an account by its login name.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	if username == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.db.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// UpdateUser overwrites the mutable account fields.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}

	user.Email = normalizeEmail(user.Email)

	query := `
		UPDATE users
		SET email = ?, display_name = ?, password_hash = ?, is_host = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.db.ExecContext(ctx, query,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.IsHost,
		user.UpdatedAt.Format(time.RFC3339),
		user.ID,
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.User{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.User{}, persistence.ErrNotFound
	}

	return user, nil
}

// DeleteUser removes the account. Sessions, the owned calendar with its slots
// and bookings, and the user's guest bookings all go with it through the
// ON DELETE CASCADE references.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		return nil
	})
}

func scanUser(row *sql.Row) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.IsHost,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	if user.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return persistence.User{}, err
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
