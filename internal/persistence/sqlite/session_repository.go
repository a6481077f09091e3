package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/booking-platform/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, user_id, token, expires_at, revoked_at, created_at, updated_at"

// CreateSession stores a new session token for a user.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.UserID == "" || strings.TrimSpace(session.Token) == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	var revokedAt sql.NullString
	if session.RevokedAt != nil {
		revokedAt.String = session.RevokedAt.Format(time.RFC3339)
		revokedAt.Valid = true
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt.Format(time.RFC3339),
		revokedAt,
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	return session, nil
}

// GetSession retrieves a session by its token value.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.db.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token)

	var session persistence.Session
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&expiresAt,
		&revokedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if session.ExpiresAt, err = parseTimestamp(expiresAt, "expires_at"); err != nil {
		return persistence.Session{}, err
	}
	if revokedAt.Valid {
		if session.RevokedAt, err = parseTimestampPtr(revokedAt.String); err != nil {
			return persistence.Session{}, fmt.Errorf("sqlite: parse revoked_at: %w", err)
		}
	}
	if session.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return persistence.Session{}, err
	}

	return session, nil
}

// RevokeSession marks the session unusable from revokedAt onward and returns
// the updated record.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	result, err := r.db.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE token = ? AND revoked_at IS NULL`,
		revokedAt.Format(time.RFC3339),
		revokedAt.Format(time.RFC3339),
		token,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}

	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions prunes sessions whose expiry is at or before now.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.db.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}
