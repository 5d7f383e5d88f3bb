package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/desertthunder/catx/internal/models"
)

// Persisted session keys.
const (
	KeyCredential      = "credential"
	KeyRole            = "role"
	KeyDisplayName     = "display_name"
	KeyUserID          = "user_id"
	KeyArtistProfileID = "artist_profile_id"
)

// SessionRepository stores the current session in the session_store table.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load returns a point-in-time snapshot of the persisted session. Missing keys are left empty.
func (r *SessionRepository) Load(ctx context.Context) (models.Session, error) {
	var session models.Session

	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM session_store")
	if err != nil {
		return session, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return session, fmt.Errorf("failed to scan session key: %w", err)
		}

		switch key {
		case KeyCredential:
			session.Credential = value
		case KeyRole:
			session.Role = models.ParseRole(value)
		case KeyDisplayName:
			session.DisplayName = value
		case KeyUserID:
			if session.UserID, err = parseID(value); err != nil {
				return session, fmt.Errorf("invalid %s: %w", key, err)
			}
		case KeyArtistProfileID:
			if session.ArtistProfileID, err = parseID(value); err != nil {
				return session, fmt.Errorf("invalid %s: %w", key, err)
			}
		}
	}

	if err := rows.Err(); err != nil {
		return session, fmt.Errorf("error iterating session keys: %w", err)
	}

	return session, nil
}

// Save replaces the persisted session in a single transaction.
func (r *SessionRepository) Save(ctx context.Context, session models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	values := map[string]string{
		KeyCredential:  session.Credential,
		KeyRole:        string(session.Role),
		KeyDisplayName: session.DisplayName,
	}
	if session.UserID != nil {
		values[KeyUserID] = strconv.FormatInt(*session.UserID, 10)
	}
	if session.ArtistProfileID != nil {
		values[KeyArtistProfileID] = strconv.FormatInt(*session.ArtistProfileID, 10)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM session_store"); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)")
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for key, value := range values {
			if _, err := stmt.ExecContext(ctx, key, value); err != nil {
				return fmt.Errorf("failed to store %s: %w", key, err)
			}
		}
		return nil
	})
}

// Clear removes every persisted session key in one statement.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM session_store"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func parseID(value string) (*int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
