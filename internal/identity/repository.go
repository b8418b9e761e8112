package identity

import (
	"context"
	"database/sql"
)

// Repository reads customer identity. Account management lives elsewhere; the
// storefront only ever needs a display name and an email address.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DisplayName returns the profile's full name, or "" when no profile exists.
// Callers are expected to fall back to a generic greeting.
func (r *Repository) DisplayName(ctx context.Context, userID string) (string, error) {
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT full_name FROM profiles WHERE user_id = $1
	`, userID).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return name.String, nil
}

// Email returns the user's email address, or "" when the user is unknown or
// has no address on file.
func (r *Repository) Email(ctx context.Context, userID string) (string, error) {
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT email FROM users WHERE id = $1
	`, userID).Scan(&email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return email.String, nil
}
