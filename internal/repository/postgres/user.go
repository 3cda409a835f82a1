package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/printmechecks/server/internal/domain"
)

// UserRepo persists user profiles keyed by the identity provider's
// subject claim.
type UserRepo struct{ db *sql.DB }

// NewUserRepo creates a Postgres-backed user repository.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Upsert inserts a user on first sight and refreshes email and name on
// every later sight. Role is assigned once and never overwritten here.
func (r *UserRepo) Upsert(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, subject, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (subject) DO UPDATE SET email = $3, name = $4, updated_at = NOW()
		RETURNING id, role, created_at, updated_at
	`, u.ID, u.Subject, u.Email, u.Name, u.Role).
		Scan(&u.ID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
