package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnknownAccount = errors.New("no active account for email")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Credential is what login needs to know about an account.
type Credential struct {
	UserID       string
	TenantID     string
	Role         string
	Name         string
	PasswordHash string
}

// FindCredential looks up an active account by email, case-insensitively.
func (s *Store) FindCredential(ctx context.Context, email string) (Credential, error) {
	var out Credential
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, role, name, password_hash
    FROM users
    WHERE lower(email) = lower($1) AND status = 'active'
  `, email).Scan(&out.UserID, &out.TenantID, &out.Role, &out.Name, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrUnknownAccount
	}
	return out, err
}

func (s *Store) TouchLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}
