package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const TokenTTL = 8 * time.Hour

type StoreAPI interface {
	FindCredential(ctx context.Context, email string) (Credential, error)
	TouchLogin(ctx context.Context, userID string) error
}

type Service struct {
	store  StoreAPI
	secret string
	// unknownHash is compared against when the account does not exist so
	// both failure paths cost one bcrypt comparison.
	unknownHash string
}

func NewService(store StoreAPI, secret string) *Service {
	hash, err := HashPassword("okr-unknown-account")
	if err != nil {
		slog.Warn("hash placeholder password failed", "err", err)
	}
	return &Service{store: store, secret: secret, unknownHash: hash}
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserContext `json:"user"`
	Name      string      `json:"name"`
}

// Login verifies the password and issues a token. Unknown accounts and wrong
// passwords both return ErrInvalidCredentials; store failures are returned
// as they are.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	cred, err := s.store.FindCredential(ctx, email)
	switch {
	case errors.Is(err, ErrUnknownAccount):
		_ = CheckPassword(s.unknownHash, password)
		return LoginResult{}, ErrInvalidCredentials
	case err != nil:
		return LoginResult{}, fmt.Errorf("find credential: %w", err)
	}
	if err := CheckPassword(cred.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	user := UserContext{UserID: cred.UserID, TenantID: cred.TenantID, RoleName: cred.Role}
	token, err := GenerateToken(s.secret, Claims{UserID: user.UserID, TenantID: user.TenantID, RoleName: user.RoleName}, TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.TouchLogin(ctx, cred.UserID); err != nil {
		slog.Warn("update last_login failed", "userId", cred.UserID, "err", err)
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(TokenTTL).UTC(),
		User:      user,
		Name:      cred.Name,
	}, nil
}
