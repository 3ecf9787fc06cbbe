package directory

import (
	"context"
	"errors"
	"strings"

	"okr/internal/domain/auth"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListUsers(ctx context.Context, tenantID string, filter UserFilter) ([]User, error) {
	return s.store.ListUsers(ctx, tenantID, filter)
}

func (s *Service) GetUser(ctx context.Context, tenantID, userID string) (User, error) {
	return s.store.GetUser(ctx, tenantID, userID)
}

// EmailOf returns the address notifications for userID are mailed to.
func (s *Service) EmailOf(ctx context.Context, tenantID, userID string) (string, error) {
	user, err := s.store.GetUser(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (s *Service) GetUsers(ctx context.Context, tenantID string, userIDs []string) (map[string]User, error) {
	users, err := s.store.GetUsers(ctx, tenantID, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]User, len(users))
	for _, user := range users {
		out[user.ID] = user
	}
	return out, nil
}

func (s *Service) Subordinates(ctx context.Context, tenantID, leaderID string) ([]User, error) {
	return s.store.ListUsers(ctx, tenantID, UserFilter{LeaderID: leaderID})
}

func (s *Service) LeaderOf(ctx context.Context, tenantID, userID string) (string, error) {
	user, err := s.store.GetUser(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	return user.LeaderID, nil
}

func (s *Service) CreateUser(ctx context.Context, tenantID string, user NewUser) (string, error) {
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if !auth.ValidRole(user.Role) {
		return "", ErrInvalidRole
	}
	exists, err := s.store.EmailExists(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrEmailTaken
	}
	if user.LeaderID != "" {
		if _, err := s.store.GetUser(ctx, tenantID, user.LeaderID); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return "", ErrLeaderNotFound
			}
			return "", err
		}
	}
	if user.DepartmentID != "" {
		if _, err := s.store.GetDepartment(ctx, tenantID, user.DepartmentID); err != nil {
			return "", err
		}
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return "", err
	}
	return s.store.CreateUser(ctx, tenantID, user, hash)
}

func (s *Service) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	return s.store.ListDepartments(ctx, tenantID)
}

func (s *Service) CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error) {
	dep.Name = strings.TrimSpace(dep.Name)
	if dep.HeadID != "" {
		if _, err := s.store.GetUser(ctx, tenantID, dep.HeadID); err != nil {
			return "", err
		}
	}
	return s.store.CreateDepartment(ctx, tenantID, dep)
}
