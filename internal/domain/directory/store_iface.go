package directory

import "context"

type StoreAPI interface {
	ListUsers(ctx context.Context, tenantID string, filter UserFilter) ([]User, error)
	GetUser(ctx context.Context, tenantID, userID string) (User, error)
	GetUsers(ctx context.Context, tenantID string, userIDs []string) ([]User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, tenantID string, user NewUser, passwordHash string) (string, error)
	ListDepartments(ctx context.Context, tenantID string) ([]Department, error)
	GetDepartment(ctx context.Context, tenantID, departmentID string) (Department, error)
	CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error)
}
