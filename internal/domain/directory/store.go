package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `id, email, name, role, COALESCE(department_id::text, ''), COALESCE(leader_id::text, ''), status, created_at`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.DepartmentID, &user.LeaderID, &user.Status, &user.CreatedAt)
	return user, err
}

func (s *Store) ListUsers(ctx context.Context, tenantID string, filter UserFilter) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		query += fmt.Sprintf(" AND department_id = $%d", len(args))
	}
	if filter.LeaderID != "" {
		args = append(args, filter.LeaderID)
		query += fmt.Sprintf(" AND leader_id = $%d", len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, tenantID, userID string) (User, error) {
	user, err := scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE tenant_id = $1 AND id = $2", tenantID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return user, err
}

func (s *Store) GetUsers(ctx context.Context, tenantID string, userIDs []string) ([]User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, "SELECT "+userColumns+" FROM users WHERE tenant_id = $1 AND id = ANY($2)", tenantID, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, tenantID string, user NewUser, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, name, role, department_id, leader_id, password_hash, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, tenantID, user.Email, user.Name, user.Role, nullIfEmpty(user.DepartmentID), nullIfEmpty(user.LeaderID), passwordHash, UserStatusActive).Scan(&id)
	return id, err
}

func (s *Store) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(head_id::text, ''), created_at
    FROM departments
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.HeadID, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, tenantID, departmentID string) (Department, error) {
	var dep Department
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(head_id::text, ''), created_at
    FROM departments
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, departmentID).Scan(&dep.ID, &dep.Name, &dep.HeadID, &dep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrDepartmentNotFound
	}
	return dep, err
}

func (s *Store) CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (tenant_id, name, head_id)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, dep.Name, nullIfEmpty(dep.HeadID)).Scan(&id)
	return id, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
