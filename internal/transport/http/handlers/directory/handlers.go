package directoryhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"okr/internal/domain/audit"
	"okr/internal/domain/auth"
	"okr/internal/domain/directory"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Service interface {
	ListUsers(ctx context.Context, tenantID string, filter directory.UserFilter) ([]directory.User, error)
	GetUser(ctx context.Context, tenantID, userID string) (directory.User, error)
	CreateUser(ctx context.Context, tenantID string, user directory.NewUser) (string, error)
	ListDepartments(ctx context.Context, tenantID string) ([]directory.Department, error)
	CreateDepartment(ctx context.Context, tenantID string, dep directory.Department) (string, error)
}

type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   Auditor
}

func NewHandler(service Service, perms middleware.PermissionStore, auditSvc Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/directory", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDirectoryRead, h.Perms)).Get("/users", h.handleListUsers)
		r.With(middleware.RequirePermission(auth.PermDirectoryWrite, h.Perms)).Post("/users", h.handleCreateUser)
		r.With(middleware.RequirePermission(auth.PermDirectoryRead, h.Perms)).Get("/users/{userID}", h.handleGetUser)
		r.With(middleware.RequirePermission(auth.PermDirectoryRead, h.Perms)).Get("/departments", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermDirectoryWrite, h.Perms)).Post("/departments", h.handleCreateDepartment)
	})
}

type userRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=employee leader boss admin"`
	DepartmentID string `json:"departmentId"`
	LeaderID     string `json:"leaderId"`
	Password     string `json:"password" validate:"required,min=8"`
}

type departmentRequest struct {
	Name   string `json:"name" validate:"required"`
	HeadID string `json:"headId"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	requestID := middleware.GetRequestID(r.Context())
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, directory.ErrDepartmentNotFound):
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
	case errors.Is(err, directory.ErrLeaderNotFound):
		api.Fail(w, http.StatusUnprocessableEntity, "leader_not_found", "leader does not exist", requestID)
	case errors.Is(err, directory.ErrInvalidRole):
		api.Fail(w, http.StatusBadRequest, "invalid_role", "role must be employee, leader, boss or admin", requestID)
	case errors.Is(err, directory.ErrEmailTaken), errors.As(err, &pgErr) && pgErr.Code == "23505":
		api.Fail(w, http.StatusConflict, "already_exists", "a record with these details already exists", requestID)
	default:
		slog.Error("directory request failed", "code", fallbackCode, "path", r.URL.Path, "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "request failed", requestID)
	}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		TenantID:   user.TenantID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
		After:      after,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, shared.DirectoryPages)
	role := strings.TrimSpace(q.Get("role"))
	v := shared.NewValidator()
	v.Enum("role", role, auth.Roles, "must be employee, leader, boss or admin")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	users, err := h.Service.ListUsers(r.Context(), user.TenantID, directory.UserFilter{
		DepartmentID: q.Get("departmentId"),
		LeaderID:     q.Get("leaderId"),
		Role:         strings.ToLower(role),
		Query:        strings.TrimSpace(q.Get("q")),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		writeError(w, r, err, "user_list_failed")
		return
	}
	if users == nil {
		users = []directory.User{}
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	found, err := h.Service.GetUser(r.Context(), user.TenantID, chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, err, "user_get_failed")
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	var payload userRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateUser(r.Context(), user.TenantID, directory.NewUser{
		Email:        payload.Email,
		Name:         strings.TrimSpace(payload.Name),
		Role:         payload.Role,
		DepartmentID: payload.DepartmentID,
		LeaderID:     payload.LeaderID,
		Password:     payload.Password,
	})
	if err != nil {
		writeError(w, r, err, "user_create_failed")
		return
	}
	payload.Password = ""
	h.record(r, user, audit.ActionUserCreate, "user", id, payload)
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	deps, err := h.Service.ListDepartments(r.Context(), user.TenantID)
	if err != nil {
		writeError(w, r, err, "department_list_failed")
		return
	}
	if deps == nil {
		deps = []directory.Department{}
	}
	api.Success(w, deps, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	var payload departmentRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateDepartment(r.Context(), user.TenantID, directory.Department{Name: payload.Name, HeadID: payload.HeadID})
	if err != nil {
		writeError(w, r, err, "department_create_failed")
		return
	}
	h.record(r, user, audit.ActionDepartmentCreate, "department", id, payload)
	api.Created(w, map[string]string{"id": id}, requestID)
}
