package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/authz"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/cache"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/config"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/task"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/user"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/utils"
	"github.com/gin-gonic/gin"
)

type AdminUsersStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error)
	UpdateAdminFields(ctx context.Context, id string, req user.AdminUpdateRequest) (user.User, error)
	DeleteCascade(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context) ([]user.RoleCount, error)
}

type AdminTasksStore interface {
	List(ctx context.Context, filter task.ListFilter) ([]task.Task, int, error)
	Count(ctx context.Context) (int, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	CountByStatus(ctx context.Context, ownerID *string) ([]task.StatusCount, error)
}

type AdminHandler struct {
	users AdminUsersStore
	tasks AdminTasksStore
	stats *cache.Cache
}

func NewAdminHandler(users AdminUsersStore, tasks AdminTasksStore) *AdminHandler {
	return &AdminHandler{
		users: users,
		tasks: tasks,
		stats: cache.New(10 * time.Second),
	}
}

// GET /api/v1/admin/users?role&isActive&search&page&limit

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	page := parseIntDefault(ctx.Query("page"), 1)
	limit := parseIntDefault(ctx.Query("limit"), 20)

	if limit > 100 {
		limit = 100
	}

	filter := user.ListFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if r := ctx.Query("role"); r != "" {
		filter.Role = &r
	}

	if a := ctx.Query("isActive"); a != "" {
		active := a == "true"
		filter.IsActive = &active
	}

	if q := ctx.Query("search"); q != "" {
		filter.Search = &q
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, total, err := h.users.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	RespondPage(ctx, items, len(items), total, page, limit)
}

// GET /api/v1/admin/users/:id

func (h *AdminHandler) GetUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid ID format", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	tasksCount, err := h.tasks.CountByOwner(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	RespondOK(ctx, gin.H{
		"user":       u,
		"tasksCount": tasksCount,
	})
}

// PUT /api/v1/admin/users/:id

func (h *AdminHandler) UpdateUser(ctx *gin.Context) {
	callerID, _, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid ID format", nil)
		return
	}

	var req user.AdminUpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Role != nil && !authz.CanChangeRole(callerID, id, *req.Role) {
		RespondBadRequest(ctx, "Cannot demote yourself from admin role", nil)
		return
	}

	if req.IsActive != nil && !authz.CanSetActive(callerID, id, *req.IsActive) {
		RespondBadRequest(ctx, "Cannot deactivate your own account", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.UpdateAdminFields(cctx, id, req)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	RespondOKWithMessage(ctx, "User updated successfully", u)
}

// DELETE /api/v1/admin/users/:id
//
// Removes the user and every task they own in one transaction.

func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
	callerID, _, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid ID format", nil)
		return
	}

	if !authz.CanDeleteUser(callerID, id) {
		RespondBadRequest(ctx, "Cannot delete your own account", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.users.DeleteCascade(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	RespondOKWithMessage(ctx, "User and associated tasks deleted successfully", nil)
}

// GET /api/v1/admin/tasks?page&limit

func (h *AdminHandler) ListTasks(ctx *gin.Context) {
	page := parseIntDefault(ctx.Query("page"), 1)
	limit := parseIntDefault(ctx.Query("limit"), 50)

	if limit > 100 {
		limit = 100
	}

	filter := task.ListFilter{
		SortBy:    "createdAt",
		SortOrder: "desc",
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, total, err := h.tasks.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	RespondPage(ctx, items, len(items), total, page, limit)
}

// GET /api/v1/admin/stats
//
// Four aggregate queries, so the result is cached for a few seconds.

func (h *AdminHandler) Stats(ctx *gin.Context) {
	const cacheKey = "admin:stats"

	if v, ok := h.stats.Get(cacheKey); ok {
		RespondOK(ctx, v)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	totalUsers, err := h.users.Count(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not fetch stats")
		return
	}

	totalTasks, err := h.tasks.Count(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not fetch stats")
		return
	}

	usersByRole, err := h.users.CountByRole(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not fetch stats")
		return
	}

	tasksByStatus, err := h.tasks.CountByStatus(cctx, nil)

	if err != nil {
		RespondInternal(ctx, "Could not fetch stats")
		return
	}

	data := gin.H{
		"totalUsers":    totalUsers,
		"totalTasks":    totalTasks,
		"usersByRole":   usersByRole,
		"tasksByStatus": tasksByStatus,
	}

	h.stats.Set(cacheKey, data)

	RespondOK(ctx, data)
}
