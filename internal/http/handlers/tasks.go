package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/authz"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/config"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/task"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/http/middlewares"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/utils"
	"github.com/gin-gonic/gin"
)

type TasksStore interface {
	Create(ctx context.Context, ownerID string, req task.CreateRequest) (task.Task, error)
	GetByID(ctx context.Context, id string) (task.Task, error)
	List(ctx context.Context, filter task.ListFilter) ([]task.Task, int, error)
	Update(ctx context.Context, id string, req task.UpdateRequest) (task.Task, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, ownerID *string) ([]task.StatusCount, error)
}

type TasksHandler struct {
	repo TasksStore
}

func NewTasksHandler(repo TasksStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

func callerIdentity(ctx *gin.Context) (userID, role string, ok bool) {
	userID, ok = middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity")
		return "", "", false
	}

	role, _ = middlewares.RoleFromContext(ctx)

	return userID, role, true
}

func parseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)

	if err != nil || n < 1 {
		return fallback
	}

	return n
}

// POST /api/v1/tasks

func (h *TasksHandler) Create(ctx *gin.Context) {
	userID, role, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	var req task.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// only admins may hand out assignments
	if !authz.CanAssign(role) {
		req.AssignedTo = nil
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	RespondCreated(ctx, "Task created successfully", t)
}

// GET /api/v1/tasks?status&priority&search&sortBy&sortOrder&page&limit

func (h *TasksHandler) List(ctx *gin.Context) {
	userID, role, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	page := parseIntDefault(ctx.Query("page"), 1)
	limit := parseIntDefault(ctx.Query("limit"), 10)

	if limit > 100 {
		limit = 100
	}

	filter := task.ListFilter{
		OwnerID:   authz.ScopeToOwner(role, userID),
		SortBy:    ctx.DefaultQuery("sortBy", "createdAt"),
		SortOrder: ctx.DefaultQuery("sortOrder", "desc"),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	if s := ctx.Query("status"); s != "" {
		filter.Status = &s
	}

	if p := ctx.Query("priority"); p != "" {
		filter.Priority = &p
	}

	if q := ctx.Query("search"); q != "" {
		filter.Search = &q
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	RespondPage(ctx, items, len(items), total, page, limit)
}

// GET /api/v1/tasks/stats

func (h *TasksHandler) Stats(ctx *gin.Context) {
	userID, role, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	stats, err := h.repo.CountByStatus(cctx, authz.ScopeToOwner(role, userID))

	if err != nil {
		RespondInternal(ctx, "Could not fetch task stats")
		return
	}

	RespondOK(ctx, stats)
}

// GET /api/v1/tasks/:id

func (h *TasksHandler) Get(ctx *gin.Context) {
	userID, role, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid task ID format", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not fetch task")
		return
	}

	if !authz.CanReadTask(role, userID, t.CreatedBy) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	RespondOK(ctx, t)
}

// PUT /api/v1/tasks/:id

func (h *TasksHandler) Update(ctx *gin.Context) {
	userID, role, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid task ID format", nil)
		return
	}

	var req task.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not update task")
		return
	}

	if !authz.CanUpdateTask(role, userID, existing.CreatedBy) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	// non-admin updates drop the assignee field rather than failing
	if !authz.CanAssign(role) {
		req.AssignedTo = nil
	}

	t, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not update task")
		return
	}

	RespondOKWithMessage(ctx, "Task updated successfully", t)
}

// DELETE /api/v1/tasks/:id

func (h *TasksHandler) Delete(ctx *gin.Context) {
	_, role, ok := callerIdentity(ctx)

	if !ok {
		return
	}

	if !authz.CanDeleteTask(role) {
		RespondForbidden(ctx, "You are not authorized to perform this action")
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid task ID format", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not delete task")
		return
	}

	RespondOKWithMessage(ctx, "Task deleted successfully", nil)
}
