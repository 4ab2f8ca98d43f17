package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/task"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, status, priority, created_by, assigned_to, due_date, tags, is_archived, created_at, updated_at`

// sort keys the API accepts, mapped to real columns so user input never
// reaches the ORDER BY clause directly.
var taskSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

type TasksRepo struct {
	pool *pgxpool.Pool
}

func NewTasksRepo(pool *pgxpool.Pool) *TasksRepo {
	return &TasksRepo{
		pool: pool,
	}
}

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.CreatedBy,
		&t.AssignedTo,
		&t.DueDate,
		&t.Tags,
		&t.IsArchived,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	t.ComputeOverdue(time.Now().UTC())

	return t, nil
}

func (r *TasksRepo) Create(ctx context.Context, ownerID string, req task.CreateRequest) (task.Task, error) {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = task.StatusPending
	}

	priority := req.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	t := task.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		CreatedBy:   ownerID,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.CreatedBy,
		t.AssignedTo, t.DueDate, t.Tags, t.IsArchived, t.CreatedAt, t.UpdatedAt,
	)

	if err != nil {
		return task.Task{}, err
	}

	t.ComputeOverdue(now)

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	return scanTask(r.pool.QueryRow(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	))
}

func (r *TasksRepo) List(ctx context.Context, filter task.ListFilter) ([]task.Task, int, error) {
	baseQuery := `SELECT ` + taskColumns + `, COUNT(*) OVER() AS total FROM tasks`

	var conds []string
	var args []interface{}

	argsPosition := 1

	// ownership scope is part of the query, not a post-hoc check
	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("created_by = $%d", argsPosition))
		args = append(args, *filter.OwnerID)
		argsPosition++
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", argsPosition))
		args = append(args, *filter.Priority)
		argsPosition++
	}

	// OR semantics across title, description and tags
	if filter.Search != nil {
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE $%d))",
			argsPosition, argsPosition, argsPosition,
		))
		args = append(args, "%"+*filter.Search+"%")
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	sortCol, ok := taskSortColumns[filter.SortBy]
	if !ok {
		sortCol = "created_at"
	}

	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	// id as a tiebreaker keeps pagination stable
	query += fmt.Sprintf(" ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d",
		sortCol, direction, direction, argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	output := make([]task.Task, 0, filter.Limit)
	total := 0
	now := time.Now().UTC()

	for rows.Next() {
		var t task.Task
		var tot int

		err = rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedBy,
			&t.AssignedTo, &t.DueDate, &t.Tags, &t.IsArchived, &t.CreatedAt, &t.UpdatedAt, &tot,
		)

		if err != nil {
			return nil, 0, err
		}

		t.ComputeOverdue(now)
		total = tot
		output = append(output, t)
	}

	err = rows.Err()

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

// Update applies a partial update; nil fields keep their stored value.
func (r *TasksRepo) Update(ctx context.Context, id string, req task.UpdateRequest) (task.Task, error) {
	return scanTask(r.pool.QueryRow(
		ctx,
		`UPDATE tasks
			SET title = COALESCE($2, title),
					description = COALESCE($3, description),
					status = COALESCE($4, status),
					priority = COALESCE($5, priority),
					assigned_to = COALESCE($6, assigned_to),
					due_date = COALESCE($7, due_date),
					tags = COALESCE($8, tags),
					is_archived = COALESCE($9, is_archived),
					updated_at = NOW()
		WHERE id = $1
		RETURNING `+taskColumns,
		id,
		req.Title,
		req.Description,
		req.Status,
		req.Priority,
		req.AssignedTo,
		req.DueDate,
		req.Tags,
		req.IsArchived,
	))
}

func (r *TasksRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

func (r *TasksRepo) Count(ctx context.Context) (int, error) {
	var n int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)

	return n, err
}

func (r *TasksRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE created_by = $1`, ownerID).Scan(&n)

	return n, err
}

// CountByStatus groups per-status counts, owner-scoped when ownerID is set.
func (r *TasksRepo) CountByStatus(ctx context.Context, ownerID *string) ([]task.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM tasks`

	var args []interface{}

	if ownerID != nil {
		query += ` WHERE created_by = $1`
		args = append(args, *ownerID)
	}

	query += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []task.StatusCount

	for rows.Next() {
		var sc task.StatusCount

		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}

		out = append(out, sc)
	}

	return out, rows.Err()
}
