package task

import (
	"errors"
	"time"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var ErrNotFound = errors.New("task not found")

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	CreatedBy   string     `json:"createdBy"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags"`
	IsArchived  bool       `json:"isArchived"`
	IsOverdue   bool       `json:"isOverdue"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Overdue is derived, never stored: past due date and not completed.
func (t *Task) ComputeOverdue(now time.Time) {
	t.IsOverdue = t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

type CreateRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=100"`
	Description string     `json:"description" binding:"omitempty,max=500"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *string    `json:"assignedTo" binding:"omitempty,uuid"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags" binding:"omitempty,dive,max=30"`
}

// a partial update payload; nil fields keep their stored value. Null and
// absent are indistinguishable here, so description, assignedTo and
// dueDate cannot be cleared through this type once set.
type UpdateRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *string    `json:"assignedTo" binding:"omitempty,uuid"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags" binding:"omitempty,dive,max=30"`
	IsArchived  *bool      `json:"isArchived"`
}

type ListFilter struct {
	OwnerID   *string // nil means no ownership scope (admin)
	Status    *string
	Priority  *string
	Search    *string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
