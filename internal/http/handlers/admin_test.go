package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/task"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/user"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/http/handlers"
)

// Fake stores for the admin surface

type fakeAdminUsers struct {
	getByIDFn     func(ctx context.Context, id string) (user.User, error)
	listFn        func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error)
	updateFn      func(ctx context.Context, id string, req user.AdminUpdateRequest) (user.User, error)
	deleteFn      func(ctx context.Context, id string) error
	countFn       func(ctx context.Context) (int, error)
	countByRoleFn func(ctx context.Context) ([]user.RoleCount, error)
}

func (f *fakeAdminUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, nil
}

func (f *fakeAdminUsers) List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return nil, 0, nil
}

func (f *fakeAdminUsers) UpdateAdminFields(ctx context.Context, id string, req user.AdminUpdateRequest) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return user.User{}, nil
}

func (f *fakeAdminUsers) DeleteCascade(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

func (f *fakeAdminUsers) Count(ctx context.Context) (int, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}

	return 0, nil
}

func (f *fakeAdminUsers) CountByRole(ctx context.Context) ([]user.RoleCount, error) {
	if f.countByRoleFn != nil {
		return f.countByRoleFn(ctx)
	}

	return nil, nil
}

type fakeAdminTasks struct {
	listFn         func(ctx context.Context, filter task.ListFilter) ([]task.Task, int, error)
	countFn        func(ctx context.Context) (int, error)
	countByOwnerFn func(ctx context.Context, ownerID string) (int, error)
	statusFn       func(ctx context.Context, ownerID *string) ([]task.StatusCount, error)
}

func (f *fakeAdminTasks) List(ctx context.Context, filter task.ListFilter) ([]task.Task, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return nil, 0, nil
}

func (f *fakeAdminTasks) Count(ctx context.Context) (int, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}

	return 0, nil
}

func (f *fakeAdminTasks) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if f.countByOwnerFn != nil {
		return f.countByOwnerFn(ctx, ownerID)
	}

	return 0, nil
}

func (f *fakeAdminTasks) CountByStatus(ctx context.Context, ownerID *string) ([]task.StatusCount, error) {
	if f.statusFn != nil {
		return f.statusFn(ctx, ownerID)
	}

	return nil, nil
}

func TestAdminUpdateUserHandler(t *testing.T) {
	adminID := newUUID()
	targetID := newUUID()

	tests := []struct {
		name           string
		targetID       string
		body           string
		usersSetUp     func(*fakeAdminUsers)
		wantStatusCode int
	}{
		{
			name:     "promote_user",
			targetID: targetID,
			body:     `{"role": "admin"}`,
			usersSetUp: func(f *fakeAdminUsers) {
				f.updateFn = func(ctx context.Context, id string, req user.AdminUpdateRequest) (user.User, error) {
					if req.Role == nil || *req.Role != "admin" {
						return user.User{}, errors.New("role change not passed")
					}

					return user.User{ID: id, Role: "admin", IsActive: true}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "self_demotion_is_refused",
			targetID:       adminID,
			body:           `{"role": "user"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "self_deactivation_is_refused",
			targetID:       adminID,
			body:           `{"isActive": false}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:     "self_rename_is_fine",
			targetID: adminID,
			body:     `{"name": "New Display Name"}`,
			usersSetUp: func(f *fakeAdminUsers) {
				f.updateFn = func(ctx context.Context, id string, req user.AdminUpdateRequest) (user.User, error) {
					return user.User{ID: id, Name: *req.Name, Role: "admin", IsActive: true}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_id",
			targetID:       "not-a-uuid",
			body:           `{"role": "admin"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:     "target_not_found",
			targetID: targetID,
			body:     `{"role": "admin"}`,
			usersSetUp: func(f *fakeAdminUsers) {
				f.updateFn = func(ctx context.Context, id string, req user.AdminUpdateRequest) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeAdminUsers{}

			if tt.usersSetUp != nil {
				tt.usersSetUp(users)
			}

			h := handlers.NewAdminHandler(users, &fakeAdminTasks{})
			r := setupRouterAs(http.MethodPut, "/admin/users/:id", adminID, "admin", h.UpdateUser)

			w := doJSON(r, http.MethodPut, "/admin/users/"+tt.targetID, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestAdminDeleteUserHandler(t *testing.T) {
	adminID := newUUID()
	targetID := newUUID()

	tests := []struct {
		name           string
		targetID       string
		usersSetUp     func(*fakeAdminUsers)
		wantStatusCode int
	}{
		{
			name:     "success",
			targetID: targetID,
			usersSetUp: func(f *fakeAdminUsers) {
				f.deleteFn = func(ctx context.Context, id string) error {
					if id != targetID {
						return errors.New("wrong user deleted")
					}

					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "self_deletion_is_refused",
			targetID:       adminID,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:     "target_not_found",
			targetID: targetID,
			usersSetUp: func(f *fakeAdminUsers) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeAdminUsers{}

			if tt.usersSetUp != nil {
				tt.usersSetUp(users)
			}

			h := handlers.NewAdminHandler(users, &fakeAdminTasks{})
			r := setupRouterAs(http.MethodDelete, "/admin/users/:id", adminID, "admin", h.DeleteUser)

			w := doJSON(r, http.MethodDelete, "/admin/users/"+tt.targetID, "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestAdminGetUserHandler(t *testing.T) {
	adminID := newUUID()
	targetID := newUUID()

	users := &fakeAdminUsers{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, Name: "Ada", Email: "ada@example.com", Role: "user", IsActive: true}, nil
		},
	}
	tasks := &fakeAdminTasks{
		countByOwnerFn: func(ctx context.Context, ownerID string) (int, error) {
			if ownerID != targetID {
				return 0, errors.New("count scoped to wrong user")
			}

			return 7, nil
		},
	}

	h := handlers.NewAdminHandler(users, tasks)
	r := setupRouterAs(http.MethodGet, "/admin/users/:id", adminID, "admin", h.GetUser)

	w := doJSON(r, http.MethodGet, "/admin/users/"+targetID, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestAdminListUsersHandler(t *testing.T) {
	adminID := newUUID()

	users := &fakeAdminUsers{
		listFn: func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
			switch {
			case filter.Role == nil || *filter.Role != "user":
				return nil, 0, errors.New("role filter not passed")
			case filter.Search == nil || *filter.Search != "ada":
				return nil, 0, errors.New("search filter not passed")
			case filter.Limit != 20 || filter.Offset != 20:
				return nil, 0, errors.New("pagination not passed")
			}

			return []user.User{{ID: newUUID(), Name: "Ada", Role: "user", IsActive: true}}, 41, nil
		},
	}

	h := handlers.NewAdminHandler(users, &fakeAdminTasks{})
	r := setupRouterAs(http.MethodGet, "/admin/users", adminID, "admin", h.ListUsers)

	w := doJSON(r, http.MethodGet, "/admin/users?role=user&search=ada&page=2", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestAdminStatsHandler(t *testing.T) {
	adminID := newUUID()

	userCountCalls := 0

	users := &fakeAdminUsers{
		countFn: func(ctx context.Context) (int, error) {
			userCountCalls++
			return 12, nil
		},
		countByRoleFn: func(ctx context.Context) ([]user.RoleCount, error) {
			return []user.RoleCount{{Role: "user", Count: 11}, {Role: "admin", Count: 1}}, nil
		},
	}
	tasks := &fakeAdminTasks{
		countFn: func(ctx context.Context) (int, error) {
			return 34, nil
		},
		statusFn: func(ctx context.Context, ownerID *string) ([]task.StatusCount, error) {
			if ownerID != nil {
				return nil, errors.New("admin stats should be unscoped")
			}

			return []task.StatusCount{{Status: "pending", Count: 20}}, nil
		},
	}

	h := handlers.NewAdminHandler(users, tasks)
	r := setupRouterAs(http.MethodGet, "/admin/stats", adminID, "admin", h.Stats)

	w := doJSON(r, http.MethodGet, "/admin/stats", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	// second hit is served from the short-lived cache
	w = doJSON(r, http.MethodGet, "/admin/stats", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d on cached read, body=%s", w.Code, w.Body.String())
	}

	if userCountCalls != 1 {
		t.Fatalf("expected stats to be cached, store hit %d times", userCountCalls)
	}
}
