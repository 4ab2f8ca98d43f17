// Package authz holds the single authorization policy for the API. Every
// handler consults these functions instead of re-implementing role or
// ownership checks inline.
package authz

import "github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/user"

// CanReadTask allows the owner of a task and any admin.
func CanReadTask(role, callerID, ownerID string) bool {
	return role == user.RoleAdmin || callerID == ownerID
}

// CanUpdateTask mirrors read access: owner or admin.
func CanUpdateTask(role, callerID, ownerID string) bool {
	return role == user.RoleAdmin || callerID == ownerID
}

// CanDeleteTask is admin-only, regardless of ownership.
func CanDeleteTask(role string) bool {
	return role == user.RoleAdmin
}

// CanAssign reports whether the caller may set a task's assignee.
// Non-admin updates drop the field instead of being rejected.
func CanAssign(role string) bool {
	return role == user.RoleAdmin
}

// ScopeToOwner returns the owner id a list query must be filtered by,
// or nil when the caller may see everything. The filter is injected at
// query time, never checked post-hoc.
func ScopeToOwner(role, callerID string) *string {
	if role == user.RoleAdmin {
		return nil
	}

	id := callerID

	return &id
}

// CanChangeRole blocks an admin from demoting themselves through the
// administrative path. A second admin may still do it.
func CanChangeRole(callerID, targetID, newRole string) bool {
	if callerID == targetID && newRole == user.RoleUser {
		return false
	}

	return true
}

// CanDeleteUser blocks self-deletion through the administrative path.
func CanDeleteUser(callerID, targetID string) bool {
	return callerID != targetID
}

// CanSetActive blocks an admin from deactivating their own account.
func CanSetActive(callerID, targetID string, active bool) bool {
	if callerID == targetID && !active {
		return false
	}

	return true
}
