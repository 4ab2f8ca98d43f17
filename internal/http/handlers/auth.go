package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/config"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/domain/user"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/http/middlewares"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/security"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id, name string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string) error
}

type TokenIssuer interface {
	GenerateToken(userID, role string) (string, error)
}

type AuthHandler struct {
	users UsersStore
	jwt   TokenIssuer
}

func NewAuthHandler(users UsersStore, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
	}
}

// POST /api/v1/auth/register

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	role := req.Role

	if role == "" {
		role = user.RoleUser
	}

	u, err := h.users.Create(cctx, req.Name, req.Email, hash, role)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists with this email", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	// best effort; registration already succeeded
	if err := h.users.TouchLastLogin(cctx, u.ID); err == nil {
		now := time.Now().UTC()
		u.LastLogin = &now
	}

	RespondCreated(ctx, "User registered successfully", gin.H{
		"user":  u,
		"token": token,
	})
}

// POST /api/v1/auth/login

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// only an absent account is a credential problem
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Invalid credentials")
			return
		}

		RespondInternal(ctx, "Could not sign in")
		return
	}

	if !foundUser.IsActive {
		RespondUnauthorized(ctx, "Account is deactivated")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	if err := h.users.TouchLastLogin(cctx, foundUser.ID); err == nil {
		now := time.Now().UTC()
		foundUser.LastLogin = &now
	}

	RespondOKWithMessage(ctx, "Login successful", gin.H{
		"user":  foundUser,
		"token": token,
	})
}

// GET /api/v1/auth/me

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "User no longer exists")
			return
		}

		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	RespondOK(ctx, u)
}

// PUT /api/v1/auth/update-profile

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, userID, req.Name)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	RespondOKWithMessage(ctx, "Profile updated successfully", u)
}

// PUT /api/v1/auth/change-password
//
// Old tokens stay cryptographically valid until expiry; the fresh token
// is a convenience, not a revocation.

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity")
		return
	}

	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		RespondBadRequest(ctx, "Current password is incorrect", nil)
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := h.users.UpdatePassword(cctx, userID, hash); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	RespondOKWithMessage(ctx, "Password changed successfully", gin.H{
		"token": token,
	})
}

// POST /api/v1/auth/logout
//
// Tokens are stateless, the server has nothing to forget; the client
// drops its copy.

func (h *AuthHandler) Logout(ctx *gin.Context) {
	RespondOKWithMessage(ctx, "Logged out successfully", nil)
}
