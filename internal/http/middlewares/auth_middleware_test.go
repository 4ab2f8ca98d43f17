package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/auth"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type fakeVerifier struct {
	verifyFn func(tokenStr string) (*auth.Claims, error)
}

func (f *fakeVerifier) VerifyToken(tokenStr string) (*auth.Claims, error) {
	return f.verifyFn(tokenStr)
}

func guardedRouter(v middlewares.TokenVerifier, requiredRole string) *gin.Engine {
	mw := middlewares.NewAuthMiddleware(v)

	r := gin.New()
	g := r.Group("/secure", mw.RequireAuth())

	if requiredRole != "" {
		g.Use(mw.RequireRole(requiredRole))
	}

	g.GET("", func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	okVerifier := &fakeVerifier{
		verifyFn: func(tokenStr string) (*auth.Claims, error) {
			if tokenStr != "good-token" {
				return nil, auth.ErrInvalidToken
			}

			return &auth.Claims{UserID: "user-1", Role: "user"}, nil
		},
	}

	tests := []struct {
		name           string
		header         string
		verifier       middlewares.TokenVerifier
		wantStatusCode int
	}{
		{
			name:           "valid_bearer_token",
			header:         "Bearer good-token",
			verifier:       okVerifier,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_header",
			header:         "",
			verifier:       okVerifier,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong_scheme",
			header:         "Basic good-token",
			verifier:       okVerifier,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "bad_token",
			header:         "Bearer forged",
			verifier:       okVerifier,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "verifier_error",
			header: "Bearer good-token",
			verifier: &fakeVerifier{
				verifyFn: func(tokenStr string) (*auth.Claims, error) {
					return nil, errors.New("boom")
				},
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := guardedRouter(tt.verifier, "")

			req := httptest.NewRequest(http.MethodGet, "/secure", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	verifierFor := func(role string) middlewares.TokenVerifier {
		return &fakeVerifier{
			verifyFn: func(tokenStr string) (*auth.Claims, error) {
				return &auth.Claims{UserID: "user-1", Role: role}, nil
			},
		}
	}

	tests := []struct {
		name           string
		role           string
		wantStatusCode int
	}{
		{name: "admin_passes", role: "admin", wantStatusCode: http.StatusOK},
		{name: "user_is_refused", role: "user", wantStatusCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := guardedRouter(verifierFor(tt.role), "admin")

			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set("Authorization", "Bearer whatever")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
