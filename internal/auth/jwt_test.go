package auth_test

import (
	"testing"
	"time"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/auth"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	raw, err := m.GenerateToken("user-123", "admin")

	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.VerifyToken(raw)

	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("got user id %q, want %q", claims.UserID, "user-123")
	}

	if claims.Role != "admin" {
		t.Errorf("got role %q, want %q", claims.Role, "admin")
	}
}

func TestVerifyTokenFailures(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage",
			token: func(t *testing.T) string {
				return "not.a.token"
			},
		},
		{
			name: "wrong_secret",
			token: func(t *testing.T) string {
				other := auth.NewManager("other-secret", time.Hour)
				raw, err := other.GenerateToken("user-123", "user")
				if err != nil {
					t.Fatalf("GenerateToken failed: %v", err)
				}
				return raw
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				expired := auth.NewManager("test-secret", -time.Minute)
				raw, err := expired.GenerateToken("user-123", "user")
				if err != nil {
					t.Fatalf("GenerateToken failed: %v", err)
				}
				return raw
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.VerifyToken(tt.token(t))

			if err == nil {
				t.Fatalf("expected verification to fail")
			}
		})
	}
}
