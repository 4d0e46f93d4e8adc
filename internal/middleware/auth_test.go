package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/auth"
	"github.com/luwak-cafe/pos-api/internal/middleware"
)

const testSecret = "test-secret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateMissingHeader(t *testing.T) {
	h := middleware.Authenticate(testSecret)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticateBadFormat(t *testing.T) {
	h := middleware.Authenticate(testSecret)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticateValidToken(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, uuid.New(), "Rosa Quispe", "mesero")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotClaims *auth.Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = middleware.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := middleware.Authenticate(testSecret)(inner)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if gotClaims == nil {
		t.Fatal("claims not found in request context")
	}
	if gotClaims.Role != "mesero" {
		t.Errorf("role: got %q, want %q", gotClaims.Role, "mesero")
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"allowed role", "chef", []string{"chef", "ayudante"}, http.StatusOK},
		{"second allowed role", "ayudante", []string{"chef", "ayudante"}, http.StatusOK},
		{"denied role", "mesero", []string{"chef", "ayudante"}, http.StatusForbidden},
		{"admin not implicit", "admin", []string{"cajero"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := auth.GenerateToken(testSecret, uuid.New(), "Test", tt.role)
			if err != nil {
				t.Fatalf("generate token: %v", err)
			}

			h := middleware.Authenticate(testSecret)(
				middleware.RequireRole(tt.allowed...)(okHandler()),
			)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	h := middleware.RequireRole("admin")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
