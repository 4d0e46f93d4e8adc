package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/auth"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, e *env, email, password, role string) auth.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := auth.User{
		ID:             uuid.New(),
		FullName:       "Rosa Quispe",
		Email:          email,
		Role:           role,
		HashedPassword: string(hash),
		CreatedAt:      time.Now(),
	}
	if err := e.store.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID       uuid.UUID `json:"id"`
		FullName string    `json:"full_name"`
		Email    string    `json:"email"`
		Role     string    `json:"role"`
	} `json:"user"`
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	seedUser(t, e, "rosa@luwak.pe", "secreto123", enum.RoleMesero)

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "rosa@luwak.pe",
		"password": "secreto123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	resp := decodeJSON[authResponse](t, rec)
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("tokens missing from response")
	}
	if resp.User.Role != enum.RoleMesero {
		t.Errorf("role: got %q", resp.User.Role)
	}

	// The minted token works against a protected endpoint.
	rec = e.do(t, http.MethodGet, "/auth/me", resp.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("me with fresh token: got %d", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)
	seedUser(t, e, "rosa@luwak.pe", "secreto123", enum.RoleMesero)

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "rosa@luwak.pe",
		"password": "otra-cosa",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "nadie@luwak.pe",
		"password": "lo-que-sea",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLoginMissingFields(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "solo@luwak.pe"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRefresh(t *testing.T) {
	e := newEnv(t)
	u := seedUser(t, e, "rosa@luwak.pe", "secreto123", enum.RoleMesero)

	refresh, err := auth.GenerateRefreshToken(testSecret, u.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rec := e.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	resp := decodeJSON[authResponse](t, rec)
	if resp.User.ID != u.ID {
		t.Errorf("user id: got %s, want %s", resp.User.ID, u.ID)
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": "no-es-un-jwt",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMe(t *testing.T) {
	e := newEnv(t)
	u := seedUser(t, e, "rosa@luwak.pe", "secreto123", enum.RoleCajero)

	token, err := auth.GenerateToken(testSecret, u.ID, u.FullName, u.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec := e.do(t, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	type meResponse struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		Role  string    `json:"role"`
	}
	me := decodeJSON[meResponse](t, rec)
	if me.ID != u.ID || me.Role != enum.RoleCajero {
		t.Errorf("me: got %+v", me)
	}
}
