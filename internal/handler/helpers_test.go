package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/auth"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/luwak-cafe/pos-api/internal/handler"
	"github.com/luwak-cafe/pos-api/internal/ledger"
	"github.com/luwak-cafe/pos-api/internal/middleware"
	"github.com/luwak-cafe/pos-api/internal/store/memory"
)

const (
	testSecret    = "test-secret"
	testAdminCode = "4242"
)

// env wires handlers to a real ledger over the in-memory store, the same
// composition the server uses minus role gating and the websocket hub.
type env struct {
	store  *memory.Store
	ledger *ledger.Ledger
	router chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store, err := memory.New("")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	l := ledger.New(store, ledger.NewStaticCodeVerifier(testAdminCode), time.UTC)

	orders := handler.NewOrdersHandler(l, nil)
	notes := handler.NewNotesHandler(l, nil)
	reports := handler.NewReportsHandler(l)
	menu := handler.NewMenuHandler()
	authH := handler.NewAuthHandler(store, testSecret)

	r := chi.NewRouter()
	authH.RegisterRoutes(r)
	r.Get("/menu/categories", menu.Categories)
	r.Get("/menu/products", menu.Products)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))

		r.Get("/auth/me", authH.Me)

		r.Post("/orders", orders.Create)
		r.Get("/orders", orders.List)
		r.Get("/orders/{id}", orders.Get)
		r.Patch("/orders/{id}/status", orders.UpdateStatus)
		r.Post("/orders/{id}/payment", orders.RegisterPayment)
		r.Post("/orders/{id}/cancel", orders.Cancel)

		r.Post("/notes", notes.Create)
		r.Get("/notes", notes.List)
		r.Put("/notes/{id}", notes.Update)
		r.Delete("/notes/{id}", notes.Delete)

		r.Get("/reports/summary", reports.Summary)
		r.Get("/reports/status-counts", reports.StatusCounts)
		r.Get("/reports/top-products", reports.TopProducts)
	})

	return &env{store: store, ledger: l, router: r}
}

// staffToken mints an access token for an arbitrary staff member.
func staffToken(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	token, err := auth.GenerateToken(testSecret, id, "Staff "+role, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return id, token
}

// do issues a request against the env router. body may be nil.
func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// createReadyOrder walks a fresh order to the ready state through the API.
func (e *env) createReadyOrder(t *testing.T) ledger.Order {
	t.Helper()
	_, waiter := staffToken(t, enum.RoleMesero)
	_, chef := staffToken(t, enum.RoleChef)

	rec := e.do(t, http.MethodPost, "/orders", waiter, map[string]any{
		"items": []map[string]any{
			{"product_id": "cafe-americano", "name": "Café americano", "quantity": 1, "unit_price": "8"},
			{"product_id": "croissant", "name": "Croissant", "quantity": 1, "unit_price": "10"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: status %d body %s", rec.Code, rec.Body)
	}
	order := decodeJSON[ledger.Order](t, rec)

	for _, status := range []string{enum.OrderStatusCooking, enum.OrderStatusReady} {
		rec = e.do(t, http.MethodPatch, "/orders/"+order.ID.String()+"/status", chef,
			map[string]string{"status": status})
		if rec.Code != http.StatusOK {
			t.Fatalf("advance to %s: status %d body %s", status, rec.Code, rec.Body)
		}
	}
	return order
}
