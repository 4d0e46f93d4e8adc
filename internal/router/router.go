package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/luwak-cafe/pos-api/internal/config"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/luwak-cafe/pos-api/internal/handler"
	"github.com/luwak-cafe/pos-api/internal/ledger"
	mw "github.com/luwak-cafe/pos-api/internal/middleware"
	"github.com/luwak-cafe/pos-api/internal/ws"
)

// UserStore is the user lookup surface the router needs for auth routes.
type UserStore = handler.AuthStore

// New creates a Chi router with all application routes wired up.
// Role gating follows the café's shift responsibilities: waiters take
// orders, the kitchen advances them, the cashier settles them, and the
// admin sees the dashboards. Admin can do everything.
func New(cfg *config.Config, l *ledger.Ledger, users UserStore, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	menuHandler := handler.NewMenuHandler()
	r.Get("/menu/categories", menuHandler.Categories)
	r.Get("/menu/products", menuHandler.Products)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	ordersHandler := handler.NewOrdersHandler(l, hub)
	notesHandler := handler.NewNotesHandler(l, hub)
	reportsHandler := handler.NewReportsHandler(l)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Get("/auth/me", authHandler.Me)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.List)
			r.Get("/{id}", ordersHandler.Get)

			r.With(mw.RequireRole(enum.RoleAdmin, enum.RoleMesero)).
				Post("/", ordersHandler.Create)

			r.With(mw.RequireRole(enum.RoleAdmin, enum.RoleChef, enum.RoleAyudante)).
				Patch("/{id}/status", ordersHandler.UpdateStatus)

			r.With(mw.RequireRole(enum.RoleAdmin, enum.RoleCajero)).
				Post("/{id}/payment", ordersHandler.RegisterPayment)

			// Any role may request a cancellation; the ledger demands the
			// admin code either way.
			r.Post("/{id}/cancel", ordersHandler.Cancel)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notesHandler.List)
			r.Post("/", notesHandler.Create)
			r.Put("/{id}", notesHandler.Update)
			r.Delete("/{id}", notesHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))

			r.Get("/reports/summary", reportsHandler.Summary)
			r.Get("/reports/status-counts", reportsHandler.StatusCounts)
			r.Get("/reports/top-products", reportsHandler.TopProducts)
		})
	})

	return r
}
