package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/luwak-cafe/pos-api/internal/ledger"
	"github.com/luwak-cafe/pos-api/internal/middleware"
	"github.com/luwak-cafe/pos-api/internal/ws"
	"github.com/shopspring/decimal"
)

// OrderLedger defines the ledger operations needed by order handlers.
// Satisfied by *ledger.Ledger; narrow interface for testability.
type OrderLedger interface {
	CreateOrderFromCart(ctx context.Context, cart []ledger.CartItem, creator ledger.Identity) (ledger.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (ledger.Order, error)
	ListOrders(ctx context.Context, f ledger.OrderFilter) ([]ledger.Order, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, target string) (ledger.Order, error)
	RegisterPayment(ctx context.Context, orderID uuid.UUID, in ledger.PaymentInput) (ledger.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, code string) (ledger.Order, error)
	Location() *time.Location
}

// OrdersHandler handles order lifecycle endpoints.
type OrdersHandler struct {
	ledger OrderLedger
	hub    *ws.Hub
}

// NewOrdersHandler creates a new OrdersHandler. hub may be nil in tests.
func NewOrdersHandler(l OrderLedger, hub *ws.Hub) *OrdersHandler {
	return &OrdersHandler{ledger: l, hub: hub}
}

// --- Request types ---

type createOrderRequest struct {
	Items []cartItemRequest `json:"items"`
}

type cartItemRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Variant   string          `json:"variant"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type cancelOrderRequest struct {
	AdminCode string `json:"admin_code"`
}

// --- Handlers ---

// Create commits the submitted cart as a new pending order.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart := make([]ledger.CartItem, len(req.Items))
	for i, item := range req.Items {
		cart[i] = ledger.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Variant:   item.Variant,
		}
	}

	order, err := h.ledger.CreateOrderFromCart(r.Context(), cart, identityFromContext(r.Context()))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	h.broadcast(ws.EventOrderCreated, order)
	writeJSON(w, http.StatusCreated, order)
}

// List returns orders, optionally filtered by ?status= and ?date=YYYY-MM-DD.
// The date is interpreted in the café's timezone.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	var f ledger.OrderFilter

	if status := r.URL.Query().Get("status"); status != "" {
		if !enum.IsValidOrderStatus(status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		f.Status = status
	}

	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, h.ledger.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		f.From = day
		f.To = day.AddDate(0, 0, 1)
	}

	orders, err := h.ledger.ListOrders(r.Context(), f)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	if orders == nil {
		orders = []ledger.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get returns a single order by id.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	order, err := h.ledger.GetOrder(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus advances an order to cooking or ready.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.ledger.AdvanceStatus(r.Context(), id, req.Status)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	h.broadcast(ws.EventOrderStatusChanged, order)
	writeJSON(w, http.StatusOK, order)
}

// Cancel voids an order after checking the supplied authorization code.
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.ledger.CancelOrder(r.Context(), id, req.AdminCode)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	h.broadcast(ws.EventOrderCancelled, order)
	writeJSON(w, http.StatusOK, order)
}

// --- Helpers ---

func (h *OrdersHandler) broadcast(eventType string, order ledger.Order) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(ws.NewEvent(eventType, order))
}

func orderIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

// identityFromContext maps the authenticated JWT claims to a ledger identity.
func identityFromContext(ctx context.Context) ledger.Identity {
	claims := middleware.ClaimsFromContext(ctx)
	if claims == nil {
		return ledger.Identity{}
	}
	return ledger.Identity{
		ID:   claims.UserID,
		Name: claims.FullName,
		Role: claims.Role,
	}
}

// respondLedgerError maps ledger errors to HTTP statuses. Unrecognized
// errors are treated as internal.
func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrOrderNotFound),
		errors.Is(err, ledger.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidTransition),
		errors.Is(err, ledger.ErrNotReady),
		errors.Is(err, ledger.ErrAlreadyPaid),
		errors.Is(err, ledger.ErrOrderCancelled):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInvalidAdminCode),
		errors.Is(err, ledger.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrEmptyCart),
		errors.Is(err, ledger.ErrNoCreator),
		errors.Is(err, ledger.ErrMissingProduct),
		errors.Is(err, ledger.ErrMissingName),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidUnitPrice),
		errors.Is(err, ledger.ErrInvalidMethod),
		errors.Is(err, ledger.ErrNoCashier),
		errors.Is(err, ledger.ErrEmptyNote):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
