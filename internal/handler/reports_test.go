package handler_test

import (
	"net/http"
	"testing"

	"github.com/luwak-cafe/pos-api/internal/enum"
)

type summaryResponse struct {
	TotalSales    string `json:"total_sales"`
	PaidCount     int    `json:"paid_count"`
	AverageTicket string `json:"average_ticket"`
}

type topProductResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
}

func payOrder(t *testing.T, e *env) {
	t.Helper()
	_, cashier := staffToken(t, enum.RoleCajero)
	order := e.createReadyOrder(t)
	rec := e.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payment", cashier,
		map[string]string{"method": enum.PaymentMethodEfectivo})
	if rec.Code != http.StatusOK {
		t.Fatalf("pay order: got %d, body %s", rec.Code, rec.Body)
	}
}

func TestSummaryToday(t *testing.T) {
	e := newEnv(t)
	_, admin := staffToken(t, enum.RoleAdmin)

	payOrder(t, e)
	payOrder(t, e)
	e.createReadyOrder(t) // unpaid, must not count

	rec := e.do(t, http.MethodGet, "/reports/summary", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	summary := decodeJSON[summaryResponse](t, rec)
	if summary.PaidCount != 2 {
		t.Errorf("paid count: got %d, want 2", summary.PaidCount)
	}
	if summary.TotalSales != "36.00" {
		t.Errorf("total sales: got %s, want 36.00", summary.TotalSales)
	}
	if summary.AverageTicket != "18.00" {
		t.Errorf("average ticket: got %s, want 18.00", summary.AverageTicket)
	}
}

func TestSummaryEmptyDay(t *testing.T) {
	e := newEnv(t)
	_, admin := staffToken(t, enum.RoleAdmin)

	rec := e.do(t, http.MethodGet, "/reports/summary", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	summary := decodeJSON[summaryResponse](t, rec)
	if summary.PaidCount != 0 || summary.TotalSales != "0.00" || summary.AverageTicket != "0.00" {
		t.Errorf("empty summary: got %+v", summary)
	}
}

func TestSummaryInvalidDates(t *testing.T) {
	e := newEnv(t)
	_, admin := staffToken(t, enum.RoleAdmin)

	rec := e.do(t, http.MethodGet, "/reports/summary?from=ayer", admin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad from: got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = e.do(t, http.MethodGet, "/reports/summary?from=2026-03-14&to=2026-03-01", admin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted range: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestStatusCountsReport(t *testing.T) {
	e := newEnv(t)
	_, admin := staffToken(t, enum.RoleAdmin)
	_, waiter := staffToken(t, enum.RoleMesero)

	payOrder(t, e)
	e.do(t, http.MethodPost, "/orders", waiter, map[string]any{
		"items": []map[string]any{
			{"product_id": "espresso", "name": "Espresso", "quantity": 1, "unit_price": "6"},
		},
	})

	rec := e.do(t, http.MethodGet, "/reports/status-counts", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	counts := decodeJSON[map[string]int](t, rec)
	if counts[enum.OrderStatusPaid] != 1 || counts[enum.OrderStatusPending] != 1 {
		t.Errorf("counts: got %v", counts)
	}
	// Every status is present even at zero.
	for _, status := range []string{enum.OrderStatusCooking, enum.OrderStatusReady, enum.OrderStatusCancelled} {
		if n, ok := counts[status]; !ok || n != 0 {
			t.Errorf("%s: got %d present=%v, want 0 present", status, n, ok)
		}
	}
}

func TestTopProductsReport(t *testing.T) {
	e := newEnv(t)
	_, admin := staffToken(t, enum.RoleAdmin)

	payOrder(t, e)
	payOrder(t, e)

	rec := e.do(t, http.MethodGet, "/reports/top-products?limit=1", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	top := decodeJSON[[]topProductResponse](t, rec)
	if len(top) != 1 {
		t.Fatalf("results: got %d, want 1", len(top))
	}
	// Both products sold 2 units; cafe-americano was first seen.
	if top[0].ProductID != "cafe-americano" || top[0].Units != 2 {
		t.Errorf("top product: got %+v", top[0])
	}

	rec = e.do(t, http.MethodGet, "/reports/top-products?limit=cero", admin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
