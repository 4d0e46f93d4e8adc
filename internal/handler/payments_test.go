package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/luwak-cafe/pos-api/internal/ledger"
)

func TestRegisterPaymentYape(t *testing.T) {
	e := newEnv(t)
	_, cashier := staffToken(t, enum.RoleCajero)
	order := e.createReadyOrder(t)

	rec := e.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payment", cashier,
		map[string]string{
			"method":           enum.PaymentMethodYape,
			"operation_number": "OP-4411",
			"customer_name":    "Carlos",
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	paid := decodeJSON[ledger.Order](t, rec)
	if paid.Status != enum.OrderStatusPaid {
		t.Errorf("status: got %q, want paid", paid.Status)
	}
	if paid.PaymentMethod != enum.PaymentMethodYape {
		t.Errorf("method: got %q, want yape", paid.PaymentMethod)
	}
	if paid.PaidAt == nil {
		t.Error("paid_at not set")
	}
	if paid.Payment == nil || paid.Payment.OperationNumber != "OP-4411" {
		t.Errorf("payment details: got %+v", paid.Payment)
	}
	if paid.Payment != nil && paid.Payment.CashierName != "Staff cajero" {
		t.Errorf("cashier name: got %q", paid.Payment.CashierName)
	}
}

func TestRegisterPaymentBeforeReady(t *testing.T) {
	e := newEnv(t)
	_, waiter := staffToken(t, enum.RoleMesero)
	_, cashier := staffToken(t, enum.RoleCajero)

	rec := e.do(t, http.MethodPost, "/orders", waiter, map[string]any{
		"items": []map[string]any{
			{"product_id": "espresso", "name": "Espresso", "quantity": 1, "unit_price": "6"},
		},
	})
	order := decodeJSON[ledger.Order](t, rec)

	rec = e.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payment", cashier,
		map[string]string{"method": enum.PaymentMethodEfectivo})
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestRegisterPaymentTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	_, cashier := staffToken(t, enum.RoleCajero)
	order := e.createReadyOrder(t)

	rec := e.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payment", cashier,
		map[string]string{"method": enum.PaymentMethodEfectivo})
	if rec.Code != http.StatusOK {
		t.Fatalf("first payment: got %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payment", cashier,
		map[string]string{"method": enum.PaymentMethodYape})
	if rec.Code != http.StatusConflict {
		t.Errorf("second payment: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestRegisterPaymentInvalidMethod(t *testing.T) {
	e := newEnv(t)
	_, cashier := staffToken(t, enum.RoleCajero)
	order := e.createReadyOrder(t)

	rec := e.do(t, http.MethodPost, "/orders/"+order.ID.String()+"/payment", cashier,
		map[string]string{"method": "tarjeta"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegisterPaymentUnknownOrder(t *testing.T) {
	e := newEnv(t)
	_, cashier := staffToken(t, enum.RoleCajero)

	rec := e.do(t, http.MethodPost, "/orders/"+uuid.NewString()+"/payment", cashier,
		map[string]string{"method": enum.PaymentMethodEfectivo})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
