package handler

import (
	"encoding/json"
	"net/http"

	"github.com/luwak-cafe/pos-api/internal/ledger"
	"github.com/luwak-cafe/pos-api/internal/ws"
)

type registerPaymentRequest struct {
	Method          string `json:"method"`
	OperationNumber string `json:"operation_number"`
	ReceiptPhotoURL string `json:"receipt_photo_url"`
	CustomerName    string `json:"customer_name"`
}

// RegisterPayment settles a ready order. The authenticated caller is
// recorded as the cashier.
func (h *OrdersHandler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	var req registerPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.ledger.RegisterPayment(r.Context(), id, ledger.PaymentInput{
		Method:          req.Method,
		OperationNumber: req.OperationNumber,
		ReceiptPhotoURL: req.ReceiptPhotoURL,
		CustomerName:    req.CustomerName,
		Cashier:         identityFromContext(r.Context()),
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	h.broadcast(ws.EventOrderPaid, order)
	writeJSON(w, http.StatusOK, order)
}
