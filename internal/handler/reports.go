package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/luwak-cafe/pos-api/internal/ledger"
)

// ReportLedger defines the aggregate queries needed by report handlers.
type ReportLedger interface {
	StatusCounts(ctx context.Context) (ledger.StatusCounts, error)
	SalesSummary(ctx context.Context, from, to time.Time) (ledger.SalesSummary, error)
	SalesToday(ctx context.Context) (ledger.SalesSummary, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ledger.ProductSales, error)
	Location() *time.Location
}

// ReportsHandler serves the dashboard aggregates.
type ReportsHandler struct {
	ledger ReportLedger
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(l ReportLedger) *ReportsHandler {
	return &ReportsHandler{ledger: l}
}

type salesSummaryResponse struct {
	TotalSales    string `json:"total_sales"`
	PaidCount     int    `json:"paid_count"`
	AverageTicket string `json:"average_ticket"`
}

type productSalesResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
}

// Summary returns sales totals. Without ?from/?to it covers today in the
// café's timezone.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, useToday, ok := h.parseDateRange(w, r)
	if !ok {
		return
	}

	var summary ledger.SalesSummary
	var err error
	if useToday {
		summary, err = h.ledger.SalesToday(r.Context())
	} else {
		summary, err = h.ledger.SalesSummary(r.Context(), from, to)
	}
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, salesSummaryResponse{
		TotalSales:    summary.TotalSales.StringFixed(2),
		PaidCount:     summary.PaidCount,
		AverageTicket: summary.AverageTicket.StringFixed(2),
	})
}

// StatusCounts returns the live count of orders per status.
func (h *ReportsHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.ledger.StatusCounts(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// TopProducts returns the best sellers by units. ?limit= defaults to 5.
func (h *ReportsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	from, to, useToday, ok := h.parseDateRange(w, r)
	if !ok {
		return
	}
	if useToday {
		from, to = time.Time{}, time.Time{}
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	products, err := h.ledger.TopProducts(r.Context(), from, to, limit)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	out := make([]productSalesResponse, len(products))
	for i, p := range products {
		out[i] = productSalesResponse{ProductID: p.ProductID, Name: p.Name, Units: p.Units}
	}
	writeJSON(w, http.StatusOK, out)
}

// parseDateRange reads ?from and ?to as YYYY-MM-DD in the café's timezone.
// Both absent means "today". ?to is inclusive as a date, so the returned
// bound is the following midnight.
func (h *ReportsHandler) parseDateRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, useToday, ok bool) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return time.Time{}, time.Time{}, true, true
	}

	loc := h.ledger.Location()
	if fromRaw != "" {
		day, err := time.ParseInLocation("2006-01-02", fromRaw, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false, false
		}
		from = day
	}
	if toRaw != "" {
		day, err := time.ParseInLocation("2006-01-02", toRaw, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false, false
		}
		to = day.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "to date is before from date")
		return time.Time{}, time.Time{}, false, false
	}
	return from, to, false, true
}
