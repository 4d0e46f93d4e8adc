package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/shopspring/decimal"
)

// StatusCounts maps each order status to the number of orders in it.
type StatusCounts map[string]int

// SalesSummary aggregates paid orders: total sales, how many orders were
// paid, and the average ticket (0 when nothing was paid).
type SalesSummary struct {
	TotalSales    decimal.Decimal
	PaidCount     int
	AverageTicket decimal.Decimal
}

// ProductSales is the unit count of one product across paid orders.
type ProductSales struct {
	ProductID string
	Name      string
	Units     int64
}

// StatusCounts counts every order in the ledger by its current status.
// All five statuses appear in the result, zero-valued when absent.
func (l *Ledger) StatusCounts(ctx context.Context) (StatusCounts, error) {
	orders, err := l.store.ListOrders(ctx, OrderFilter{})
	if err != nil {
		return nil, err
	}

	counts := StatusCounts{
		enum.OrderStatusPending:   0,
		enum.OrderStatusCooking:   0,
		enum.OrderStatusReady:     0,
		enum.OrderStatusPaid:      0,
		enum.OrderStatusCancelled: 0,
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts, nil
}

// SalesSummary sums the stored totals of orders paid within [from, to).
// Zero bounds are unbounded. Aggregation filters strictly by current
// status, so a cancelled or still-open order never counts.
func (l *Ledger) SalesSummary(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	paid, err := l.paidOrdersWithin(ctx, from, to)
	if err != nil {
		return SalesSummary{}, err
	}

	summary := SalesSummary{
		TotalSales:    decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	for _, o := range paid {
		summary.TotalSales = summary.TotalSales.Add(o.Total)
		summary.PaidCount++
	}
	if summary.PaidCount > 0 {
		summary.AverageTicket = summary.TotalSales.
			Div(decimal.NewFromInt(int64(summary.PaidCount))).
			Round(2)
	}
	return summary, nil
}

// SalesToday is SalesSummary bounded to the current calendar day in the
// ledger's timezone.
func (l *Ledger) SalesToday(ctx context.Context) (SalesSummary, error) {
	from, to := l.dayBounds(l.now())
	return l.SalesSummary(ctx, from, to)
}

// TopProducts returns the limit best-selling products by units among orders
// paid within [from, to). Ties keep first-seen order: products are
// accumulated in the order they first appear across paid orders and the
// sort is stable.
func (l *Ledger) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	paid, err := l.paidOrdersWithin(ctx, from, to)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var products []ProductSales
	for _, o := range paid {
		for _, item := range o.Items {
			i, ok := index[item.ProductID]
			if !ok {
				i = len(products)
				index[item.ProductID] = i
				products = append(products, ProductSales{
					ProductID: item.ProductID,
					Name:      item.Name,
				})
			}
			products[i].Units += int64(item.Quantity)
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Units > products[j].Units
	})

	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// paidOrdersWithin returns paid orders whose PaidAt falls in [from, to).
// The window applies to the payment time, not the creation time.
func (l *Ledger) paidOrdersWithin(ctx context.Context, from, to time.Time) ([]Order, error) {
	orders, err := l.store.ListOrders(ctx, OrderFilter{Status: enum.OrderStatusPaid})
	if err != nil {
		return nil, err
	}

	out := orders[:0]
	for _, o := range orders {
		if o.PaidAt == nil {
			continue
		}
		if !from.IsZero() && o.PaidAt.Before(from) {
			continue
		}
		if !to.IsZero() && !o.PaidAt.Before(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// dayBounds returns the [midnight, next midnight) window containing t in
// the ledger's timezone.
func (l *Ledger) dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(l.loc)
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.loc)
	return from, from.AddDate(0, 0, 1)
}
