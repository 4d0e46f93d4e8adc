package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Identity is the authenticated staff member performing an operation.
// The ledger trusts the identity it is handed; authentication happens
// at the HTTP boundary.
type Identity struct {
	ID   uuid.UUID
	Name string
	Role string
}

// IsZero reports whether no identity was supplied.
func (id Identity) IsZero() bool {
	return id.ID == uuid.Nil
}

// CartItem is one line of a client-held cart, not yet committed to an order.
type CartItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal // tax-inclusive
	Quantity  int32
	Variant   string
}

// OrderItem is one line of a committed order. Immutable after creation.
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Variant   string          `json:"variant,omitempty"`
}

// PaymentDetails records how an order was paid. Set exactly once, when the
// order transitions to paid.
type PaymentDetails struct {
	Method          string    `json:"method"`
	OperationNumber string    `json:"operation_number,omitempty"`
	ReceiptPhotoURL string    `json:"receipt_photo_url,omitempty"`
	CustomerName    string    `json:"customer_name,omitempty"`
	CashierID       uuid.UUID `json:"cashier_id"`
	CashierName     string    `json:"cashier_name"`
}

// Order is a customer purchase request moving through the status lifecycle.
// Total is computed once at creation from the items and never recomputed.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   int             `json:"order_number"` // sequential per calendar day
	Description   string          `json:"description"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedByID   uuid.UUID       `json:"created_by_id"`
	CreatedByName string          `json:"created_by_name"`
	PaymentMethod string          `json:"payment_method,omitempty"` // empty until paid
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Payment       *PaymentDetails `json:"payment,omitempty"`
}

// Clone returns a deep copy so callers can never mutate ledger-owned state.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	if o.Payment != nil {
		p := *o.Payment
		c.Payment = &p
	}
	return c
}

// Note is a short staff message. Visibility windows ("last 24 hours") are a
// presentation concern applied by callers, not a ledger invariant.
type Note struct {
	ID            uuid.UUID `json:"id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedByID   uuid.UUID `json:"created_by_id"`
	CreatedByName string    `json:"created_by_name"`
	Role          string    `json:"role"`
}

// OrderFilter narrows ListOrders results. Zero times mean unbounded;
// From is inclusive and To exclusive, both on CreatedAt.
type OrderFilter struct {
	Status string
	From   time.Time
	To     time.Time
}

// buildDescription derives the display summary: the first item's name, or
// "name + N ítem(s) más" when the order has more than one line.
func buildDescription(items []OrderItem) string {
	if len(items) == 1 {
		return items[0].Name
	}
	return fmt.Sprintf("%s + %d ítem(s) más", items[0].Name, len(items)-1)
}
