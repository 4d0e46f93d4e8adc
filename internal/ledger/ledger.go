// Package ledger owns the authoritative collections of orders and staff
// notes and enforces the order status state machine and payment invariants.
// All mutation goes through the operations defined here; persistence is
// delegated to a Store implementation.
package ledger

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by ledger operations.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoCreator         = errors.New("creator identity is required")
	ErrMissingProduct    = errors.New("product id is required")
	ErrMissingName       = errors.New("item name is required")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidUnitPrice  = errors.New("unit price must be >= 0")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidMethod     = errors.New("invalid payment method")
	ErrNoCashier         = errors.New("cashier identity is required")
	ErrNotReady          = errors.New("order is not ready for payment")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrOrderCancelled    = errors.New("order is cancelled")
	ErrInvalidAdminCode  = errors.New("invalid authorization code")
	ErrEmptyNote         = errors.New("note text is required")
	ErrNoteNotFound      = errors.New("note not found")
	ErrForbidden         = errors.New("operation not allowed for this role")

	// ErrStaleStatus is returned by Store implementations when a
	// compare-and-set status update finds the order in a different state
	// than expected (a concurrent writer got there first).
	ErrStaleStatus = errors.New("order status changed concurrently")
)

// Store is the persistence boundary the ledger writes through after each
// mutation. Implementations must allocate order numbers atomically per
// day key and apply status updates as compare-and-set.
type Store interface {
	NextOrderNumber(ctx context.Context, day string) (int, error)
	InsertOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string) (Order, error)
	SetOrderPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, details PaymentDetails) (Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]Order, error)

	InsertNote(ctx context.Context, n Note) error
	GetNote(ctx context.Context, id uuid.UUID) (Note, error)
	UpdateNoteText(ctx context.Context, id uuid.UUID, text string) (Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID) error
	ListNotes(ctx context.Context) ([]Note, error)
}

// CodeVerifier checks the operator-entered authorization code for order
// cancellation. Pluggable so deployments can back it with whatever
// credential store they use.
type CodeVerifier interface {
	Verify(code string) bool
}

// StaticCodeVerifier compares against a single configured code.
type StaticCodeVerifier struct {
	code string
}

func NewStaticCodeVerifier(code string) *StaticCodeVerifier {
	return &StaticCodeVerifier{code: code}
}

func (v *StaticCodeVerifier) Verify(code string) bool {
	if v.code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(v.code)) == 1
}

// allowedTransitions defines valid forward transitions per current status.
// paid is reachable only through RegisterPayment and is deliberately absent
// from every target list here.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending: {enum.OrderStatusCooking, enum.OrderStatusCancelled},
	enum.OrderStatusCooking: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:   {enum.OrderStatusCancelled},
}

func transitionAllowed(current, next string) bool {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Ledger is the order ledger service. Construct with New and share a single
// instance per process; all state lives behind the Store.
type Ledger struct {
	store    Store
	verifier CodeVerifier
	loc      *time.Location
	now      func() time.Time
}

// New creates a Ledger. loc fixes the calendar-day convention for order
// numbering and "today" aggregates (nil falls back to the local zone).
func New(store Store, verifier CodeVerifier, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{
		store:    store,
		verifier: verifier,
		loc:      loc,
		now:      time.Now,
	}
}

// Location returns the calendar-day zone the ledger operates in.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// dayKey is the calendar-day bucket an instant belongs to.
func (l *Ledger) dayKey(t time.Time) string {
	return t.In(l.loc).Format("2006-01-02")
}

// CreateOrderFromCart validates a cart, allocates the next day-scoped order
// number, and appends a new pending order.
func (l *Ledger) CreateOrderFromCart(ctx context.Context, cart []CartItem, creator Identity) (Order, error) {
	if creator.IsZero() {
		return Order{}, ErrNoCreator
	}
	if len(cart) == 0 {
		return Order{}, ErrEmptyCart
	}

	total := decimal.Zero
	items := make([]OrderItem, len(cart))
	for i, ci := range cart {
		if ci.ProductID == "" {
			return Order{}, fmt.Errorf("items[%d]: %w", i, ErrMissingProduct)
		}
		if ci.Name == "" {
			return Order{}, fmt.Errorf("items[%d]: %w", i, ErrMissingName)
		}
		if ci.Quantity <= 0 {
			return Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if ci.UnitPrice.IsNegative() {
			return Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidUnitPrice)
		}
		items[i] = OrderItem{
			ID:        uuid.New(),
			ProductID: ci.ProductID,
			Name:      ci.Name,
			Quantity:  ci.Quantity,
			UnitPrice: ci.UnitPrice,
			Variant:   ci.Variant,
		}
		total = total.Add(ci.UnitPrice.Mul(decimal.NewFromInt32(ci.Quantity)))
	}

	createdAt := l.now()
	number, err := l.store.NextOrderNumber(ctx, l.dayKey(createdAt))
	if err != nil {
		return Order{}, fmt.Errorf("allocate order number: %w", err)
	}

	order := Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		Description:   buildDescription(items),
		Items:         items,
		Total:         total,
		Status:        enum.OrderStatusPending,
		CreatedAt:     createdAt,
		CreatedByID:   creator.ID,
		CreatedByName: creator.Name,
	}

	if err := l.store.InsertOrder(ctx, order); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

// GetOrder returns a single order.
func (l *Ledger) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return l.store.GetOrder(ctx, id)
}

// ListOrders returns orders matching the filter, oldest first.
func (l *Ledger) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	return l.store.ListOrders(ctx, f)
}

// AdvanceStatus moves an order one step forward through the kitchen
// lifecycle. Only pending→cooking and cooking→ready are reachable here;
// paid and cancelled have their own operations.
func (l *Ledger) AdvanceStatus(ctx context.Context, orderID uuid.UUID, target string) (Order, error) {
	if target != enum.OrderStatusCooking && target != enum.OrderStatusReady {
		return Order{}, ErrInvalidTransition
	}

	current, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !transitionAllowed(current.Status, target) {
		return Order{}, ErrInvalidTransition
	}

	updated, err := l.store.UpdateOrderStatus(ctx, orderID, current.Status, target)
	if errors.Is(err, ErrStaleStatus) {
		// Lost a race: the order moved under us, so the transition we
		// validated no longer applies.
		return Order{}, ErrInvalidTransition
	}
	return updated, err
}

// MarkAsCooking advances a pending order to cooking.
func (l *Ledger) MarkAsCooking(ctx context.Context, orderID uuid.UUID) (Order, error) {
	return l.AdvanceStatus(ctx, orderID, enum.OrderStatusCooking)
}

// MarkAsReady advances a cooking order to ready.
func (l *Ledger) MarkAsReady(ctx context.Context, orderID uuid.UUID) (Order, error) {
	return l.AdvanceStatus(ctx, orderID, enum.OrderStatusReady)
}

// PaymentInput is the validated input for RegisterPayment.
type PaymentInput struct {
	Method          string
	OperationNumber string
	ReceiptPhotoURL string
	CustomerName    string
	Cashier         Identity
}

// RegisterPayment transitions a ready order to paid, stamping PaidAt and
// recording the payment details. This is the only path into paid, and it
// refuses to run twice: a paid order keeps the details recorded at payment time.
func (l *Ledger) RegisterPayment(ctx context.Context, orderID uuid.UUID, in PaymentInput) (Order, error) {
	if !enum.IsValidPaymentMethod(in.Method) {
		return Order{}, ErrInvalidMethod
	}
	if in.Cashier.IsZero() {
		return Order{}, ErrNoCashier
	}

	current, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if current.Status != enum.OrderStatusReady {
		return Order{}, paymentStateError(current.Status)
	}

	details := PaymentDetails{
		Method:          in.Method,
		OperationNumber: in.OperationNumber,
		ReceiptPhotoURL: in.ReceiptPhotoURL,
		CustomerName:    in.CustomerName,
		CashierID:       in.Cashier.ID,
		CashierName:     in.Cashier.Name,
	}

	updated, err := l.store.SetOrderPaid(ctx, orderID, l.now(), details)
	if errors.Is(err, ErrStaleStatus) {
		refetched, getErr := l.store.GetOrder(ctx, orderID)
		if getErr != nil {
			return Order{}, getErr
		}
		return Order{}, paymentStateError(refetched.Status)
	}
	return updated, err
}

func paymentStateError(status string) error {
	switch status {
	case enum.OrderStatusPaid:
		return ErrAlreadyPaid
	case enum.OrderStatusCancelled:
		return ErrOrderCancelled
	default:
		return ErrNotReady
	}
}

// CancelOrder cancels a non-terminal order after verifying the supplied
// authorization code. On a code mismatch the order is left untouched.
func (l *Ledger) CancelOrder(ctx context.Context, orderID uuid.UUID, code string) (Order, error) {
	if l.verifier == nil || !l.verifier.Verify(code) {
		return Order{}, ErrInvalidAdminCode
	}

	current, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !transitionAllowed(current.Status, enum.OrderStatusCancelled) {
		return Order{}, ErrInvalidTransition
	}

	updated, err := l.store.UpdateOrderStatus(ctx, orderID, current.Status, enum.OrderStatusCancelled)
	if errors.Is(err, ErrStaleStatus) {
		return Order{}, ErrInvalidTransition
	}
	return updated, err
}

// AddNote appends a staff note. Any authenticated role may write notes.
func (l *Ledger) AddNote(ctx context.Context, text string, author Identity) (Note, error) {
	if author.IsZero() {
		return Note{}, ErrNoCreator
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyNote
	}

	note := Note{
		ID:            uuid.New(),
		Text:          text,
		CreatedAt:     l.now(),
		CreatedByID:   author.ID,
		CreatedByName: author.Name,
		Role:          author.Role,
	}
	if err := l.store.InsertNote(ctx, note); err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	return note, nil
}

// UpdateNote replaces a note's text. Only the note's author or an admin
// may edit it.
func (l *Ledger) UpdateNote(ctx context.Context, noteID uuid.UUID, text string, actor Identity) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyNote
	}

	note, err := l.store.GetNote(ctx, noteID)
	if err != nil {
		return Note{}, err
	}
	if actor.Role != enum.RoleAdmin && actor.ID != note.CreatedByID {
		return Note{}, ErrForbidden
	}
	return l.store.UpdateNoteText(ctx, noteID, text)
}

// DeleteNote removes a note. Admin only.
func (l *Ledger) DeleteNote(ctx context.Context, noteID uuid.UUID, actor Identity) error {
	if actor.Role != enum.RoleAdmin {
		return ErrForbidden
	}
	return l.store.DeleteNote(ctx, noteID)
}

// ListNotes returns all notes, newest first. Time-window visibility is the
// caller's concern.
func (l *Ledger) ListNotes(ctx context.Context) ([]Note, error) {
	return l.store.ListNotes(ctx)
}
