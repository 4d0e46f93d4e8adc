// Package postgres is the durable ledger.Store backed by PostgreSQL.
// Migrations are embedded and applied on startup.
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/luwak-cafe/pos-api/internal/auth"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/luwak-cafe/pos-api/internal/ledger"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements ledger.Store over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects, pings, runs pending migrations, and returns the store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		pool.Close()
		return nil, err
	}
	db := stdlib.OpenDBFromPool(pool)
	if err := goose.Up(db, "migrations"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// NextOrderNumber allocates the next sequential number for a day key. The
// upsert increments and returns in one statement, so allocation is atomic
// across concurrent callers.
func (s *Store) NextOrderNumber(ctx context.Context, day string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO order_counters (order_day, last_number)
		VALUES ($1, 1)
		ON CONFLICT (order_day)
		DO UPDATE SET last_number = order_counters.last_number + 1
		RETURNING last_number`, day).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("allocate order number: %w", err)
	}
	return n, nil
}

func (s *Store) InsertOrder(ctx context.Context, o ledger.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, description, total, status,
			created_at, created_by_id, created_by_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.OrderNumber, o.Description, o.Total.String(), o.Status,
		o.CreatedAt, o.CreatedByID, o.CreatedByName)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, name,
				quantity, unit_price, variant)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, o.ID, i, item.ProductID, item.Name,
			item.Quantity, item.UnitPrice.String(), item.Variant)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

const orderColumns = `id, order_number, description, total::text, status,
	created_at, created_by_id, created_by_name, payment_method, paid_at, payment`

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (ledger.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Order{}, ledger.ErrOrderNotFound
	}
	if err != nil {
		return ledger.Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := s.loadItems(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return ledger.Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string) (ledger.Order, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return ledger.Order{}, fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing order from a lost race.
		var current string
		err := s.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Order{}, ledger.ErrOrderNotFound
		}
		if err != nil {
			return ledger.Order{}, fmt.Errorf("check status: %w", err)
		}
		return ledger.Order{}, ledger.ErrStaleStatus
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) SetOrderPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, details ledger.PaymentDetails) (ledger.Order, error) {
	payment, err := json.Marshal(details)
	if err != nil {
		return ledger.Order{}, fmt.Errorf("marshal payment: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET status = $1, payment_method = $2, paid_at = $3, payment = $4
		WHERE id = $5 AND status = $6`,
		enum.OrderStatusPaid, details.Method, paidAt, payment,
		id, enum.OrderStatusReady)
	if err != nil {
		return ledger.Order{}, fmt.Errorf("set paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := s.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Order{}, ledger.ErrOrderNotFound
		}
		if err != nil {
			return ledger.Order{}, fmt.Errorf("check status: %w", err)
		}
		return ledger.Order{}, ledger.ErrStaleStatus
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) ListOrders(ctx context.Context, f ledger.OrderFilter) ([]ledger.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, order_number"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []ledger.Order
	var ids []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// loadItems fetches the items of many orders in one query, keyed by order id.
func (s *Store) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]ledger.OrderItem, error) {
	out := make(map[uuid.UUID][]ledger.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT order_id, id, product_id, name, quantity, unit_price::text, variant
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item ledger.OrderItem
		var unitPrice string
		if err := rows.Scan(&orderID, &item.ID, &item.ProductID, &item.Name,
			&item.Quantity, &unitPrice, &item.Variant); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.UnitPrice, err = decimal.NewFromString(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		out[orderID] = append(out[orderID], item)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (ledger.Order, error) {
	var o ledger.Order
	var total string
	var payment []byte
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Description, &total, &o.Status,
		&o.CreatedAt, &o.CreatedByID, &o.CreatedByName, &o.PaymentMethod,
		&o.PaidAt, &payment)
	if err != nil {
		return ledger.Order{}, err
	}
	o.Total, err = decimal.NewFromString(total)
	if err != nil {
		return ledger.Order{}, fmt.Errorf("parse total: %w", err)
	}
	if payment != nil {
		o.Payment = &ledger.PaymentDetails{}
		if err := json.Unmarshal(payment, o.Payment); err != nil {
			return ledger.Order{}, fmt.Errorf("parse payment: %w", err)
		}
	}
	return o, nil
}

func (s *Store) InsertNote(ctx context.Context, n ledger.Note) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notes (id, text, created_at, created_by_id, created_by_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.Text, n.CreatedAt, n.CreatedByID, n.CreatedByName, n.Role)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *Store) GetNote(ctx context.Context, id uuid.UUID) (ledger.Note, error) {
	var n ledger.Note
	err := s.pool.QueryRow(ctx, `
		SELECT id, text, created_at, created_by_id, created_by_name, role
		FROM notes WHERE id = $1`, id).
		Scan(&n.ID, &n.Text, &n.CreatedAt, &n.CreatedByID, &n.CreatedByName, &n.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Note{}, ledger.ErrNoteNotFound
	}
	if err != nil {
		return ledger.Note{}, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateNoteText(ctx context.Context, id uuid.UUID, text string) (ledger.Note, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE notes SET text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return ledger.Note{}, fmt.Errorf("update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.Note{}, ledger.ErrNoteNotFound
	}
	return s.GetNote(ctx, id)
}

func (s *Store) DeleteNote(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNoteNotFound
	}
	return nil
}

func (s *Store) ListNotes(ctx context.Context) ([]ledger.Note, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, text, created_at, created_by_id, created_by_name, role
		FROM notes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []ledger.Note
	for rows.Next() {
		var n ledger.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt, &n.CreatedByID,
			&n.CreatedByName, &n.Role); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpsertUser adds or replaces a staff member, keyed by ID.
func (s *Store) UpsertUser(ctx context.Context, u auth.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, email, role, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			hashed_password = EXCLUDED.hashed_password`,
		u.ID, u.FullName, u.Email, u.Role, u.HashedPassword, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	return s.getUser(ctx, `lower(email) = lower($1)`, email)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	return s.getUser(ctx, `id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, cond string, arg any) (auth.User, error) {
	var u auth.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, full_name, email, role, hashed_password, created_at
		FROM users WHERE `+cond, arg).
		Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &u.HashedPassword, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
