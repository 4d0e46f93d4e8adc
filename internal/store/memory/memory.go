// Package memory is an in-process ledger.Store with optional JSON snapshot
// persistence. It is the default backend when no database is configured:
// state survives restarts through the snapshot file, and writes to the file
// are fire-and-forget so a full disk never blocks taking orders.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/auth"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/luwak-cafe/pos-api/internal/ledger"
)

// Store keeps all ledger state behind a single RWMutex. Orders and notes
// preserve insertion order for stable listings.
type Store struct {
	mu           sync.RWMutex
	orders       map[uuid.UUID]ledger.Order
	orderIDs     []uuid.UUID
	notes        map[uuid.UUID]ledger.Note
	noteIDs      []uuid.UUID
	counters     map[string]int
	users        map[uuid.UUID]auth.User
	usersByEmail map[string]uuid.UUID

	snapshotPath string
}

// snapshot is the on-disk shape of the store.
type snapshot struct {
	Orders   []ledger.Order `json:"orders"`
	Notes    []ledger.Note  `json:"notes"`
	Counters map[string]int `json:"counters"`
	Users    []userSnapshot `json:"users"`
}

// userSnapshot carries the hashed password, which auth.User hides from JSON.
type userSnapshot struct {
	auth.User
	HashedPassword string `json:"hashed_password"`
}

// New creates a Store. If snapshotPath is non-empty the store loads existing
// state from it and rewrites it after every mutation.
func New(snapshotPath string) (*Store, error) {
	s := &Store{
		orders:       make(map[uuid.UUID]ledger.Order),
		notes:        make(map[uuid.UUID]ledger.Note),
		counters:     make(map[string]int),
		users:        make(map[uuid.UUID]auth.User),
		usersByEmail: make(map[string]uuid.UUID),
		snapshotPath: snapshotPath,
	}
	if snapshotPath != "" {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", snapshotPath, err)
		}
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	for _, o := range snap.Orders {
		s.orders[o.ID] = o
		s.orderIDs = append(s.orderIDs, o.ID)
	}
	for _, n := range snap.Notes {
		s.notes[n.ID] = n
		s.noteIDs = append(s.noteIDs, n.ID)
	}
	for day, n := range snap.Counters {
		s.counters[day] = n
	}
	for _, u := range snap.Users {
		user := u.User
		user.HashedPassword = u.HashedPassword
		s.users[user.ID] = user
		s.usersByEmail[strings.ToLower(user.Email)] = user.ID
	}
	return nil
}

// persist rewrites the snapshot file. Called with the write lock held.
// Errors are logged, never propagated: a failed save must not fail the
// operation that triggered it.
func (s *Store) persist() {
	if s.snapshotPath == "" {
		return
	}

	snap := snapshot{
		Orders:   make([]ledger.Order, 0, len(s.orderIDs)),
		Notes:    make([]ledger.Note, 0, len(s.noteIDs)),
		Counters: s.counters,
		Users:    make([]userSnapshot, 0, len(s.users)),
	}
	for _, id := range s.orderIDs {
		snap.Orders = append(snap.Orders, s.orders[id])
	}
	for _, id := range s.noteIDs {
		snap.Notes = append(snap.Notes, s.notes[id])
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, userSnapshot{User: u, HashedPassword: u.HashedPassword})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("ERROR: marshaling snapshot: %v", err)
		return
	}

	tmp := s.snapshotPath + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		log.Printf("ERROR: creating snapshot dir: %v", err)
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("ERROR: writing snapshot: %v", err)
		return
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		log.Printf("ERROR: replacing snapshot: %v", err)
	}
}

// NextOrderNumber increments and returns the counter for the given day key.
func (s *Store) NextOrderNumber(ctx context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[day]++
	s.persist()
	return s.counters[day], nil
}

func (s *Store) InsertOrder(ctx context.Context, o ledger.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	s.orders[o.ID] = o.Clone()
	s.orderIDs = append(s.orderIDs, o.ID)
	s.persist()
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (ledger.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return ledger.Order{}, ledger.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string) (ledger.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ledger.Order{}, ledger.ErrOrderNotFound
	}
	if o.Status != from {
		return ledger.Order{}, ledger.ErrStaleStatus
	}
	o.Status = to
	s.orders[id] = o
	s.persist()
	return o.Clone(), nil
}

func (s *Store) SetOrderPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, details ledger.PaymentDetails) (ledger.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ledger.Order{}, ledger.ErrOrderNotFound
	}
	if o.Status != enum.OrderStatusReady {
		return ledger.Order{}, ledger.ErrStaleStatus
	}
	o.Status = enum.OrderStatusPaid
	o.PaymentMethod = details.Method
	o.PaidAt = &paidAt
	o.Payment = &details
	s.orders[id] = o
	s.persist()
	return o.Clone(), nil
}

func (s *Store) ListOrders(ctx context.Context, f ledger.OrderFilter) ([]ledger.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		o := s.orders[id]
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, o.Clone())
	}
	return out, nil
}

func (s *Store) InsertNote(ctx context.Context, n ledger.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[n.ID]; exists {
		return fmt.Errorf("note %s already exists", n.ID)
	}
	s.notes[n.ID] = n
	s.noteIDs = append(s.noteIDs, n.ID)
	s.persist()
	return nil
}

func (s *Store) GetNote(ctx context.Context, id uuid.UUID) (ledger.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return ledger.Note{}, ledger.ErrNoteNotFound
	}
	return n, nil
}

func (s *Store) UpdateNoteText(ctx context.Context, id uuid.UUID, text string) (ledger.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return ledger.Note{}, ledger.ErrNoteNotFound
	}
	n.Text = text
	s.notes[id] = n
	s.persist()
	return n, nil
}

func (s *Store) DeleteNote(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return ledger.ErrNoteNotFound
	}
	delete(s.notes, id)
	for i, nid := range s.noteIDs {
		if nid == id {
			s.noteIDs = append(s.noteIDs[:i], s.noteIDs[i+1:]...)
			break
		}
	}
	s.persist()
	return nil
}

// ListNotes returns notes newest first.
func (s *Store) ListNotes(ctx context.Context) ([]ledger.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Note, 0, len(s.noteIDs))
	for i := len(s.noteIDs) - 1; i >= 0; i-- {
		out = append(out, s.notes[s.noteIDs[i]])
	}
	return out, nil
}

// UpsertUser adds or replaces a staff member, keyed by ID. Email lookup is
// case-insensitive.
func (s *Store) UpsertUser(ctx context.Context, u auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.users[u.ID]; ok {
		delete(s.usersByEmail, strings.ToLower(prev.Email))
	}
	s.users[u.ID] = u
	s.usersByEmail[strings.ToLower(u.Email)] = u.ID
	s.persist()
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}
