package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/ledger"
	"github.com/luwak-cafe/pos-api/internal/ws"
)

// NoteLedger defines the ledger operations needed by note handlers.
type NoteLedger interface {
	AddNote(ctx context.Context, text string, author ledger.Identity) (ledger.Note, error)
	UpdateNote(ctx context.Context, noteID uuid.UUID, text string, actor ledger.Identity) (ledger.Note, error)
	DeleteNote(ctx context.Context, noteID uuid.UUID, actor ledger.Identity) error
	ListNotes(ctx context.Context) ([]ledger.Note, error)
}

// NotesHandler handles the staff message board.
type NotesHandler struct {
	ledger NoteLedger
	hub    *ws.Hub
	now    func() time.Time
}

// NewNotesHandler creates a new NotesHandler. hub may be nil in tests.
func NewNotesHandler(l NoteLedger, hub *ws.Hub) *NotesHandler {
	return &NotesHandler{ledger: l, hub: hub, now: time.Now}
}

type noteRequest struct {
	Text string `json:"text"`
}

// Create appends a note authored by the caller.
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.ledger.AddNote(r.Context(), req.Text, identityFromContext(r.Context()))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.NewEvent(ws.EventNoteAdded, note))
	}
	writeJSON(w, http.StatusCreated, note)
}

// List returns notes newest first. ?since_hours=N keeps only notes from the
// last N hours; this is a display window, old notes are never deleted.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.ledger.ListNotes(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	if raw := r.URL.Query().Get("since_hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			writeError(w, http.StatusBadRequest, "invalid since_hours")
			return
		}
		cutoff := h.now().Add(-time.Duration(hours) * time.Hour)
		kept := notes[:0]
		for _, n := range notes {
			if !n.CreatedAt.Before(cutoff) {
				kept = append(kept, n)
			}
		}
		notes = kept
	}

	if notes == nil {
		notes = []ledger.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// Update replaces a note's text. The ledger enforces author-or-admin.
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.ledger.UpdateNote(r.Context(), id, req.Text, identityFromContext(r.Context()))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Delete removes a note. The ledger enforces admin-only.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	if err := h.ledger.DeleteNote(r.Context(), id, identityFromContext(r.Context())); err != nil {
		respondLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
