// Package httpapi exposes the sync service over HTTP JSON: the paged
// change feed, the push endpoint and the health probe.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/worldclock/internal/common"
	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/logging"
	"github.com/dmitrijs2005/worldclock/internal/wire"
)

// ChangesPath is the single sync endpoint; GET pulls, PATCH pushes.
const ChangesPath = "/sync/changes"

// SyncService is the application-layer contract the handlers drive.
type SyncService interface {
	ApplyChanges(ctx context.Context, accountID string, changes []wire.Change) error
	Changes(ctx context.Context, accountID string, cur cursor.Cursor) ([]wire.Change, *cursor.Cursor, error)
}

// Handler holds the HTTP handlers for the sync API. Account identity is
// resolved by middleware before any handler runs; handlers only read it
// back out of the request context.
type Handler struct {
	sync   SyncService
	logger logging.Logger
}

func NewHandler(sync SyncService, logger logging.Logger) *Handler {
	return &Handler{sync: sync, logger: logger.With("module", "httpapi")}
}

// GetChanges serves one page of the account's change feed. The start
// point comes from the opaque cursor token; an unreadable token restarts
// from the beginning of the log, which is safe because applying a change
// twice is a no-op on the client.
func (h *Handler) GetChanges(w http.ResponseWriter, r *http.Request) {
	accountID := AccountIDFromContext(r.Context())

	changes, next, err := h.sync.Changes(r.Context(), accountID, cursorFromRequest(r))
	if err != nil {
		h.logger.Error(r.Context(), "failed to read change feed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := wire.ChangesResponse{Changes: changes}
	if resp.Changes == nil {
		resp.Changes = []wire.Change{}
	}
	if next != nil {
		u := ChangesPath + "?cursor=" + next.Encode()
		resp.Next = &u
	}
	writeJSON(w, http.StatusOK, resp)
}

// PatchChanges accepts a batch of pushed changes. The batch is validated
// up front and rejected whole on the first violation; accepted batches
// are applied element by element, with changes that lose the
// last-write-wins race dropped silently.
func (h *Handler) PatchChanges(w http.ResponseWriter, r *http.Request) {
	accountID := AccountIDFromContext(r.Context())

	var changes []wire.Change
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	for _, c := range changes {
		if err := c.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.sync.ApplyChanges(r.Context(), accountID, changes); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(r.Context(), "failed to apply changes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Healthz answers the clients' reachability probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// cursorFromRequest picks the page start: the opaque cursor token when
// present, otherwise the legacy since timestamp mapped to a cursor with
// an empty id, otherwise the start of the log.
func cursorFromRequest(r *http.Request) cursor.Cursor {
	if tok := r.URL.Query().Get("cursor"); tok != "" {
		return cursor.Decode(tok)
	}
	if since := r.URL.Query().Get("since"); since != "" {
		return cursor.Cursor{UpdatedAt: since}
	}
	return cursor.Cursor{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
