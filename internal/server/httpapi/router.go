package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/worldclock/internal/logging"
)

// NewRouter wires the sync API: /healthz is open, everything under /sync
// requires a resolved account.
func NewRouter(h *Handler, secretKey []byte, logger logging.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(Recoverer(logger), RequestLogger(logger))
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet, http.MethodHead)

	s := r.PathPrefix("/sync").Subrouter()
	s.Use(AccountResolver(secretKey))
	s.HandleFunc("/changes", h.GetChanges).Methods(http.MethodGet)
	s.HandleFunc("/changes", h.PatchChanges).Methods(http.MethodPatch)

	return r
}
