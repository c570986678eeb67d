package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusfound/campusfound/internal/store"
)

// storeError maps a store error to an HTTP error response. Sentinel errors
// carry their detail message to the client; anything else is logged and
// reported as an internal error.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalid):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("store operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
