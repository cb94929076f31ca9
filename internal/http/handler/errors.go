package handler

import (
	"errors"
	"net/http"

	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/idea"
)

// writeStoreError maps store errors onto the HTTP status taxonomy.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, idea.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, idea.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, idea.ErrConflict):
		http.Error(w, "conflict", http.StatusConflict)
	case errors.Is(err, idea.ErrNotOwned),
		errors.Is(err, idea.ErrNotMember),
		errors.Is(err, idea.ErrInvalidTitle):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, idea.ErrDefaultCategoryMissing):
		// Provisioning invariant violated; surface it, never repair here.
		http.Error(w, "default category missing", http.StatusInternalServerError)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
