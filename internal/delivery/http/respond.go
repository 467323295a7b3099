package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/habscollection/storefront/internal/entity"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized degrades to a generic 500 so internals never leak to buyers.
func writeError(w http.ResponseWriter, err error) {
	if stockErr, ok := entity.IsInsufficientStock(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("only %d left in stock for size %s", stockErr.Available, stockErr.Size),
		})
		return
	}

	switch {
	case errors.Is(err, entity.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrPaymentNotCompleted), errors.Is(err, entity.ErrAmountMismatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrGateway):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not verify payment"})
	case errors.Is(err, entity.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authorized"})
	default:
		slog.Error("Unhandled error", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
