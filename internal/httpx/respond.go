package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-warehouse.git/internal/warehouse"
	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError memetakan taksonomi error domain ke kode HTTP. Semua error
// domain adalah client-fault; sisanya dianggap kegagalan transient datastore.
func writeError(w http.ResponseWriter, err error) {
	var (
		stock    *warehouse.InsufficientStockError
		unknown  *warehouse.UnknownStatusError
		notFound *warehouse.ProductNotFoundError
		invalid  *warehouse.ValidationError
	)
	switch {
	case errors.As(err, &stock):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      stock.Error(),
			"product_id": stock.ProductID,
			"available":  stock.Available,
			"requested":  stock.Requested,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":      notFound.Error(),
			"product_id": notFound.ProductID,
		})
	case errors.Is(err, warehouse.ErrOrderNotFound),
		errors.Is(err, warehouse.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, warehouse.ErrOrderCancelled):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, warehouse.ErrEmptyOrder),
		errors.As(err, &unknown),
		errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
