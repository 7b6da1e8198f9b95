package handler

import (
	"encoding/json"
	"net/http"

	"warehouse-receiving/internal/model"
	"warehouse-receiving/internal/service"

	"github.com/rs/zerolog"
)

const maxRequestBodyBytes = 1 << 20

// WarehouseHandler handles stock receiving requests.
type WarehouseHandler struct {
	fulfiller service.Fulfiller
	logger    zerolog.Logger
}

// NewWarehouseHandler creates a new warehouse handler around one Fulfiller variant.
func NewWarehouseHandler(fulfiller service.Fulfiller, variant string, logger zerolog.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		fulfiller: fulfiller,
		logger: logger.With().
			Str("handler", "warehouse").
			Str("variant", variant).
			Logger(),
	}
}

// AddProduct handles POST /api/warehouse/products requests.
func (h *WarehouseHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", h.logger)
		return
	}

	var req model.FulfillmentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if msg := missingField(&req); msg != "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, msg, h.logger)
		return
	}

	result, err := h.fulfiller.Fulfill(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.FulfillmentResponse{LineItemID: result.LineItemID})
}

// missingField returns a message naming the first absent field, or "".
func missingField(req *model.FulfillmentRequest) string {
	switch {
	case req.ProductID <= 0:
		return "idProduct is required"
	case req.WarehouseID <= 0:
		return "idWarehouse is required"
	case req.CreatedAt.IsZero():
		return "createdAt is required"
	}
	return ""
}
