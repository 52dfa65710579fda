package api

import (
	"encoding/json"
	"net/http"
)

// ListOperations возвращает ID активных операций роутера.
// GET /api/v1/operations
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops := h.router.ActiveOperations()
	List(w, ops, len(ops))
}

// CancelOperation отменяет активную операцию.
// POST /api/v1/operations/{id}/cancel
func (h *Handler) CancelOperation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		BadRequest(w, "operation id is required")
		return
	}

	cancelled := h.router.CancelOperation(id)
	if !cancelled {
		NotFound(w, "operation not found or already finished")
		return
	}

	if h.hub != nil {
		h.hub.Publish("operation_cancelled", map[string]any{"operation_id": id})
	}

	Success(w, CancelOperationResponse{OperationID: id, Cancelled: true})
}

// DetectCapabilities возвращает профиль выполнения метода.
// POST /api/v1/capabilities/detect
func (h *Handler) DetectCapabilities(w http.ResponseWriter, r *http.Request) {
	var req DetectCapabilitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.MethodName == "" {
		BadRequest(w, "method_name is required")
		return
	}

	caps := h.router.DetectCapabilities(req.MethodName, req.RequestType, req.ResponseType, req.IsStreaming)
	Success(w, caps)
}
