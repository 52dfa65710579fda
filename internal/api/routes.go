package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Projects
	mux.Handle("GET /api/v1/projects", chain(http.HandlerFunc(h.ListProjects)))
	mux.Handle("POST /api/v1/projects", chain(http.HandlerFunc(h.CreateProject)))
	mux.Handle("GET /api/v1/projects/{id}", chain(http.HandlerFunc(h.GetProject)))
	mux.Handle("PUT /api/v1/projects/{id}", chain(http.HandlerFunc(h.UpdateProject)))
	mux.Handle("DELETE /api/v1/projects/{id}", chain(http.HandlerFunc(h.DeleteProject)))

	// Files
	mux.Handle("GET /api/v1/projects/{id}/files", chain(http.HandlerFunc(h.ListFiles)))
	mux.Handle("POST /api/v1/projects/{id}/files", chain(http.HandlerFunc(h.UploadFile)))
	mux.Handle("GET /api/v1/files/{id}", chain(http.HandlerFunc(h.GetFile)))
	mux.Handle("DELETE /api/v1/files/{id}", chain(http.HandlerFunc(h.DeleteFile)))

	// Datasets
	mux.Handle("POST /api/v1/files/{id}/process", chain(http.HandlerFunc(h.ProcessDataset)))
	mux.Handle("POST /api/v1/files/{id}/analyze", chain(http.HandlerFunc(h.AnalyzeFile)))
	mux.Handle("GET /api/v1/files/{id}/datasets", chain(http.HandlerFunc(h.ListDatasets)))
	mux.Handle("GET /api/v1/datasets/{id}", chain(http.HandlerFunc(h.GetDataset)))
	mux.Handle("GET /api/v1/datasets/{id}/rows", chain(http.HandlerFunc(h.GetDatasetRows)))
	mux.Handle("GET /api/v1/datasets/{id}/stats", chain(http.HandlerFunc(h.GetDatasetStats)))

	// Batch data (columnar)
	mux.Handle("POST /api/v1/data/batch", chain(http.HandlerFunc(h.GetBatchData)))
	mux.Handle("POST /api/v1/data/batch/stream", chain(http.HandlerFunc(h.GetBatchDataStreamed)))

	// Operations
	mux.Handle("GET /api/v1/operations", chain(http.HandlerFunc(h.ListOperations)))
	mux.Handle("POST /api/v1/operations/{id}/cancel", chain(http.HandlerFunc(h.CancelOperation)))
	mux.Handle("POST /api/v1/capabilities/detect", chain(http.HandlerFunc(h.DetectCapabilities)))

	// WebSocket подписка на progress события
	if h.hub != nil {
		mux.Handle("GET /ws", h.hub)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
}
