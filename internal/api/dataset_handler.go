package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Datalens/internal/dataset"
	"github.com/shaiso/Datalens/internal/domain"
	"github.com/shaiso/Datalens/internal/router"
)

// errUnexpectedResult — executor вернул результат неожиданного типа.
var errUnexpectedResult = errors.New("unexpected executor result type")

// processedDataset — результат inline executor'а ProcessDataset
// до персистенции.
type processedDataset struct {
	header  []string
	records [][]string
	mapping map[string]string
}

// ProcessDataset обрабатывает файл в dataset: парсинг, статистика,
// сохранение. Запрос проходит через execution router — большие файлы
// уходят на worker path с progress событиями.
// POST /api/v1/files/{id}/process
func (h *Handler) ProcessDataset(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid file id")
		return
	}

	var req ProcessDatasetRequest
	if r.Body != nil {
		// Тело опционально: пустое — авто-решение и авто-маппинг.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	file, err := h.fileRepo.GetByID(r.Context(), fileID)
	if HandleRepoError(w, h.logger, err, "file not found") {
		return
	}

	content := string(file.Content)
	params := map[string]any{
		"content": content,
		// Размер файла — прокси-оценка объёма до парсинга.
		"size": float64(len(content)),
	}

	inline := func(ctx context.Context, request map[string]any) (any, error) {
		raw, _ := request["content"].(string)

		header, records, err := dataset.ParseCSV(strings.NewReader(raw))
		if err != nil {
			return nil, err
		}

		mapping := req.ColumnMappings
		if len(mapping) == 0 {
			analysis, err := h.analyzer.AnalyzeCSV(strings.NewReader(raw), 0)
			if err != nil {
				return nil, err
			}
			mapping = analysis.AutoMapping
		}

		return &processedDataset{header: header, records: records, mapping: mapping}, nil
	}

	opts := &router.ExecuteOptions{
		UseWorker:     req.UseWorkerThread,
		MemoryLimitMB: req.MemoryLimitMB,
		OnProgress:    h.progressPublisher("ProcessDataset"),
	}

	result, err := h.router.ExecuteMethod(r.Context(), "ProcessDataset", params, inline, nil, opts)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}
	if result.Cancelled {
		Success(w, map[string]any{"cancelled": true})
		return
	}

	processed, ok := result.Data.(*processedDataset)
	if !ok {
		InternalError(w, h.logger, errUnexpectedResult)
		return
	}

	ds := &domain.Dataset{
		ID:             uuid.New(),
		FileID:         fileID,
		TotalRows:      len(processed.records),
		ColumnMappings: processed.mapping,
		CreatedAt:      time.Now(),
	}
	rows := dataset.RowsFromRecords(processed.header, processed.records)
	stats := dataset.ComputeColumnStats(ds.ID, processed.header, processed.records)

	if err := h.datasetRepo.Create(r.Context(), ds, rows, stats); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	resp := DatasetFromDomain(*ds)
	resp.Metrics = result.Metrics
	Created(w, resp)
}

// AnalyzeFile возвращает колонки и авто-маппинг CSV без обработки.
// POST /api/v1/files/{id}/analyze
func (h *Handler) AnalyzeFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid file id")
		return
	}

	file, err := h.fileRepo.GetByID(r.Context(), fileID)
	if HandleRepoError(w, h.logger, err, "file not found") {
		return
	}

	params := map[string]any{"content": string(file.Content)}

	result, err := h.router.ExecuteMethod(r.Context(), "AnalyzeCsv", params, h.analyzer.Execute, nil, nil)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, result.Data)
}

// ListDatasets возвращает datasets файла.
// GET /api/v1/files/{id}/datasets
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid file id")
		return
	}

	datasets, err := h.datasetRepo.ListByFile(r.Context(), fileID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]DatasetResponse, len(datasets))
	for i, d := range datasets {
		result[i] = DatasetFromDomain(d)
	}

	List(w, result, len(result))
}

// GetDataset возвращает dataset по ID.
// GET /api/v1/datasets/{id}
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid dataset id")
		return
	}

	ds, err := h.datasetRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "dataset not found") {
		return
	}

	Success(w, DatasetFromDomain(*ds))
}

// GetDatasetRows возвращает страницу строк dataset.
// GET /api/v1/datasets/{id}/rows?limit=&offset=
func (h *Handler) GetDatasetRows(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid dataset id")
		return
	}

	limit := queryInt(r, "limit", 1000)
	offset := queryInt(r, "offset", 0)

	rows, err := h.datasetRepo.GetRows(r.Context(), id, limit, offset)
	if HandleRepoError(w, h.logger, err, "dataset not found") {
		return
	}

	List(w, rows, len(rows))
}

// GetDatasetStats возвращает статистику колонок dataset.
// GET /api/v1/datasets/{id}/stats
func (h *Handler) GetDatasetStats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid dataset id")
		return
	}

	stats, err := h.datasetRepo.GetColumnStats(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "dataset not found") {
		return
	}

	List(w, stats, len(stats))
}

// GetBatchData возвращает columnar данные одним ответом.
// POST /api/v1/data/batch
func (h *Handler) GetBatchData(w http.ResponseWriter, r *http.Request) {
	var req BatchDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	opts := req.toOptions()
	opts.OnProgress = h.progressPublisher("GetBatchDataColumnar")

	result, err := h.router.ExecuteMethod(
		r.Context(), "GetBatchDataColumnar", req.toParams(),
		h.generator.Execute, nil, opts,
	)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}
	if result.Cancelled {
		Success(w, map[string]any{"cancelled": true})
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"data":    result.Data,
		"metrics": result.Metrics,
	})
}

// GetBatchDataStreamed возвращает columnar данные потоком chunks.
// Каждый chunk — одна NDJSON строка; последняя строка несёт метрики.
// POST /api/v1/data/batch/stream
func (h *Handler) GetBatchDataStreamed(w http.ResponseWriter, r *http.Request) {
	var req BatchDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	opts := req.toOptions()
	opts.OnProgress = h.progressPublisher("GetBatchDataColumnarStreamed")
	opts.OnChunk = func(chunk map[string]any) {
		if err := enc.Encode(chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	result, err := h.router.ExecuteMethod(
		r.Context(), "GetBatchDataColumnarStreamed", req.toParams(),
		h.generator.Execute, h.generator.ExecuteStreamed, opts,
	)
	if err != nil {
		// Заголовки уже ушли — ошибку тоже отдаём строкой потока.
		enc.Encode(map[string]any{"error": err.Error()})
		return
	}

	enc.Encode(map[string]any{
		"done":      true,
		"cancelled": result.Cancelled,
		"metrics":   result.Metrics,
	})
}

// progressPublisher возвращает OnProgress callback, транслирующий
// события операции в websocket hub.
func (h *Handler) progressPublisher(method string) func(domain.Progress) {
	if h.hub == nil {
		return nil
	}
	return func(p domain.Progress) {
		h.hub.Publish("progress", map[string]any{
			"method":                       method,
			"progress_percentage":          p.Percentage,
			"phase":                        p.Phase,
			"processed_items":              p.ProcessedItems,
			"total_items":                  p.TotalItems,
			"estimated_time_remaining_sec": p.EstimatedTimeRemainingSec,
			"speed_items_per_sec":          p.SpeedItemsPerSec,
			"memory_usage_mb":              p.MemoryUsageMB,
		})
	}
}
