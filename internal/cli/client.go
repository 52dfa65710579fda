package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ProjectResponse — проект из API.
type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// FileResponse — файл из API.
type FileResponse struct {
	ID               string `json:"id"`
	ProjectID        string `json:"project_id"`
	Name             string `json:"name"`
	DatasetType      int    `json:"dataset_type"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	CreatedAt        string `json:"created_at"`
}

// DatasetResponse — dataset из API.
type DatasetResponse struct {
	ID             string            `json:"id"`
	FileID         string            `json:"file_id"`
	TotalRows      int               `json:"total_rows"`
	ColumnMappings map[string]string `json:"column_mappings,omitempty"`
	CreatedAt      string            `json:"created_at"`
	Metrics        *MetricsResponse  `json:"metrics,omitempty"`
}

// MetricsResponse — метрики выполнения из API.
type MetricsResponse struct {
	ProcessingTimeMs        int64   `json:"processing_time_ms"`
	PeakMemoryMB            float64 `json:"peak_memory_mb"`
	TotalItemsProcessed     int     `json:"total_items_processed"`
	AverageSpeedItemsPerSec int     `json:"average_speed_items_per_sec"`
	ChunksProcessed         int     `json:"chunks_processed,omitempty"`
	CacheHits               int     `json:"cache_hits,omitempty"`
}

// ColumnStatsResponse — статистика колонки из API.
type ColumnStatsResponse struct {
	ColumnName  string   `json:"column_name"`
	ColumnType  string   `json:"column_type"`
	Count       int      `json:"count"`
	Mean        *float64 `json:"mean,omitempty"`
	Std         *float64 `json:"std,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	NullCount   int      `json:"null_count"`
	UniqueCount int      `json:"unique_count"`
}

// CapabilitiesResponse — профиль выполнения метода из API.
type CapabilitiesResponse struct {
	SupportsWorkerThread bool   `json:"supports_worker_thread"`
	SupportsStreaming    bool   `json:"supports_streaming"`
	SupportsProgress     bool   `json:"supports_progress"`
	SupportsCancellation bool   `json:"supports_cancellation"`
	RecommendedChunkSize int    `json:"recommended_chunk_size,omitempty"`
	MemoryCategory       string `json:"memory_category"`
}

// CancelResponse — результат отмены операции.
type CancelResponse struct {
	OperationID string `json:"operation_id"`
	Cancelled   bool   `json:"cancelled"`
}

// --- Request types ---

// UpdateProjectRequest — обновление проекта.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ProcessRequest — обработка файла в dataset.
type ProcessRequest struct {
	ColumnMappings  map[string]string `json:"column_mappings,omitempty"`
	UseWorkerThread *bool             `json:"use_worker_thread,omitempty"`
	MemoryLimitMB   int               `json:"memory_limit_mb,omitempty"`
}

// BatchRequest — запрос columnar данных.
type BatchRequest struct {
	MaxPoints       int   `json:"max_points,omitempty"`
	Resolution      int   `json:"resolution,omitempty"`
	UseWorkerThread *bool `json:"use_worker_thread,omitempty"`
	MemoryLimitMB   int   `json:"memory_limit_mb,omitempty"`
}

// DetectRequest — определение capabilities метода.
type DetectRequest struct {
	MethodName   string `json:"method_name"`
	RequestType  string `json:"request_type,omitempty"`
	ResponseType string `json:"response_type,omitempty"`
	IsStreaming  bool   `json:"is_streaming,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Datalens API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// --- Projects ---

// ListProjects возвращает проекты.
func (c *Client) ListProjects(limit, offset int) ([]ProjectResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", offset))
	}

	var projects []ProjectResponse
	err := c.list("/api/v1/projects", params, &projects)
	return projects, err
}

// CreateProject создаёт новый проект.
func (c *Client) CreateProject(name, description string) (*ProjectResponse, error) {
	body := map[string]string{"name": name, "description": description}
	var project ProjectResponse
	err := c.post("/api/v1/projects", body, &project)
	return &project, err
}

// GetProject возвращает проект по ID.
func (c *Client) GetProject(id string) (*ProjectResponse, error) {
	var project ProjectResponse
	err := c.get("/api/v1/projects/"+id, &project)
	return &project, err
}

// UpdateProject обновляет проект.
func (c *Client) UpdateProject(id string, req UpdateProjectRequest) (*ProjectResponse, error) {
	var project ProjectResponse
	err := c.put("/api/v1/projects/"+id, req, &project)
	return &project, err
}

// DeleteProject удаляет проект.
func (c *Client) DeleteProject(id string) error {
	return c.delete("/api/v1/projects/" + id)
}

// --- Files ---

// ListFiles возвращает файлы проекта.
func (c *Client) ListFiles(projectID string) ([]FileResponse, error) {
	var files []FileResponse
	err := c.list("/api/v1/projects/"+projectID+"/files", nil, &files)
	return files, err
}

// UploadFile загружает локальный файл в проект.
func (c *Client) UploadFile(projectID, path, datasetType string) (*FileResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if datasetType != "" {
		mw.WriteField("dataset_type", datasetType)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/projects/"+projectID+"/files", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var file FileResponse
	if err := json.Unmarshal(dr.Data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile удаляет файл.
func (c *Client) DeleteFile(id string) error {
	return c.delete("/api/v1/files/" + id)
}

// --- Datasets ---

// ProcessDataset запускает обработку файла в dataset.
func (c *Client) ProcessDataset(fileID string, req ProcessRequest) (*DatasetResponse, error) {
	var ds DatasetResponse
	err := c.post("/api/v1/files/"+fileID+"/process", req, &ds)
	return &ds, err
}

// AnalyzeFile возвращает колонки и авто-маппинг CSV файла.
func (c *Client) AnalyzeFile(fileID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.post("/api/v1/files/"+fileID+"/analyze", nil, &raw)
	return raw, err
}

// GetDataset возвращает dataset по ID.
func (c *Client) GetDataset(id string) (*DatasetResponse, error) {
	var ds DatasetResponse
	err := c.get("/api/v1/datasets/"+id, &ds)
	return &ds, err
}

// GetDatasetRows возвращает страницу строк dataset.
func (c *Client) GetDatasetRows(id string, limit, offset int) ([]map[string]any, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", offset))
	}

	var rows []map[string]any
	err := c.list("/api/v1/datasets/"+id+"/rows", params, &rows)
	return rows, err
}

// GetDatasetStats возвращает статистику колонок dataset.
func (c *Client) GetDatasetStats(id string) ([]ColumnStatsResponse, error) {
	var stats []ColumnStatsResponse
	err := c.list("/api/v1/datasets/"+id+"/stats", nil, &stats)
	return stats, err
}

// --- Operations ---

// ListOperations возвращает ID активных операций.
func (c *Client) ListOperations() ([]string, error) {
	var ops []string
	err := c.list("/api/v1/operations", nil, &ops)
	return ops, err
}

// CancelOperation отменяет активную операцию.
func (c *Client) CancelOperation(id string) (*CancelResponse, error) {
	var result CancelResponse
	err := c.post("/api/v1/operations/"+id+"/cancel", nil, &result)
	return &result, err
}

// DetectCapabilities возвращает профиль выполнения метода.
func (c *Client) DetectCapabilities(req DetectRequest) (*CapabilitiesResponse, error) {
	var caps CapabilitiesResponse
	err := c.post("/api/v1/capabilities/detect", req, &caps)
	return &caps, err
}

// --- Batch data ---

// GetBatchData возвращает columnar данные одним ответом (сырой JSON).
func (c *Client) GetBatchData(req BatchRequest) (json.RawMessage, error) {
	resp, err := c.do(http.MethodPost, "/api/v1/data/batch", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

// StreamBatchData читает поток NDJSON chunks, вызывая onLine на
// каждую строку. Блокируется до конца потока.
func (c *Client) StreamBatchData(req BatchRequest, onLine func(json.RawMessage)) error {
	resp, err := c.do(http.MethodPost, "/api/v1/data/batch/stream", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		onLine(json.RawMessage(append([]byte(nil), line...)))
	}
	return scanner.Err()
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
