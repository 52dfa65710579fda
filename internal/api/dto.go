package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Datalens/internal/domain"
	"github.com/shaiso/Datalens/internal/router"
)

// Project DTOs

// CreateProjectRequest — запрос на создание проекта.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest — запрос на обновление проекта.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ProjectResponse — ответ с проектом.
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectFromDomain конвертирует domain.Project в ProjectResponse.
func ProjectFromDomain(p domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// File DTOs

// FileResponse — ответ с метаданными файла (без содержимого).
type FileResponse struct {
	ID               uuid.UUID          `json:"id"`
	ProjectID        uuid.UUID          `json:"project_id"`
	Name             string             `json:"name"`
	DatasetType      domain.DatasetType `json:"dataset_type"`
	OriginalFilename string             `json:"original_filename"`
	FileSize         int64              `json:"file_size"`
	CreatedAt        time.Time          `json:"created_at"`
}

// FileFromDomain конвертирует domain.DatasetFile в FileResponse.
func FileFromDomain(f domain.DatasetFile) FileResponse {
	return FileResponse{
		ID:               f.ID,
		ProjectID:        f.ProjectID,
		Name:             f.Name,
		DatasetType:      f.DatasetType,
		OriginalFilename: f.OriginalFilename,
		FileSize:         f.FileSize,
		CreatedAt:        f.CreatedAt,
	}
}

// Dataset DTOs

// ProcessDatasetRequest — запрос на обработку файла в dataset.
type ProcessDatasetRequest struct {
	// ColumnMappings — явное соответствие осей колонкам.
	// Пустое — используется авто-маппинг анализатора.
	ColumnMappings map[string]string `json:"column_mappings,omitempty"`

	// UseWorkerThread — явный выбор пути выполнения (nil — авто).
	UseWorkerThread *bool `json:"use_worker_thread,omitempty"`

	// MemoryLimitMB — лимит памяти операции.
	MemoryLimitMB int `json:"memory_limit_mb,omitempty"`
}

// DatasetResponse — ответ с dataset.
type DatasetResponse struct {
	ID             uuid.UUID               `json:"id"`
	FileID         uuid.UUID               `json:"file_id"`
	TotalRows      int                     `json:"total_rows"`
	ColumnMappings map[string]string       `json:"column_mappings,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	Metrics        domain.ExecutionMetrics `json:"metrics,omitzero"`
}

// DatasetFromDomain конвертирует domain.Dataset в DatasetResponse.
func DatasetFromDomain(d domain.Dataset) DatasetResponse {
	return DatasetResponse{
		ID:             d.ID,
		FileID:         d.FileID,
		TotalRows:      d.TotalRows,
		ColumnMappings: d.ColumnMappings,
		CreatedAt:      d.CreatedAt,
	}
}

// Batch data DTOs

// BatchDataRequest — запрос columnar данных.
type BatchDataRequest struct {
	// MaxPoints — сколько точек сгенерировать.
	MaxPoints int `json:"max_points,omitempty"`

	// Resolution — разрешение сетки (точек на сторону).
	Resolution int `json:"resolution,omitempty"`

	// UseWorkerThread — явный выбор пути выполнения (nil — авто).
	UseWorkerThread *bool `json:"use_worker_thread,omitempty"`

	// MemoryLimitMB — лимит памяти операции.
	MemoryLimitMB int `json:"memory_limit_mb,omitempty"`
}

// toParams собирает запрос в форму, которую понимают estimator и
// executors (включая оценку стоимости по max_points).
func (r BatchDataRequest) toParams() map[string]any {
	params := map[string]any{}
	if r.MaxPoints > 0 {
		params["max_points"] = float64(r.MaxPoints)
	}
	if r.Resolution > 0 {
		params["resolution"] = float64(r.Resolution)
	}
	return params
}

// toOptions собирает router-опции запроса.
func (r BatchDataRequest) toOptions() *router.ExecuteOptions {
	return &router.ExecuteOptions{
		UseWorker:     r.UseWorkerThread,
		MemoryLimitMB: r.MemoryLimitMB,
	}
}

// Operation DTOs

// CancelOperationResponse — результат отмены операции.
type CancelOperationResponse struct {
	OperationID string `json:"operation_id"`
	Cancelled   bool   `json:"cancelled"`
}

// DetectCapabilitiesRequest — запрос определения capabilities метода.
type DetectCapabilitiesRequest struct {
	MethodName   string `json:"method_name"`
	RequestType  string `json:"request_type,omitempty"`
	ResponseType string `json:"response_type,omitempty"`
	IsStreaming  bool   `json:"is_streaming,omitempty"`
}
