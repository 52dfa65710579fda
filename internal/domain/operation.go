package domain

// OperationPhase — фаза выполнения операции в execution router.
//
// Жизненный цикл:
//
//	STARTED → CHUNKING   → FINALIZING → COMPLETED
//	        ↘ SINGLE_SHOT ↗           ↘ CANCELLED
//	                                  ↘ FAILED
type OperationPhase string

const (
	// PhaseStarted — операция зарегистрирована, worker session создана.
	PhaseStarted OperationPhase = "STARTED"

	// PhaseChunking — streaming executor отдаёт chunks.
	PhaseChunking OperationPhase = "CHUNKING"

	// PhaseSingleShot — операция выполняется одним вызовом inline executor.
	PhaseSingleShot OperationPhase = "SINGLE_SHOT"

	// PhaseFinalizing — ожидание finalize от worker processor.
	PhaseFinalizing OperationPhase = "FINALIZING"

	// PhaseCompleted — операция успешно завершена.
	PhaseCompleted OperationPhase = "COMPLETED"

	// PhaseCancelled — операция отменена пользователем.
	PhaseCancelled OperationPhase = "CANCELLED"

	// PhaseFailed — операция завершилась с ошибкой.
	PhaseFailed OperationPhase = "FAILED"
)

// IsTerminal возвращает true, если фаза финальная.
func (p OperationPhase) IsTerminal() bool {
	switch p {
	case PhaseCompleted, PhaseCancelled, PhaseFailed:
		return true
	default:
		return false
	}
}

// OperationDescriptor идентифицирует один вызов метода.
type OperationDescriptor struct {
	// ID — уникальный идентификатор операции.
	// Формат: "<method>-<наносекунды>-<случайный суффикс>".
	// Никогда не переиспользуется в пределах жизни процесса.
	ID string `json:"id"`

	// MethodName — имя вызываемого метода (например, "GetBatchDataColumnarStreamed").
	MethodName string `json:"method_name"`

	// RequestType — имя типа запроса (например, "GetBatchDataRequest").
	RequestType string `json:"request_type"`

	// ResponseType — имя типа ответа.
	ResponseType string `json:"response_type"`

	// IsStreaming — метод отдаёт ответ потоком chunks.
	IsStreaming bool `json:"is_streaming"`
}

// MemoryCategory — категория потребления памяти метода.
type MemoryCategory string

const (
	// MemoryLow — лёгкие методы (CRUD, метаданные).
	MemoryLow MemoryCategory = "low"

	// MemoryMedium — аналитика и обработка среднего объёма.
	MemoryMedium MemoryCategory = "medium"

	// MemoryHigh — batch/bulk и streaming методы.
	MemoryHigh MemoryCategory = "high"

	// MemoryUltra — генерация данных с max_points (самые тяжёлые).
	MemoryUltra MemoryCategory = "ultra"
)

// Capabilities — профиль выполнения метода, выведенный эвристикой.
//
// Capabilities вычисляются заново при каждом запросе — это чистая
// функция от входов, нигде не персистится.
type Capabilities struct {
	// SupportsWorkerThread — метод может быть выгружен в worker.
	SupportsWorkerThread bool `json:"supports_worker_thread"`

	// SupportsStreaming — метод отдаёт данные chunks.
	SupportsStreaming bool `json:"supports_streaming"`

	// SupportsProgress — по методу возможны progress события.
	SupportsProgress bool `json:"supports_progress"`

	// SupportsCancellation — метод можно отменить.
	SupportsCancellation bool `json:"supports_cancellation"`

	// RecommendedChunkSize — рекомендуемый размер chunk в точках.
	// 0 для категории low — chunking не рекомендуется.
	RecommendedChunkSize int `json:"recommended_chunk_size,omitempty"`

	// MemoryCategory — категория потребления памяти.
	MemoryCategory MemoryCategory `json:"memory_category"`
}

// Progress — нормализованное событие прогресса операции.
type Progress struct {
	// Percentage — процент выполнения, всегда в [0, 100].
	Percentage float64 `json:"percentage"`

	// Phase — текущая фаза выполнения.
	Phase string `json:"phase"`

	// ProcessedItems — обработано элементов.
	ProcessedItems int `json:"processed_items"`

	// TotalItems — всего элементов (оценка).
	TotalItems int `json:"total_items"`

	// EstimatedTimeRemainingSec — оценка оставшегося времени (линейная
	// экстраполяция), 0 пока percentage == 0.
	EstimatedTimeRemainingSec float64 `json:"estimated_time_remaining_sec"`

	// CurrentChunk — номер текущего chunk (если известен).
	CurrentChunk int `json:"current_chunk,omitempty"`

	// TotalChunks — всего chunks (если известно).
	TotalChunks int `json:"total_chunks,omitempty"`

	// SpeedItemsPerSec — скорость обработки.
	SpeedItemsPerSec int `json:"speed_items_per_sec"`

	// MemoryUsageMB — потребление памяти worker'ом, если он его сообщил.
	MemoryUsageMB float64 `json:"memory_usage_mb,omitempty"`
}

// ExecutionMetrics — итоговые метрики выполнения операции.
type ExecutionMetrics struct {
	// ProcessingTimeMs — полное время выполнения.
	ProcessingTimeMs int64 `json:"processing_time_ms"`

	// PeakMemoryMB — максимум памяти из progress событий.
	PeakMemoryMB float64 `json:"peak_memory_mb"`

	// TotalItemsProcessed — всего обработано элементов.
	TotalItemsProcessed int `json:"total_items_processed"`

	// AverageSpeedItemsPerSec — средняя скорость.
	AverageSpeedItemsPerSec int `json:"average_speed_items_per_sec"`

	// ChunksProcessed — количество chunks (worker path).
	ChunksProcessed int `json:"chunks_processed,omitempty"`

	// CacheHits — попадания в кэш worker processor'а.
	CacheHits int `json:"cache_hits,omitempty"`
}
