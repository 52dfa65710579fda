package worker

import (
	"log/slog"
	"sync"

	"github.com/shaiso/Datalens/internal/telemetry"
)

// defaultChunkBuffer — размер буфера канала chunks одной session.
// Пока буфер не заполнен, PostChunk не блокирует caller'а.
const defaultChunkBuffer = 16

// ProgressEvent — сырое событие прогресса от session.
//
// Router нормализует его в domain.Progress: клампит проценты,
// подставляет собственные счётчики вместо нулевых полей,
// досчитывает ETA и скорость.
type ProgressEvent struct {
	// Percentage — процент выполнения, если session может его оценить.
	Percentage float64

	// Phase — текущая фаза обработки.
	Phase string

	// ProcessedItems — обработано элементов (0 — session не знает).
	ProcessedItems int

	// TotalItems — всего элементов (0 — session не знает).
	TotalItems int

	// CurrentChunk — номер обработанного chunk, начиная с 1.
	CurrentChunk int

	// TotalChunks — всего chunks, если известно.
	TotalChunks int

	// MemoryUsageMB — текущее потребление памяти процесса.
	MemoryUsageMB float64
}

// ProgressFunc — callback для progress событий session.
type ProgressFunc func(ProgressEvent)

// Stats — итоговая статистика session.
type Stats struct {
	// ChunksProcessed — обработано chunks.
	ChunksProcessed int `json:"chunks_processed"`

	// ItemsProcessed — обработано элементов суммарно.
	ItemsProcessed int `json:"items_processed"`

	// CacheHits — chunks, найденные в кэше сигнатур.
	CacheHits int `json:"cache_hits"`

	// PeakMemoryMB — максимум памяти за время session.
	PeakMemoryMB float64 `json:"peak_memory_mb"`
}

// Processor — фоновая единица выполнения, разделяемая операциями.
//
// Поддерживает конкурентные sessions, ключ — operation id.
type Processor struct {
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	// Кэш сигнатур обработанных chunks, общий для всех sessions.
	cacheMu sync.Mutex
	cache   map[uint64]struct{}
}

// NewProcessor создаёт Processor.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		sessions: make(map[string]*Session),
		cache:    make(map[uint64]struct{}),
	}
}

// StartSession открывает session для операции.
//
// totalItems — оценка общего количества элементов (для процентов),
// 0 если неизвестно. progress может быть nil.
func (p *Processor) StartSession(operationID string, totalItems int, progress ProgressFunc) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrProcessorClosed
	}
	if _, exists := p.sessions[operationID]; exists {
		return nil, ErrSessionExists
	}

	s := newSession(p, operationID, totalItems, progress)
	p.sessions[operationID] = s

	p.logger.Debug("worker session started",
		"operation_id", operationID,
		"total_items", totalItems,
	)

	return s, nil
}

// ActiveSessions возвращает количество открытых sessions.
func (p *Processor) ActiveSessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close отменяет все открытые sessions и останавливает Processor.
func (p *Processor) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	sessions := make([]*Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		sessions = append(sessions, s)
	}
	p.mu.Unlock()

	for _, s := range sessions {
		s.Cancel()
	}

	p.logger.Debug("worker processor closed", "cancelled_sessions", len(sessions))
}

// removeSession убирает session из реестра при финализации.
func (p *Processor) removeSession(operationID string) {
	p.mu.Lock()
	delete(p.sessions, operationID)
	p.mu.Unlock()
}

// cacheSeen проверяет сигнатуру chunk в кэше и запоминает её.
// Возвращает true при повторе (cache hit).
func (p *Processor) cacheSeen(signature uint64) bool {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()

	if _, ok := p.cache[signature]; ok {
		telemetry.CacheHits.Inc()
		return true
	}
	p.cache[signature] = struct{}{}
	return false
}
