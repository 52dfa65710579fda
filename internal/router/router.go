package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Datalens/internal/capability"
	"github.com/shaiso/Datalens/internal/domain"
	"github.com/shaiso/Datalens/internal/estimate"
	"github.com/shaiso/Datalens/internal/telemetry"
	"github.com/shaiso/Datalens/internal/worker"
)

// Router — адаптивный execution router.
//
// Владеет operation registry и (лениво) worker processor'ом.
// Создаётся через New(cfg Config), глобального экземпляра нет.
type Router struct {
	classifier capability.Classifier
	registry   *Registry
	logger     *slog.Logger

	// Worker processor создаётся при первом worker-path вызове
	// и разделяется всеми последующими операциями.
	procMu    sync.Mutex
	processor *worker.Processor
}

// Config — конфигурация Router.
type Config struct {
	// Classifier — стратегия классификации методов
	// (опционально; если nil — эвристический capability.Detector).
	Classifier capability.Classifier

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Router.
func New(cfg Config) *Router {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = capability.NewDetector()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		classifier: classifier,
		registry:   NewRegistry(),
		logger:     logger,
	}
}

// DetectCapabilities классифицирует метод по профилю выполнения.
// Детерминирована и без side effects — registry не трогается.
func (r *Router) DetectCapabilities(methodName, requestType, responseType string, isStreaming bool) domain.Capabilities {
	return r.classifier.Detect(methodName, requestType, responseType, isStreaming)
}

// CancelOperation отменяет worker-path операцию по id.
// Неизвестный id — это false, не ошибка.
func (r *Router) CancelOperation(id string) bool {
	cancelled := r.registry.Cancel(id)
	if cancelled {
		r.logger.Info("operation cancelled", "operation_id", id)
	}
	return cancelled
}

// ActiveOperations возвращает id активных worker-path операций.
func (r *Router) ActiveOperations() []string {
	return r.registry.ListActive()
}

// Cleanup отменяет активные операции, очищает registry и
// освобождает worker processor. Следующий worker-path вызов
// создаст processor заново.
func (r *Router) Cleanup() {
	r.registry.Clear()

	r.procMu.Lock()
	proc := r.processor
	r.processor = nil
	r.procMu.Unlock()

	if proc != nil {
		proc.Close()
	}

	r.logger.Info("router cleaned up")
}

// ExecuteMethod выполняет вызов метода по выбранному пути.
//
// Решение:
//  1. opts.UseWorker задан явно — уважается как есть.
//  2. Иначе auto: worker path, если оценка элементов выше
//     autoRouteItemThreshold или лимит памяти поднят выше default.
//  3. Inline path — прямой вызов executor'а, минимальный overhead,
//     ни registry, ни processor не затрагиваются.
//
// Любая ошибка executor'а пробрасывается без изменений. Отмена —
// единственное исключение: возвращается результат с Cancelled=true.
func (r *Router) ExecuteMethod(
	ctx context.Context,
	methodName string,
	request map[string]any,
	inline InlineExecutor,
	streaming StreamingExecutor,
	opts *ExecuteOptions,
) (*ExecutionResult, error) {
	if inline == nil {
		return nil, ErrNoExecutor
	}
	if opts == nil {
		opts = &ExecuteOptions{}
	}

	estimatedItems := estimate.ItemCount(request)

	useWorker := estimatedItems > autoRouteItemThreshold || opts.memoryLimit() > DefaultMemoryLimitMB
	if opts.UseWorker != nil {
		useWorker = *opts.UseWorker
	}

	if !useWorker {
		return r.executeInline(ctx, methodName, request, inline, estimatedItems)
	}
	return r.executeWorkerPath(ctx, methodName, request, inline, streaming, opts, estimatedItems)
}

// executeInline — дешёвый общий путь: прямой вызов без регистрации.
func (r *Router) executeInline(
	ctx context.Context,
	methodName string,
	request map[string]any,
	inline InlineExecutor,
	estimatedItems int,
) (*ExecutionResult, error) {
	start := time.Now()

	data, err := inline(ctx, request)
	if err != nil {
		telemetry.OperationsTotal.WithLabelValues("inline", "failed").Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	telemetry.OperationsTotal.WithLabelValues("inline", "completed").Inc()
	telemetry.OperationDuration.WithLabelValues("inline").Observe(elapsed.Seconds())

	return &ExecutionResult{
		Data: data,
		Metrics: domain.ExecutionMetrics{
			ProcessingTimeMs:        elapsed.Milliseconds(),
			TotalItemsProcessed:     estimatedItems,
			AverageSpeedItemsPerSec: speedItemsPerSec(estimatedItems, elapsed),
		},
	}, nil
}

// operationHandle — cancel handle worker-path операции.
// Отменяет context executor'а и помечает worker session.
type operationHandle struct {
	once      sync.Once
	cancelCtx context.CancelFunc
	session   *worker.Session
}

func (h *operationHandle) Cancel() {
	h.once.Do(func() {
		h.session.Cancel()
		h.cancelCtx()
	})
}

// executeWorkerPath выполняет операцию через worker processor.
//
// STARTED: session + регистрация handle. CHUNKING или SINGLE_SHOT:
// выполнение. FINALIZING: finalize session, статистика. Снятие с
// registry — безусловное (defer), при любом исходе.
func (r *Router) executeWorkerPath(
	ctx context.Context,
	methodName string,
	request map[string]any,
	inline InlineExecutor,
	streaming StreamingExecutor,
	opts *ExecuteOptions,
	estimatedItems int,
) (*ExecutionResult, error) {
	processor := r.getProcessor()

	opID := newOperationID(methodName)
	logger := telemetry.WithOperationID(telemetry.WithMethod(r.logger, methodName), opID)

	tracker := newProgressTracker(estimatedItems, opts.OnProgress)

	session, err := processor.StartSession(opID, estimatedItems, tracker.fromWorker)
	if err != nil {
		return nil, fmt.Errorf("start worker session: %w", err)
	}

	opCtx, cancelCtx := context.WithCancel(ctx)
	defer cancelCtx()

	handle := &operationHandle{cancelCtx: cancelCtx, session: session}
	r.registry.Register(opID, handle)
	defer r.registry.Remove(opID)

	telemetry.ActiveOperations.Inc()
	defer telemetry.ActiveOperations.Dec()

	chunking := streaming != nil && opts.OnChunk != nil
	logger.Debug("worker path started",
		"estimated_items", estimatedItems,
		"chunking", chunking,
	)

	var (
		data    any
		execErr error
		postErr error
	)

	if chunking {
		// CHUNKING: post в session строго до OnChunk caller'а
		responses, err := streaming(opCtx, request, func(chunk map[string]any) {
			tracker.addItems(estimate.ChunkSize(chunk))
			if e := session.PostChunk(chunk); e != nil && postErr == nil {
				postErr = e
			}
			opts.OnChunk(chunk)
		})
		data, execErr = responses, err
	} else {
		// SINGLE_SHOT: descriptor chunk для телеметрии, затем
		// обычный inline вызов как одна единица работы
		descriptor := map[string]any{
			"method":          methodName,
			"single_shot":     true,
			"points_in_chunk": estimatedItems,
		}
		if e := session.PostChunk(descriptor); e != nil {
			postErr = e
		}
		data, execErr = inline(opCtx, request)
	}

	if execErr == nil {
		execErr = postErr
	}

	// FINALIZING: независимый context — session дообрабатывает
	// принятые chunks даже если opCtx уже отменён
	stats, finErr := session.Finalize(context.Background())

	elapsed := tracker.elapsed()
	metrics := r.buildMetrics(tracker, stats, estimatedItems, elapsed)

	if isCancelMarker(execErr) || isCancelMarker(finErr) {
		logger.Info("operation cancelled", "elapsed", elapsed)
		telemetry.OperationsTotal.WithLabelValues("worker", "cancelled").Inc()
		return &ExecutionResult{Cancelled: true, Metrics: metrics}, nil
	}

	if execErr != nil {
		logger.Error("operation failed", "error", execErr, "elapsed", elapsed)
		telemetry.OperationsTotal.WithLabelValues("worker", "failed").Inc()
		return nil, execErr
	}
	if finErr != nil {
		telemetry.OperationsTotal.WithLabelValues("worker", "failed").Inc()
		return nil, fmt.Errorf("finalize worker session: %w", finErr)
	}

	logger.Debug("operation completed",
		"elapsed", elapsed,
		"items", metrics.TotalItemsProcessed,
		"chunks", metrics.ChunksProcessed,
		"cache_hits", metrics.CacheHits,
	)
	telemetry.OperationsTotal.WithLabelValues("worker", "completed").Inc()
	telemetry.OperationDuration.WithLabelValues("worker").Observe(elapsed.Seconds())

	return &ExecutionResult{Data: data, Metrics: metrics}, nil
}

// buildMetrics собирает итоговые метрики операции.
func (r *Router) buildMetrics(
	tracker *progressTracker,
	stats *worker.Stats,
	estimatedItems int,
	elapsed time.Duration,
) domain.ExecutionMetrics {
	// сумма оценок chunks; для single shot счётчик пуст —
	// берём исходную оценку запроса
	totalItems := tracker.processed()
	if totalItems == 0 {
		totalItems = estimatedItems
	}

	peak := tracker.peak()
	metrics := domain.ExecutionMetrics{
		ProcessingTimeMs:        elapsed.Milliseconds(),
		TotalItemsProcessed:     totalItems,
		AverageSpeedItemsPerSec: speedItemsPerSec(totalItems, elapsed),
	}
	if stats != nil {
		metrics.ChunksProcessed = stats.ChunksProcessed
		metrics.CacheHits = stats.CacheHits
		if stats.PeakMemoryMB > peak {
			peak = stats.PeakMemoryMB
		}
	}
	metrics.PeakMemoryMB = peak
	return metrics
}

// getProcessor возвращает worker processor, создавая его лениво.
func (r *Router) getProcessor() *worker.Processor {
	r.procMu.Lock()
	defer r.procMu.Unlock()

	if r.processor == nil {
		r.processor = worker.NewProcessor(r.logger)
		r.logger.Debug("worker processor created")
	}
	return r.processor
}

// isCancelMarker распознаёт маркер отмены.
//
// Маркеры: worker.ErrCancelled от session и context.Canceled от
// executor'а, прервавшегося по отменённому operation context.
func isCancelMarker(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, worker.ErrCancelled) || errors.Is(err, context.Canceled)
}

// newOperationID генерирует уникальный id операции.
// Формат: метод + монотонные наносекунды + случайный суффикс.
func newOperationID(methodName string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%d-%s", methodName, time.Now().UnixNano(), suffix)
}
