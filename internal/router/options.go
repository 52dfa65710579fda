package router

import (
	"context"

	"github.com/shaiso/Datalens/internal/domain"
)

// Пороги авто-решения о worker path.
const (
	// DefaultMemoryLimitMB — лимит памяти по умолчанию.
	DefaultMemoryLimitMB = 256

	// autoRouteItemThreshold — оценка элементов, выше которой
	// запрос уходит на worker path без явного указания.
	autoRouteItemThreshold = 100000
)

// InlineExecutor выполняет запрос одним вызовом.
// Поставляется caller'ом на каждый метод, для router'а непрозрачен.
type InlineExecutor func(ctx context.Context, request map[string]any) (any, error)

// StreamingExecutor выполняет запрос потоком chunks.
// Обязан вызывать onData на каждый логический chunk до возврата.
type StreamingExecutor func(ctx context.Context, request map[string]any, onData func(chunk map[string]any)) ([]any, error)

// ExecuteOptions — опции одного вызова ExecuteMethod.
type ExecuteOptions struct {
	// UseWorker — явный выбор пути выполнения.
	// nil — авто-решение по оценке стоимости.
	UseWorker *bool

	// MemoryLimitMB — лимит памяти в мегабайтах.
	// 0 — DefaultMemoryLimitMB. Значение выше default — сигнал
	// авто-решению, что caller ожидает тяжёлую операцию.
	MemoryLimitMB int

	// OnProgress — callback нормализованных progress событий.
	OnProgress func(domain.Progress)

	// OnChunk — callback на каждый chunk. Вместе со streaming
	// executor'ом включает CHUNKING путь.
	OnChunk func(chunk map[string]any)
}

// memoryLimit возвращает лимит памяти с учётом default.
func (o *ExecuteOptions) memoryLimit() int {
	if o.MemoryLimitMB <= 0 {
		return DefaultMemoryLimitMB
	}
	return o.MemoryLimitMB
}

// ExecutionResult — единый конверт результата выполнения.
type ExecutionResult struct {
	// Data — результат executor'а. nil при отмене.
	Data any `json:"data"`

	// Cancelled — операция отменена. Данных нет, но это не ошибка.
	Cancelled bool `json:"cancelled,omitempty"`

	// Metrics — метрики выполнения.
	Metrics domain.ExecutionMetrics `json:"metrics"`
}

// UseWorkerThread — помощник для явного выбора пути.
func UseWorkerThread(v bool) *bool {
	return &v
}
