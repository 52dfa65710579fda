package router

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Datalens/internal/domain"
	"github.com/shaiso/Datalens/internal/estimate"
)

// Маленький запрос без явного override уходит на inline path:
// executor вызывается ровно один раз, registry не затрагивается.
func TestExecuteMethod_InlinePath(t *testing.T) {
	r := New(Config{})

	var inlineCalls, streamCalls atomic.Int32

	inline := func(ctx context.Context, req map[string]any) (any, error) {
		inlineCalls.Add(1)
		if len(r.ActiveOperations()) != 0 {
			t.Error("inline path must not touch the registry")
		}
		return map[string]any{"rows": 50}, nil
	}
	streaming := func(ctx context.Context, req map[string]any, onData func(map[string]any)) ([]any, error) {
		streamCalls.Add(1)
		return nil, nil
	}

	result, err := r.ExecuteMethod(context.Background(), "GetProject",
		map[string]any{"limit": 50}, inline, streaming, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inlineCalls.Load() != 1 {
		t.Errorf("expected exactly 1 inline call, got %d", inlineCalls.Load())
	}
	if streamCalls.Load() != 0 {
		t.Error("streaming executor must not be called on inline path")
	}
	if result.Cancelled {
		t.Error("unexpected cancelled flag")
	}
	if result.Metrics.TotalItemsProcessed != 50 {
		t.Errorf("expected 50 items, got %d", result.Metrics.TotalItemsProcessed)
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("registry must be empty after inline execution")
	}
}

// Явный UseWorker=false прижимает к inline path даже тяжёлый запрос.
func TestExecuteMethod_ExplicitInlineOverride(t *testing.T) {
	r := New(Config{})

	called := false
	inline := func(ctx context.Context, req map[string]any) (any, error) {
		called = true
		if len(r.ActiveOperations()) != 0 {
			t.Error("registry must stay empty with UseWorker=false")
		}
		return "ok", nil
	}

	_, err := r.ExecuteMethod(context.Background(), "GetBatchDataColumnar",
		map[string]any{"max_points": 5000000}, inline, nil,
		&ExecuteOptions{UseWorker: UseWorkerThread(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inline executor was not called")
	}
}

// Поднятый лимит памяти — сигнал авто-решению уйти на worker path.
func TestExecuteMethod_MemoryLimitAutoRoute(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	var sawActive bool
	inline := func(ctx context.Context, req map[string]any) (any, error) {
		sawActive = len(r.ActiveOperations()) == 1
		return "ok", nil
	}

	result, err := r.ExecuteMethod(context.Background(), "ProcessDataset",
		map[string]any{"count": 10}, inline, nil,
		&ExecuteOptions{MemoryLimitMB: 1024})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sawActive {
		t.Error("expected operation registered during worker-path execution")
	}
	if result.Metrics.ChunksProcessed != 1 {
		t.Errorf("single shot posts exactly one descriptor chunk, got %d", result.Metrics.ChunksProcessed)
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("registry must be empty after completion")
	}
}

// Worker path: операция видна в ActiveOperations во время выполнения
// и снимается при любом исходе.
func TestExecuteMethod_WorkerPathRegistryLifecycle(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	var activeDuring []string
	inline := func(ctx context.Context, req map[string]any) (any, error) {
		activeDuring = r.ActiveOperations()
		return map[string]any{"done": true}, nil
	}

	result, err := r.ExecuteMethod(context.Background(), "ProcessDataset",
		map[string]any{"count": 500}, inline, nil,
		&ExecuteOptions{UseWorker: UseWorkerThread(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(activeDuring) != 1 {
		t.Fatalf("expected 1 active operation during execution, got %d", len(activeDuring))
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("registry leaked after success")
	}
	if result.Data == nil {
		t.Error("expected data in result")
	}
}

// Ошибка executor'а на worker path пробрасывается как есть,
// registry всё равно очищается.
func TestExecuteMethod_WorkerPathFailure(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	boom := errors.New("executor exploded")
	inline := func(ctx context.Context, req map[string]any) (any, error) {
		return nil, boom
	}

	_, err := r.ExecuteMethod(context.Background(), "ProcessDataset",
		map[string]any{}, inline, nil,
		&ExecuteOptions{UseWorker: UseWorkerThread(true)})

	if !errors.Is(err, boom) {
		t.Errorf("expected original error, got %v", err)
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("registry leaked after failure")
	}
}

// Ошибка executor'а на inline path тоже пробрасывается без retry.
func TestExecuteMethod_InlineFailure(t *testing.T) {
	r := New(Config{})

	boom := errors.New("bad request shape")
	inline := func(ctx context.Context, req map[string]any) (any, error) {
		return nil, boom
	}

	_, err := r.ExecuteMethod(context.Background(), "GetProject",
		map[string]any{}, inline, nil, nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected original error, got %v", err)
	}
}

// End-to-end streaming сценарий: тяжёлый запрос уходит на worker path
// автоматически, streaming executor отдаёт chunks, caller получает
// каждый chunk, метрики — сумма оценок chunks.
func TestExecuteMethod_StreamingEndToEnd(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	var inlineCalls, chunkCalls atomic.Int32
	streamCalled := false

	inline := func(ctx context.Context, req map[string]any) (any, error) {
		inlineCalls.Add(1)
		return nil, nil
	}
	streaming := func(ctx context.Context, req map[string]any, onData func(map[string]any)) ([]any, error) {
		streamCalled = true
		for i := 0; i < 4; i++ {
			onData(map[string]any{"points_in_chunk": 50000, "chunk_number": i})
		}
		return []any{"chunk-a", "chunk-b", "chunk-c", "chunk-d"}, nil
	}

	var progressEvents atomic.Int32
	result, err := r.ExecuteMethod(context.Background(), "GetBatchDataStreamed",
		map[string]any{"max_points": 200000}, inline, streaming,
		&ExecuteOptions{
			OnChunk:    func(chunk map[string]any) { chunkCalls.Add(1) },
			OnProgress: func(p domain.Progress) { progressEvents.Add(1) },
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !streamCalled {
		t.Error("streaming executor was not called")
	}
	if inlineCalls.Load() != 0 {
		t.Error("inline executor must not be called on chunking path")
	}
	if chunkCalls.Load() != 4 {
		t.Errorf("expected OnChunk for each of 4 chunks, got %d", chunkCalls.Load())
	}
	// сумма оценок chunks: 4 × 50000
	if result.Metrics.TotalItemsProcessed != 200000 {
		t.Errorf("expected 200000 items, got %d", result.Metrics.TotalItemsProcessed)
	}
	if result.Metrics.ChunksProcessed != 4 {
		t.Errorf("expected 4 chunks processed, got %d", result.Metrics.ChunksProcessed)
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("registry leaked after streaming execution")
	}
}

// Отмена во время chunking: результат с Cancelled=true, без ошибки,
// registry чист.
func TestExecuteMethod_CancelDuringChunking(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	inline := func(ctx context.Context, req map[string]any) (any, error) {
		return nil, nil
	}
	streaming := func(ctx context.Context, req map[string]any, onData func(map[string]any)) ([]any, error) {
		onData(map[string]any{"points_in_chunk": 1000, "chunk_number": 0})

		// отмена между chunks — как из другой части приложения
		ids := r.ActiveOperations()
		if len(ids) != 1 {
			t.Fatalf("expected 1 active operation, got %d", len(ids))
		}
		if !r.CancelOperation(ids[0]) {
			t.Fatal("cancel failed")
		}

		onData(map[string]any{"points_in_chunk": 1000, "chunk_number": 1})
		return nil, nil
	}

	result, err := r.ExecuteMethod(context.Background(), "GetBatchDataStreamed",
		map[string]any{"max_points": 200000}, inline, streaming,
		&ExecuteOptions{OnChunk: func(chunk map[string]any) {}})
	if err != nil {
		t.Fatalf("cancellation must not surface as error, got %v", err)
	}

	if !result.Cancelled {
		t.Error("expected cancelled result")
	}
	if result.Data != nil {
		t.Error("cancelled result must carry no data")
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("registry leaked after cancellation")
	}
}

// Отмена single-shot операции через operation context.
func TestExecuteMethod_CancelSingleShot(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	started := make(chan struct{})
	inline := func(ctx context.Context, req map[string]any) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	done := make(chan struct{})
	var result *ExecutionResult
	var execErr error
	go func() {
		defer close(done)
		result, execErr = r.ExecuteMethod(context.Background(), "ProcessDataset",
			map[string]any{"count": 5}, inline, nil,
			&ExecuteOptions{UseWorker: UseWorkerThread(true)})
	}()

	<-started
	ids := r.ActiveOperations()
	if len(ids) != 1 {
		t.Fatalf("expected 1 active operation, got %d", len(ids))
	}
	if !r.CancelOperation(ids[0]) {
		t.Fatal("cancel failed")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("execution did not finish after cancel")
	}

	if execErr != nil {
		t.Fatalf("cancellation must not surface as error, got %v", execErr)
	}
	if !result.Cancelled {
		t.Error("expected cancelled result")
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("registry leaked after cancellation")
	}
}

// Progress события нормализованы: проценты в [0,100], счётчики
// подставлены, скорость и ETA досчитаны.
func TestExecuteMethod_ProgressNormalization(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	var events []domain.Progress

	inline := func(ctx context.Context, req map[string]any) (any, error) { return nil, nil }
	streaming := func(ctx context.Context, req map[string]any, onData func(map[string]any)) ([]any, error) {
		onData(map[string]any{"points_in_chunk": 100000, "chunk_number": 0})
		onData(map[string]any{"points_in_chunk": 100000, "chunk_number": 1})
		return []any{"a", "b"}, nil
	}

	_, err := r.ExecuteMethod(context.Background(), "GetBatchDataStreamed",
		map[string]any{"max_points": 200000}, inline, streaming,
		&ExecuteOptions{
			OnChunk: func(chunk map[string]any) {},
			OnProgress: func(p domain.Progress) {
				events = append(events, p)
			},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("expected progress events")
	}
	for i, e := range events {
		if e.Percentage < 0 || e.Percentage > 100 {
			t.Errorf("event %d: percentage out of range: %f", i, e.Percentage)
		}
		if e.TotalItems != 200000 {
			t.Errorf("event %d: expected total 200000, got %d", i, e.TotalItems)
		}
		if e.EstimatedTimeRemainingSec < 0 {
			t.Errorf("event %d: negative ETA", i)
		}
	}
	last := events[len(events)-1]
	if last.ProcessedItems != 200000 {
		t.Errorf("expected 200000 processed in last event, got %d", last.ProcessedItems)
	}
}

// Cleanup очищает registry и отпускает processor; router
// остаётся работоспособным.
func TestRouter_Cleanup(t *testing.T) {
	r := New(Config{})

	inline := func(ctx context.Context, req map[string]any) (any, error) { return "ok", nil }

	// прогреваем processor
	if _, err := r.ExecuteMethod(context.Background(), "ProcessDataset",
		map[string]any{}, inline, nil,
		&ExecuteOptions{UseWorker: UseWorkerThread(true)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Cleanup()

	if len(r.ActiveOperations()) != 0 {
		t.Error("registry not empty after cleanup")
	}

	// processor пересоздаётся лениво
	if _, err := r.ExecuteMethod(context.Background(), "ProcessDataset",
		map[string]any{}, inline, nil,
		&ExecuteOptions{UseWorker: UseWorkerThread(true)}); err != nil {
		t.Fatalf("router unusable after cleanup: %v", err)
	}
}

func TestExecuteMethod_NilInline(t *testing.T) {
	r := New(Config{})

	_, err := r.ExecuteMethod(context.Background(), "GetProject", nil, nil, nil, nil)
	if !errors.Is(err, ErrNoExecutor) {
		t.Errorf("expected ErrNoExecutor, got %v", err)
	}
}

// DetectCapabilities — без side effects.
func TestRouter_DetectCapabilities(t *testing.T) {
	r := New(Config{})

	caps := r.DetectCapabilities("GetBatchDataColumnarStreamed", "GetBatchDataRequest", "ColumnarDataChunk", true)
	if !caps.SupportsWorkerThread || !caps.SupportsCancellation {
		t.Error("streamed batch method must support worker thread and cancellation")
	}
	if len(r.ActiveOperations()) != 0 {
		t.Error("capability detection must not mutate the registry")
	}

	again := r.DetectCapabilities("GetBatchDataColumnarStreamed", "GetBatchDataRequest", "ColumnarDataChunk", true)
	if caps != again {
		t.Error("capability detection is not idempotent")
	}
}

// Порог авто-решения: ровно 100000 остаётся inline, выше — worker.
func TestExecuteMethod_AutoRouteThreshold(t *testing.T) {
	r := New(Config{})
	defer r.Cleanup()

	atThreshold := estimate.ItemCount(map[string]any{"max_points": 100000})
	if atThreshold != 100000 {
		t.Fatalf("sanity: estimate broken, got %d", atThreshold)
	}

	var registryTouched bool
	inline := func(ctx context.Context, req map[string]any) (any, error) {
		if len(r.ActiveOperations()) != 0 {
			registryTouched = true
		}
		return "ok", nil
	}

	if _, err := r.ExecuteMethod(context.Background(), "GetData",
		map[string]any{"max_points": 100000}, inline, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if registryTouched {
		t.Error("estimate of exactly 100000 must stay inline")
	}

	if _, err := r.ExecuteMethod(context.Background(), "GetData",
		map[string]any{"max_points": 100001}, inline, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !registryTouched {
		t.Error("estimate above 100000 must take the worker path")
	}
}
