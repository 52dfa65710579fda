package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shaiso/Datalens/internal/estimate"
	"github.com/shaiso/Datalens/internal/telemetry"
)

// Session — контекст обработки одной операции внутри Processor'а.
//
// Chunks обрабатываются последовательно в собственной горутине
// session, в порядке поступления. PostChunk и Cancel можно вызывать
// из разных горутин.
type Session struct {
	id         string
	processor  *Processor
	progress   ProgressFunc
	totalItems int

	chunks chan map[string]any
	done   chan struct{}

	cancelOnce sync.Once
	cancelCh   chan struct{}
	cancelled  atomic.Bool
	finalized  atomic.Bool

	statsMu sync.Mutex
	stats   Stats
}

// newSession создаёт session и запускает горутину-обработчик.
func newSession(p *Processor, operationID string, totalItems int, progress ProgressFunc) *Session {
	s := &Session{
		id:         operationID,
		processor:  p,
		progress:   progress,
		totalItems: totalItems,
		chunks:     make(chan map[string]any, defaultChunkBuffer),
		done:       make(chan struct{}),
		cancelCh:   make(chan struct{}),
	}

	go s.consume()

	return s
}

// ID возвращает operation id session.
func (s *Session) ID() string {
	return s.id
}

// PostChunk ставит chunk в очередь обработки.
//
// Возвращает ErrCancelled после Cancel() и ErrSessionClosed после
// Finalize(). При заполненном буфере блокирует до освобождения
// места — backpressure на caller'е.
func (s *Session) PostChunk(chunk map[string]any) error {
	if s.cancelled.Load() {
		return ErrCancelled
	}
	if s.finalized.Load() {
		return ErrSessionClosed
	}

	select {
	case s.chunks <- chunk:
		return nil
	case <-s.cancelCh:
		return ErrCancelled
	}
}

// Cancel помечает session отменённой.
//
// Кооперативно: уже принятые chunks дообрабатываются, следующий
// PostChunk или Finalize вернёт ErrCancelled.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() {
		s.cancelled.Store(true)
		close(s.cancelCh)
		s.processor.logger.Debug("worker session cancelled", "operation_id", s.id)
	})
}

// Cancelled возвращает true после Cancel().
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// Finalize закрывает session и дожидается обработки всех chunks.
//
// Возвращает итоговую статистику. Для отменённой session статистика
// возвращается вместе с ErrCancelled — router превращает это в
// результат с cancelled=true.
func (s *Session) Finalize(ctx context.Context) (*Stats, error) {
	if s.finalized.Swap(true) {
		return nil, ErrSessionClosed
	}

	close(s.chunks)
	defer s.processor.removeSession(s.id)

	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	stats := s.snapshot()

	if s.cancelled.Load() {
		return stats, ErrCancelled
	}
	return stats, nil
}

// consume — горутина-обработчик chunks.
func (s *Session) consume() {
	defer close(s.done)

	for chunk := range s.chunks {
		s.processChunk(chunk)
	}
}

// processChunk обрабатывает один chunk: сигнатура, кэш,
// статистика и progress событие.
func (s *Session) processChunk(chunk map[string]any) {
	items := estimate.ChunkSize(chunk)
	hit := s.processor.cacheSeen(chunkSignature(chunk))

	memMB := currentMemoryMB()

	s.statsMu.Lock()
	s.stats.ChunksProcessed++
	s.stats.ItemsProcessed += items
	if hit {
		s.stats.CacheHits++
	}
	if memMB > s.stats.PeakMemoryMB {
		s.stats.PeakMemoryMB = memMB
	}
	event := ProgressEvent{
		Phase:          "CHUNKING",
		ProcessedItems: s.stats.ItemsProcessed,
		TotalItems:     s.totalItems,
		CurrentChunk:   s.stats.ChunksProcessed,
		MemoryUsageMB:  memMB,
	}
	if s.totalItems > 0 {
		event.Percentage = float64(event.ProcessedItems) / float64(s.totalItems) * 100
	}
	s.statsMu.Unlock()

	telemetry.ChunksProcessed.Inc()

	if s.progress != nil {
		s.progress(event)
	}
}

// snapshot возвращает копию статистики.
func (s *Session) snapshot() *Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	stats := s.stats
	return &stats
}

// chunkSignature считает сигнатуру chunk для кэша.
// fmt печатает map с сортировкой ключей, поэтому сигнатура
// стабильна для одинакового содержимого.
func chunkSignature(chunk map[string]any) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v", chunk)
	return h.Sum64()
}

// currentMemoryMB возвращает текущий heap процесса в мегабайтах.
func currentMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / (1024 * 1024)
}
