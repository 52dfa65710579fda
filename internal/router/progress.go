package router

import (
	"math"
	"sync"
	"time"

	"github.com/shaiso/Datalens/internal/domain"
	"github.com/shaiso/Datalens/internal/worker"
)

// progressTracker нормализует progress события одной операции.
//
// Router держит собственные счётчики (processed items из оценок
// chunks, пик памяти) и подставляет их, когда worker событие
// приходит с нулевыми полями. События форвардятся в порядке
// поступления, монотонность значений остаётся на совести worker'а.
type progressTracker struct {
	start      time.Time
	totalItems int
	callback   func(domain.Progress)

	mu             sync.Mutex
	processedItems int
	peakMemoryMB   float64
}

func newProgressTracker(totalItems int, callback func(domain.Progress)) *progressTracker {
	return &progressTracker{
		start:      time.Now(),
		totalItems: totalItems,
		callback:   callback,
	}
}

// addItems увеличивает счётчик обработанных элементов.
func (t *progressTracker) addItems(n int) {
	t.mu.Lock()
	t.processedItems += n
	t.mu.Unlock()
}

// processed возвращает накопленный счётчик элементов.
func (t *progressTracker) processed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processedItems
}

// peak возвращает максимум памяти из всех событий.
func (t *progressTracker) peak() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peakMemoryMB
}

// elapsed возвращает время с начала операции.
func (t *progressTracker) elapsed() time.Duration {
	return time.Since(t.start)
}

// fromWorker нормализует событие worker processor'а и форвардит
// его caller'у.
//
// Нормализация:
//   - percentage в [0, 100]
//   - нулевые processed/total заменяются счётчиками router'а
//   - ETA — линейная экстраполяция (elapsed/pct)*100 - elapsed,
//     не меньше 0, считается только при pct > 0
//   - скорость — round(processed / elapsedMs * 1000)
func (t *progressTracker) fromWorker(e worker.ProgressEvent) {
	t.mu.Lock()

	processed := e.ProcessedItems
	if processed == 0 {
		processed = t.processedItems
	}
	total := e.TotalItems
	if total == 0 {
		total = t.totalItems
	}
	if e.MemoryUsageMB > t.peakMemoryMB {
		t.peakMemoryMB = e.MemoryUsageMB
	}

	t.mu.Unlock()

	pct := clampPercentage(e.Percentage)
	elapsed := time.Since(t.start)

	var etaSec float64
	if pct > 0 {
		elapsedSec := elapsed.Seconds()
		etaSec = (elapsedSec/pct)*100 - elapsedSec
		if etaSec < 0 {
			etaSec = 0
		}
	}

	if t.callback == nil {
		return
	}

	t.callback(domain.Progress{
		Percentage:                pct,
		Phase:                     e.Phase,
		ProcessedItems:            processed,
		TotalItems:                total,
		EstimatedTimeRemainingSec: etaSec,
		CurrentChunk:              e.CurrentChunk,
		TotalChunks:               e.TotalChunks,
		SpeedItemsPerSec:          speedItemsPerSec(processed, elapsed),
		MemoryUsageMB:             e.MemoryUsageMB,
	})
}

// clampPercentage приводит процент к [0, 100].
func clampPercentage(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// speedItemsPerSec считает скорость обработки.
func speedItemsPerSec(processed int, elapsed time.Duration) int {
	elapsedMs := float64(elapsed.Milliseconds())
	if elapsedMs <= 0 {
		return 0
	}
	return int(math.Round(float64(processed) / elapsedMs * 1000))
}
