package capability

import (
	"regexp"
	"strings"

	"github.com/shaiso/Datalens/internal/domain"
)

// Рекомендуемые размеры chunk по категориям памяти.
const (
	chunkSizeMedium = 50000
	chunkSizeHigh   = 25000
	chunkSizeUltra  = 10000
)

// Classifier — стратегия классификации методов.
//
// Единственная реализация сейчас — эвристический Detector.
// Интерфейс оставлен, чтобы router не зависел от способа классификации.
type Classifier interface {
	Detect(methodName, requestType, responseType string, isStreaming bool) domain.Capabilities
}

// heavyMethodMarkers — подстроки в имени метода, сигнализирующие
// тяжёлую обработку данных.
var heavyMethodMarkers = []string{
	"batch",
	"stream",
	"analyze",
	"process",
	"generate",
}

// heavyRequestPatterns — паттерны имён типов запроса с большим payload.
var heavyRequestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Batch`),
	regexp.MustCompile(`Bulk`),
	regexp.MustCompile(`MaxPoints`),
}

// chunkedResponsePatterns — паттерны имён типов ответа,
// отдаваемых потоком или chunks.
var chunkedResponsePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Stream`),
	regexp.MustCompile(`Chunk`),
	regexp.MustCompile(`Columnar`),
}

// maxPointsRequestPattern — узкий сигнал для категории ultra:
// генерация данных, ограниченная max_points.
var maxPointsRequestPattern = regexp.MustCompile(`MaxPoints`)

// Detector — эвристический классификатор методов.
//
// Без состояния: все таблицы паттернов статические.
type Detector struct{}

// NewDetector создаёт Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect классифицирует метод по имени и именам типов.
//
// Порядок уточнения категории памяти фиксирован: batch/bulk → high,
// analyze/process → medium (если ещё не high), streaming → high,
// generate+MaxPoints → ultra поверх всего остального. Цепочка
// переносит приоритеты как есть — это не switch по одному сигналу.
func (d *Detector) Detect(methodName, requestType, responseType string, isStreaming bool) domain.Capabilities {
	lower := strings.ToLower(methodName)

	heavyName := containsAny(lower, heavyMethodMarkers)
	heavyRequest := matchesAny(requestType, heavyRequestPatterns)
	chunkedResponse := matchesAny(responseType, chunkedResponsePatterns)

	supportsWorker := heavyName || heavyRequest || chunkedResponse || isStreaming

	caps := domain.Capabilities{
		SupportsWorkerThread: supportsWorker,
		SupportsStreaming:    chunkedResponse || isStreaming,
		SupportsProgress:     supportsWorker || isStreaming,
		SupportsCancellation: supportsWorker,
		MemoryCategory:       domain.MemoryLow,
	}

	if strings.Contains(lower, "batch") || strings.Contains(lower, "bulk") {
		caps.MemoryCategory = domain.MemoryHigh
	}
	if caps.MemoryCategory != domain.MemoryHigh &&
		(strings.Contains(lower, "analyze") || strings.Contains(lower, "process")) {
		caps.MemoryCategory = domain.MemoryMedium
	}
	if isStreaming {
		caps.MemoryCategory = domain.MemoryHigh
	}
	// generate + MaxPoints в типе запроса — перекрывает high/medium
	if strings.Contains(lower, "generate") && maxPointsRequestPattern.MatchString(requestType) {
		caps.MemoryCategory = domain.MemoryUltra
	}

	switch caps.MemoryCategory {
	case domain.MemoryMedium:
		caps.RecommendedChunkSize = chunkSizeMedium
	case domain.MemoryHigh:
		caps.RecommendedChunkSize = chunkSizeHigh
	case domain.MemoryUltra:
		caps.RecommendedChunkSize = chunkSizeUltra
	}
	// для low рекомендации нет — caller не должен делать chunking

	return caps
}

// containsAny проверяет вхождение любой из подстрок.
func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// matchesAny проверяет совпадение с любым из паттернов.
func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
