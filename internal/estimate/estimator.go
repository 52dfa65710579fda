package estimate

import "math"

// Консервативные defaults при отсутствии сигналов в запросе.
const (
	// DefaultItemCount — оценка количества элементов по умолчанию.
	DefaultItemCount = 1000

	// DefaultChunkSize — оценка размера chunk по умолчанию.
	DefaultChunkSize = 25000
)

// itemCountFields — поля запроса, задающие количество элементов,
// в порядке приоритета.
var itemCountFields = []string{"max_points", "limit", "count", "size"}

// chunkArrayFields — поля chunk с массивом элементов, в порядке приоритета.
var chunkArrayFields = []string{"items", "data"}

// ItemCount оценивает количество элементов, которые затронет запрос.
//
// Приоритет: max_points → limit → count → size. Если ни одного поля
// нет, но есть bounds и resolution — геометрическая аппроксимация
// floor(resolution² × 100). Иначе DefaultItemCount.
func ItemCount(request map[string]any) int {
	for _, field := range itemCountFields {
		if v, ok := numberField(request, field); ok {
			return int(v)
		}
	}

	// bounds + resolution: запрос покрывает сетку точек
	if _, hasBounds := request["bounds"]; hasBounds {
		if res, ok := numberField(request, "resolution"); ok {
			return int(math.Floor(res * res * 100))
		}
	}

	return DefaultItemCount
}

// ChunkSize оценивает количество элементов в одном chunk.
//
// Приоритет: points_in_chunk → len(items) → len(data) →
// len(columnar_data.x). Иначе DefaultChunkSize.
func ChunkSize(chunk map[string]any) int {
	if v, ok := numberField(chunk, "points_in_chunk"); ok {
		return int(v)
	}

	for _, field := range chunkArrayFields {
		if n, ok := arrayLen(chunk[field]); ok {
			return n
		}
	}

	// columnar chunk: длина любой колонки, x всегда присутствует
	if columnar, ok := chunk["columnar_data"].(map[string]any); ok {
		if n, ok := arrayLen(columnar["x"]); ok {
			return n
		}
	}

	return DefaultChunkSize
}

// numberField извлекает числовое поле из map.
// JSON-декодер отдаёт числа как float64, но payload может
// собираться и в Go-коде — принимаем целые типы тоже.
func numberField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// arrayLen возвращает длину значения-массива.
func arrayLen(v any) (int, bool) {
	switch arr := v.(type) {
	case []any:
		return len(arr), true
	case []float64:
		return len(arr), true
	case []string:
		return len(arr), true
	case []map[string]any:
		return len(arr), true
	}
	return 0, false
}
