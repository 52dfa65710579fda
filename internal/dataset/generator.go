package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
)

// Параметры генерации по умолчанию.
const (
	// DefaultMaxPoints — количество точек по умолчанию.
	DefaultMaxPoints = 1000

	// DefaultResolution — разрешение сетки по умолчанию.
	DefaultResolution = 20

	// StreamChunkSize — точек в одном chunk при streaming.
	StreamChunkSize = 25000
)

// Границы области по умолчанию (Сантьяго, Чили).
const (
	latMin = -33.6
	latMax = -33.3
	lngMin = -70.8
	lngMax = -70.5
)

// generationMethod — маркер способа генерации в chunk'ах.
const generationMethod = "simple_columnar_generation"

// ColumnarData — геоданные в колоночном формате.
// Все колонки одной длины.
type ColumnarData struct {
	ID      []string  `json:"id"`
	X       []float64 `json:"x"` // longitude
	Y       []float64 `json:"y"` // latitude
	Z       []float64 `json:"z"` // elevation
	IDValue []string  `json:"id_value"`
	Value1  []float64 `json:"value1"` // температура
	Value2  []float64 `json:"value2"` // давление
	Value3  []float64 `json:"value3"` // влажность
}

// Len возвращает количество точек.
func (d *ColumnarData) Len() int {
	return len(d.X)
}

// slice возвращает срез данных [from, to).
func (d *ColumnarData) slice(from, to int) *ColumnarData {
	return &ColumnarData{
		ID:      d.ID[from:to],
		X:       d.X[from:to],
		Y:       d.Y[from:to],
		Z:       d.Z[from:to],
		IDValue: d.IDValue[from:to],
		Value1:  d.Value1[from:to],
		Value2:  d.Value2[from:to],
		Value3:  d.Value3[from:to],
	}
}

// asMap отдаёт колонки в форме, ожидаемой estimator'ом
// (columnar_data.x и т.д.).
func (d *ColumnarData) asMap() map[string]any {
	return map[string]any{
		"id":       d.ID,
		"x":        d.X,
		"y":        d.Y,
		"z":        d.Z,
		"id_value": d.IDValue,
		"value1":   d.Value1,
		"value2":   d.Value2,
		"value3":   d.Value3,
	}
}

// Generator генерирует колоночные геоданные.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator создаёт Generator.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// GenerateColumnar генерирует сетку точек с синтетическими значениями.
//
// Если maxPoints больше resolution², разрешение поднимается до
// sqrt(maxPoints)+1, чтобы сетка покрыла запрошенное количество.
// Результат обрезается до maxPoints.
func (g *Generator) GenerateColumnar(maxPoints, resolution int) *ColumnarData {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	actualResolution := resolution
	if actualResolution < 2 {
		actualResolution = 2
	}
	if maxPoints > resolution*resolution {
		needed := int(math.Sqrt(float64(maxPoints))) + 1
		if needed > actualResolution {
			actualResolution = needed
		}
	}

	count := actualResolution * actualResolution
	if count > maxPoints {
		count = maxPoints
	}

	data := &ColumnarData{
		ID:      make([]string, count),
		X:       make([]float64, count),
		Y:       make([]float64, count),
		Z:       make([]float64, count),
		IDValue: make([]string, count),
		Value1:  make([]float64, count),
		Value2:  make([]float64, count),
		Value3:  make([]float64, count),
	}

	latStep := (latMax - latMin) / float64(actualResolution-1)
	lngStep := (lngMax - lngMin) / float64(actualResolution-1)

	for i := 0; i < count; i++ {
		// обход сетки в порядке meshgrid: строка — lng, колонка — lat
		lat := latMin + float64(i%actualResolution)*latStep
		lng := lngMin + float64(i/actualResolution)*lngStep

		data.ID[i] = fmt.Sprintf("point_%d", i)
		data.X[i] = lng
		data.Y[i] = lat
		data.Z[i] = 100 + 50*math.Sin(lat*0.1)*math.Cos(lng*0.1)
		data.IDValue[i] = fmt.Sprintf("sensor_%d", i%10)
		data.Value1[i] = 20 + 15*math.Sin(lat*0.05) + randRange(-5, 5)
		data.Value2[i] = 1013 + 50*math.Cos(lng*0.03) + randRange(-10, 10)
		data.Value3[i] = clamp01to100(50 + 30*math.Sin((lat+lng)*0.02) + randRange(-10, 10))
	}

	g.logger.Debug("columnar data generated",
		"requested", maxPoints,
		"resolution", actualResolution,
		"count", count,
	)

	return data
}

// Execute — inline executor для GetBatchDataColumnar:
// весь набор одним chunk.
func (g *Generator) Execute(ctx context.Context, request map[string]any) (any, error) {
	maxPoints := intField(request, "max_points", DefaultMaxPoints)
	resolution := intField(request, "resolution", DefaultResolution)

	data := g.GenerateColumnar(maxPoints, resolution)

	return map[string]any{
		"total_count":       data.Len(),
		"generation_method": generationMethod,
		"columnar_data":     data.asMap(),
		"chunk_number":      0,
		"total_chunks":      1,
		"points_in_chunk":   data.Len(),
		"is_final_chunk":    true,
	}, nil
}

// ExecuteStreamed — streaming executor для GetBatchDataColumnarStreamed:
// набор нарезается на chunks по StreamChunkSize точек, каждый chunk
// отдаётся в onData. Между chunks проверяется отмена context'а.
func (g *Generator) ExecuteStreamed(ctx context.Context, request map[string]any, onData func(chunk map[string]any)) ([]any, error) {
	maxPoints := intField(request, "max_points", DefaultMaxPoints)
	resolution := intField(request, "resolution", DefaultResolution)

	data := g.GenerateColumnar(maxPoints, resolution)

	totalPoints := data.Len()
	totalChunks := (totalPoints + StreamChunkSize - 1) / StreamChunkSize

	g.logger.Debug("streaming columnar data",
		"total_points", totalPoints,
		"total_chunks", totalChunks,
		"chunk_size", StreamChunkSize,
	)

	chunks := make([]any, 0, totalChunks)
	for i := 0; i < totalChunks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		from := i * StreamChunkSize
		to := from + StreamChunkSize
		if to > totalPoints {
			to = totalPoints
		}
		part := data.slice(from, to)

		chunk := map[string]any{
			"chunk_number":      i,
			"total_chunks":      totalChunks,
			"points_in_chunk":   part.Len(),
			"is_final_chunk":    i == totalChunks-1,
			"generation_method": generationMethod,
			"columnar_data":     part.asMap(),
		}

		if onData != nil {
			onData(chunk)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// intField извлекает целое поле запроса с default'ом.
func intField(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// randRange возвращает случайное число в [min, max).
func randRange(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}

// clamp01to100 прижимает значение к [0, 100].
func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
