package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Datalens/internal/domain"
)

// defaultRowsToAnalyze — строк для определения типов колонок.
const defaultRowsToAnalyze = 2

// ColumnInfo — описание колонки CSV.
type ColumnInfo struct {
	// Name — имя колонки из заголовка.
	Name string `json:"name"`

	// Type — "number" или "string", по первой строке данных.
	Type string `json:"type"`

	// IsRequired — колонка распознана как ось визуализации.
	IsRequired bool `json:"is_required"`
}

// CsvAnalysis — результат анализа CSV.
type CsvAnalysis struct {
	// Columns — колонки в порядке файла.
	Columns []ColumnInfo `json:"columns"`

	// AutoMapping — автоопределённое соответствие осей колонкам
	// (id, x, y, z, depth).
	AutoMapping map[string]string `json:"auto_detected_mapping"`
}

// axisMarkers — подстроки имён колонок для авто-маппинга осей.
// Порядок проверки фиксирован: первое совпадение выигрывает.
var axisMarkers = []struct {
	axis    string
	markers []string
}{
	{"id", []string{"id", "identifier", "key"}},
	{"x", []string{"x", "longitude", "lng", "long"}},
	{"y", []string{"y", "latitude", "lat"}},
	{"z", []string{"z", "elevation", "height", "altitude"}},
	{"depth", []string{"depth", "profundidad"}},
}

// yearMarkers — исключения для оси y: year/yr содержат "y",
// но осью не являются.
var yearMarkers = []string{"year", "yr"}

// Analyzer анализирует CSV файлы.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer создаёт Analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// AnalyzeCSV читает первые rowsToAnalyze строк и определяет
// имена, типы и авто-маппинг колонок.
func (a *Analyzer) AnalyzeCSV(r io.Reader, rowsToAnalyze int) (*CsvAnalysis, error) {
	if rowsToAnalyze <= 0 {
		rowsToAnalyze = defaultRowsToAnalyze
	}

	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var firstRow []string
	for i := 0; i < rowsToAnalyze; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if firstRow == nil {
			firstRow = row
		}
	}

	analysis := &CsvAnalysis{
		Columns:     make([]ColumnInfo, 0, len(header)),
		AutoMapping: make(map[string]string),
	}

	for i, name := range header {
		info := ColumnInfo{Name: name, Type: "string"}

		if firstRow != nil && i < len(firstRow) {
			if _, err := strconv.ParseFloat(strings.TrimSpace(firstRow[i]), 64); err == nil {
				info.Type = "number"
			}
		}

		if axis, ok := detectAxis(name); ok {
			if _, taken := analysis.AutoMapping[axis]; !taken {
				analysis.AutoMapping[axis] = name
				info.IsRequired = true
			}
		}

		analysis.Columns = append(analysis.Columns, info)
	}

	a.logger.Debug("csv analyzed",
		"columns", len(analysis.Columns),
		"auto_mapping", analysis.AutoMapping,
	)

	return analysis, nil
}

// detectAxis определяет ось визуализации по имени колонки.
func detectAxis(name string) (string, bool) {
	lower := strings.ToLower(name)

	for _, am := range axisMarkers {
		if am.axis == "y" {
			// year/yr — не ось y
			if containsAnyMarker(lower, yearMarkers) {
				continue
			}
		}
		if containsAnyMarker(lower, am.markers) {
			return am.axis, true
		}
	}
	return "", false
}

func containsAnyMarker(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Execute — inline executor для AnalyzeCsv. Запрос несёт содержимое
// файла в поле "content" и опционально "rows_to_analyze".
func (a *Analyzer) Execute(ctx context.Context, request map[string]any) (any, error) {
	content, _ := request["content"].(string)
	rows := intField(request, "rows_to_analyze", defaultRowsToAnalyze)

	analysis, err := a.AnalyzeCSV(strings.NewReader(content), rows)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// ComputeColumnStats считает описательную статистику для каждой
// колонки набора записей.
//
// Числовые колонки получают count/mean/std/min/квартили/max,
// категориальные — только counts и uniques.
func ComputeColumnStats(datasetID uuid.UUID, header []string, records [][]string) []domain.ColumnStats {
	now := time.Now()
	stats := make([]domain.ColumnStats, 0, len(header))

	for col, name := range header {
		var values []float64
		nulls := 0
		unique := make(map[string]struct{})
		numeric := true

		for _, rec := range records {
			if col >= len(rec) {
				nulls++
				continue
			}
			raw := strings.TrimSpace(rec[col])
			if raw == "" {
				nulls++
				continue
			}
			unique[raw] = struct{}{}

			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				values = append(values, v)
			} else {
				numeric = false
			}
		}

		s := domain.ColumnStats{
			ID:          uuid.New(),
			DatasetID:   datasetID,
			ColumnName:  name,
			ColumnType:  domain.ColumnTypeCategorical,
			Count:       len(records) - nulls,
			NullCount:   nulls,
			UniqueCount: len(unique),
			CreatedAt:   now,
		}

		if numeric && len(values) > 0 {
			s.ColumnType = domain.ColumnTypeNumeric
			sort.Float64s(values)

			mean := meanOf(values)
			s.Mean = &mean

			std := stdOf(values, mean)
			s.Std = &std

			minV := values[0]
			maxV := values[len(values)-1]
			s.Min = &minV
			s.Max = &maxV

			q25 := percentile(values, 0.25)
			q50 := percentile(values, 0.50)
			q75 := percentile(values, 0.75)
			s.Q25 = &q25
			s.Q50 = &q50
			s.Q75 = &q75
		}

		stats = append(stats, s)
	}

	return stats
}

// meanOf считает среднее.
func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdOf считает стандартное отклонение.
func stdOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// percentile считает перцентиль с линейной интерполяцией.
// values должны быть отсортированы.
func percentile(values []float64, p float64) float64 {
	if len(values) == 1 {
		return values[0]
	}
	pos := p * float64(len(values)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return values[lo]
	}
	frac := pos - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo])
}
