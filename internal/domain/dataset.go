package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dataset — обработанный набор данных, построенный из файла.
//
// Dataset создаётся операцией ProcessDataset: строки файла
// парсятся, считается статистика по колонкам, результат
// сохраняется в БД для быстрой пагинации.
type Dataset struct {
	// ID — уникальный идентификатор dataset.
	ID uuid.UUID `json:"id"`

	// FileID — ссылка на исходный файл.
	FileID uuid.UUID `json:"file_id"`

	// TotalRows — количество строк данных.
	TotalRows int `json:"total_rows"`

	// ColumnMappings — соответствие колонок файла осям визуализации
	// (например, {"x": "longitude", "y": "latitude"}).
	ColumnMappings map[string]string `json:"column_mappings,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// ColumnType — тип колонки dataset.
type ColumnType string

const (
	// ColumnTypeNumeric — числовая колонка (есть агрегаты).
	ColumnTypeNumeric ColumnType = "numeric"

	// ColumnTypeCategorical — категориальная колонка (только counts).
	ColumnTypeCategorical ColumnType = "categorical"
)

// ColumnStats — описательная статистика одной колонки dataset.
//
// Для категориальных колонок числовые агрегаты равны nil.
type ColumnStats struct {
	// ID — уникальный идентификатор записи статистики.
	ID uuid.UUID `json:"id"`

	// DatasetID — ссылка на dataset.
	DatasetID uuid.UUID `json:"dataset_id"`

	// ColumnName — имя колонки.
	ColumnName string `json:"column_name"`

	// ColumnType — numeric или categorical.
	ColumnType ColumnType `json:"column_type"`

	// Count — количество непустых значений.
	Count int `json:"count"`

	// Mean — среднее (только numeric).
	Mean *float64 `json:"mean,omitempty"`

	// Std — стандартное отклонение (только numeric).
	Std *float64 `json:"std,omitempty"`

	// Min — минимум (только numeric).
	Min *float64 `json:"min,omitempty"`

	// Q25 — 25-й перцентиль.
	Q25 *float64 `json:"q25,omitempty"`

	// Q50 — медиана.
	Q50 *float64 `json:"q50,omitempty"`

	// Q75 — 75-й перцентиль.
	Q75 *float64 `json:"q75,omitempty"`

	// Max — максимум (только numeric).
	Max *float64 `json:"max,omitempty"`

	// NullCount — количество пустых значений.
	NullCount int `json:"null_count"`

	// UniqueCount — количество уникальных значений.
	UniqueCount int `json:"unique_count"`

	// CreatedAt — время расчёта.
	CreatedAt time.Time `json:"created_at"`
}

// IsNumeric возвращает true для числовой колонки.
func (s *ColumnStats) IsNumeric() bool {
	return s.ColumnType == ColumnTypeNumeric
}
