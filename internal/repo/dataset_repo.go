package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Datalens/internal/domain"
)

// DatasetRepo — репозиторий для работы с datasets и статистикой колонок.
type DatasetRepo struct {
	pool *pgxpool.Pool
}

// NewDatasetRepo создаёт новый DatasetRepo.
func NewDatasetRepo(pool *pgxpool.Pool) *DatasetRepo {
	return &DatasetRepo{pool: pool}
}

// Create сохраняет dataset, его строки и статистику колонок одной
// транзакцией: либо всё, либо ничего.
func (r *DatasetRepo) Create(ctx context.Context, d *domain.Dataset, rows []map[string]any, stats []domain.ColumnStats) error {
	mappingsJSON, err := json.Marshal(d.ColumnMappings)
	if err != nil {
		return fmt.Errorf("marshal column mappings: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO datasets (id, file_id, total_rows, column_mappings, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, d.ID, d.FileID, d.TotalRows, mappingsJSON, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	for i, row := range rows {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal row %d: %w", i, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO dataset_rows (id, dataset_id, row_index, data)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), d.ID, i, rowJSON)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	for _, s := range stats {
		_, err = tx.Exec(ctx, `
			INSERT INTO column_stats (id, dataset_id, column_name, column_type,
				count, mean, std, min_value, q25, q50, q75, max_value,
				null_count, unique_count, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, s.ID, s.DatasetID, s.ColumnName, string(s.ColumnType),
			s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max,
			s.NullCount, s.UniqueCount, s.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert column stats %s: %w", s.ColumnName, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID возвращает dataset по ID.
func (r *DatasetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	query := `
		SELECT id, file_id, total_rows, column_mappings, created_at
		FROM datasets
		WHERE id = $1
	`
	return scanDataset(r.pool.QueryRow(ctx, query, id))
}

// ListByFile возвращает datasets файла.
func (r *DatasetRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]domain.Dataset, error) {
	query := `
		SELECT id, file_id, total_rows, column_mappings, created_at
		FROM datasets
		WHERE file_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []domain.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *d)
	}
	return datasets, rows.Err()
}

// GetRows возвращает страницу строк dataset'а по порядку row_index.
func (r *DatasetRepo) GetRows(ctx context.Context, datasetID uuid.UUID, limit, offset int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT data
		FROM dataset_rows
		WHERE dataset_id = $1
		ORDER BY row_index
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, datasetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		var row map[string]any
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("unmarshal row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetColumnStats возвращает статистику колонок dataset'а.
func (r *DatasetRepo) GetColumnStats(ctx context.Context, datasetID uuid.UUID) ([]domain.ColumnStats, error) {
	query := `
		SELECT id, dataset_id, column_name, column_type,
		       count, mean, std, min_value, q25, q50, q75, max_value,
		       null_count, unique_count, created_at
		FROM column_stats
		WHERE dataset_id = $1
		ORDER BY column_name
	`
	rows, err := r.pool.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("get column stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.ColumnStats
	for rows.Next() {
		var s domain.ColumnStats
		var columnType string

		err := rows.Scan(&s.ID, &s.DatasetID, &s.ColumnName, &columnType,
			&s.Count, &s.Mean, &s.Std, &s.Min, &s.Q25, &s.Q50, &s.Q75, &s.Max,
			&s.NullCount, &s.UniqueCount, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan column stats: %w", err)
		}

		s.ColumnType = domain.ColumnType(columnType)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Delete удаляет dataset вместе со строками и статистикой (FK).
func (r *DatasetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanDataset сканирует dataset из одной строки.
func scanDataset(row pgx.Row) (*domain.Dataset, error) {
	var d domain.Dataset
	var mappingsJSON []byte

	err := row.Scan(&d.ID, &d.FileID, &d.TotalRows, &mappingsJSON, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan dataset: %w", err)
	}

	if len(mappingsJSON) > 0 {
		if err := json.Unmarshal(mappingsJSON, &d.ColumnMappings); err != nil {
			return nil, fmt.Errorf("unmarshal column mappings: %w", err)
		}
	}
	return &d, nil
}
