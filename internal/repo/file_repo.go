package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Datalens/internal/domain"
)

// FileRepo — репозиторий для работы с файлами проектов.
type FileRepo struct {
	pool *pgxpool.Pool
}

// NewFileRepo создаёт новый FileRepo.
func NewFileRepo(pool *pgxpool.Pool) *FileRepo {
	return &FileRepo{pool: pool}
}

// Create сохраняет файл вместе с содержимым.
func (r *FileRepo) Create(ctx context.Context, f *domain.DatasetFile) error {
	query := `
		INSERT INTO files (id, project_id, name, dataset_type, original_filename, file_size, file_content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		f.ID,
		f.ProjectID,
		f.Name,
		int(f.DatasetType),
		f.OriginalFilename,
		f.FileSize,
		f.Content,
		f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// GetByID возвращает файл с содержимым.
func (r *FileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DatasetFile, error) {
	query := `
		SELECT id, project_id, name, dataset_type, original_filename, file_size, file_content, created_at
		FROM files
		WHERE id = $1
	`
	var f domain.DatasetFile
	var datasetType int

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.ProjectID,
		&f.Name,
		&datasetType,
		&f.OriginalFilename,
		&f.FileSize,
		&f.Content,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}

	f.DatasetType = domain.DatasetType(datasetType)
	return &f, nil
}

// ListByProject возвращает файлы проекта без содержимого
// (метаданные для списков в UI).
func (r *FileRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.DatasetFile, error) {
	query := `
		SELECT id, project_id, name, dataset_type, original_filename, file_size, created_at
		FROM files
		WHERE project_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []domain.DatasetFile
	for rows.Next() {
		var f domain.DatasetFile
		var datasetType int

		err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &datasetType,
			&f.OriginalFilename, &f.FileSize, &f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}

		f.DatasetType = domain.DatasetType(datasetType)
		files = append(files, f)
	}
	return files, rows.Err()
}

// Delete удаляет файл. Datasets файла удаляются каскадно (FK).
func (r *FileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
