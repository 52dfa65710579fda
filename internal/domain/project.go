package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project — проект пользователя, контейнер для загруженных файлов.
//
// Project создаётся через API и живёт в БД. Удаление project
// каскадно удаляет все его файлы и datasets.
type Project struct {
	// ID — уникальный идентификатор проекта.
	ID uuid.UUID `json:"id"`

	// Name — имя проекта (обязательное).
	Name string `json:"name"`

	// Description — описание проекта.
	Description string `json:"description,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch обновляет UpdatedAt.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now()
}

// DatasetType — тип загруженного файла данных.
type DatasetType int

const (
	// DatasetTypeTabular — табличные данные (CSV).
	DatasetTypeTabular DatasetType = 0

	// DatasetTypeGeospatial — геоданные (точки с координатами).
	DatasetTypeGeospatial DatasetType = 1
)

// DatasetFile — загруженный файл внутри проекта.
//
// Содержимое файла хранится в БД (bytea): файлы в этой системе
// небольшие, а хранение inline упрощает перенос проекта целиком.
type DatasetFile struct {
	// ID — уникальный идентификатор файла.
	ID uuid.UUID `json:"id"`

	// ProjectID — ссылка на родительский проект.
	ProjectID uuid.UUID `json:"project_id"`

	// Name — отображаемое имя файла.
	Name string `json:"name"`

	// DatasetType — тип данных в файле.
	DatasetType DatasetType `json:"dataset_type"`

	// OriginalFilename — имя файла при загрузке.
	OriginalFilename string `json:"original_filename"`

	// FileSize — размер содержимого в байтах.
	FileSize int64 `json:"file_size"`

	// Content — содержимое файла. Не сериализуется в API-ответах.
	Content []byte `json:"-"`

	// CreatedAt — время загрузки.
	CreatedAt time.Time `json:"created_at"`
}
