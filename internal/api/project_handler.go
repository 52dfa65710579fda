package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Datalens/internal/domain"
)

// maxUploadBytes — предел размера загружаемого файла (64 MB).
const maxUploadBytes = 64 << 20

// ListProjects возвращает список проектов.
// GET /api/v1/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	projects, total, err := h.projectRepo.List(r.Context(), limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		result[i] = ProjectFromDomain(p)
	}

	List(w, result, total)
}

// CreateProject создаёт новый проект.
// POST /api/v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	now := time.Now()
	project := &domain.Project{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.projectRepo.Create(r.Context(), project); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, ProjectFromDomain(*project))
}

// GetProject возвращает проект по ID.
// GET /api/v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "project not found") {
		return
	}

	Success(w, ProjectFromDomain(*project))
}

// UpdateProject обновляет проект.
// PUT /api/v1/projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "project not found") {
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	project.Touch()

	if err := h.projectRepo.Update(r.Context(), project); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, ProjectFromDomain(*project))
}

// DeleteProject удаляет проект со всеми файлами и datasets.
// DELETE /api/v1/projects/{id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	if err := h.projectRepo.Delete(r.Context(), id); err != nil {
		HandleRepoError(w, h.logger, err, "project not found")
		return
	}

	NoContent(w)
}

// ListFiles возвращает файлы проекта (без содержимого).
// GET /api/v1/projects/{id}/files
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	files, err := h.fileRepo.ListByProject(r.Context(), projectID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FileResponse, len(files))
	for i, f := range files {
		result[i] = FileFromDomain(f)
	}

	List(w, result, len(result))
}

// UploadFile загружает файл в проект (multipart/form-data, поле "file").
// POST /api/v1/projects/{id}/files
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid project id")
		return
	}

	// Проект должен существовать до приёма содержимого.
	if _, err := h.projectRepo.GetByID(r.Context(), projectID); err != nil {
		HandleRepoError(w, h.logger, err, "project not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	part, header, err := r.FormFile("file")
	if err != nil {
		BadRequest(w, "file field is required")
		return
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		BadRequest(w, "read upload: "+err.Error())
		return
	}

	datasetType := domain.DatasetTypeTabular
	if strings.EqualFold(r.FormValue("dataset_type"), "geospatial") {
		datasetType = domain.DatasetTypeGeospatial
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	file := &domain.DatasetFile{
		ID:               uuid.New(),
		ProjectID:        projectID,
		Name:             name,
		DatasetType:      datasetType,
		OriginalFilename: header.Filename,
		FileSize:         int64(len(content)),
		Content:          content,
		CreatedAt:        time.Now(),
	}

	if err := h.fileRepo.Create(r.Context(), file); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, FileFromDomain(*file))
}

// GetFile возвращает метаданные файла.
// GET /api/v1/files/{id}
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid file id")
		return
	}

	file, err := h.fileRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "file not found") {
		return
	}

	Success(w, FileFromDomain(*file))
}

// DeleteFile удаляет файл и его datasets.
// DELETE /api/v1/files/{id}
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid file id")
		return
	}

	if err := h.fileRepo.Delete(r.Context(), id); err != nil {
		HandleRepoError(w, h.logger, err, "file not found")
		return
	}

	NoContent(w)
}

// queryInt читает целочисленный query-параметр с default значением.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
