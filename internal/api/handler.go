package api

import (
	"log/slog"

	"github.com/shaiso/Datalens/internal/dataset"
	"github.com/shaiso/Datalens/internal/repo"
	"github.com/shaiso/Datalens/internal/router"
	"github.com/shaiso/Datalens/internal/ws"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	projectRepo *repo.ProjectRepo
	fileRepo    *repo.FileRepo
	datasetRepo *repo.DatasetRepo
	router      *router.Router
	hub         *ws.Hub
	generator   *dataset.Generator
	analyzer    *dataset.Analyzer
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	ProjectRepo *repo.ProjectRepo
	FileRepo    *repo.FileRepo
	DatasetRepo *repo.DatasetRepo
	Router      *router.Router
	Hub         *ws.Hub
	Generator   *dataset.Generator
	Analyzer    *dataset.Analyzer
	Logger      *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	generator := cfg.Generator
	if generator == nil {
		generator = dataset.NewGenerator(logger)
	}
	analyzer := cfg.Analyzer
	if analyzer == nil {
		analyzer = dataset.NewAnalyzer(logger)
	}

	return &Handler{
		projectRepo: cfg.ProjectRepo,
		fileRepo:    cfg.FileRepo,
		datasetRepo: cfg.DatasetRepo,
		router:      cfg.Router,
		hub:         cfg.Hub,
		generator:   generator,
		analyzer:    analyzer,
		logger:      logger,
	}
}
