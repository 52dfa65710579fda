package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Datalens/internal/api"
	"github.com/shaiso/Datalens/internal/dataset"
	"github.com/shaiso/Datalens/internal/repo"
	"github.com/shaiso/Datalens/internal/router"
	"github.com/shaiso/Datalens/internal/telemetry"
	"github.com/shaiso/Datalens/internal/ws"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting datalens-server")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Создаём репозитории
	projectRepo := repo.NewProjectRepo(pool)
	fileRepo := repo.NewFileRepo(pool)
	datasetRepo := repo.NewDatasetRepo(pool)

	// Execution router — решает, выполнять запрос inline или в worker
	execRouter := router.New(router.Config{Logger: logger})
	defer execRouter.Cleanup()

	// WebSocket hub для progress событий
	hub := ws.New(ws.Config{Logger: logger})
	hub.Start(context.Background())
	defer hub.Stop()

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		ProjectRepo: projectRepo,
		FileRepo:    fileRepo,
		DatasetRepo: datasetRepo,
		Router:      execRouter,
		Hub:         hub,
		Generator:   dataset.NewGenerator(logger),
		Analyzer:    dataset.NewAnalyzer(logger),
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
