// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики execution router'а и worker processor'а
//
// Сервер использует единый формат логирования
// и экспортирует метрики на /metrics endpoint.
package telemetry
