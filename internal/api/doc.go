// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go           — Handler с DI (репозитории, router, hub, logger)
//   - routes.go            — регистрация маршрутов
//   - middleware.go        — middleware (logging, recovery)
//   - response.go          — унифицированные JSON-ответы и обработка ошибок
//   - dto.go               — Data Transfer Objects (request/response)
//   - project_handler.go   — обработчики для /projects и /files
//   - dataset_handler.go   — обработчики для /datasets и batch-данных
//   - operation_handler.go — обработчики для /operations и /capabilities
//
// API предоставляет REST endpoints для управления проектами и данными.
// Тяжёлые запросы (process, batch data) проходят через execution
// router, который сам решает, выполнять их inline или через worker.
package api
