// Package dataset — генерация и анализ данных.
//
// Включает:
//   - generator.go — генерация геоданных в колоночном формате,
//     целиком или потоком chunks (25000 точек на chunk)
//   - analyzer.go — анализ CSV: типы колонок, авто-маппинг осей,
//     описательная статистика по колонкам
//   - ingest.go — полный парсинг CSV в строки для персистенции
//
// Методы Execute/ExecuteStreamed совместимы по сигнатуре с
// executor'ами router'а — API слой передаёт их в ExecuteMethod
// без адаптеров.
package dataset
