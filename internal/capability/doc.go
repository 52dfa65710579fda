// Package capability классифицирует методы по профилю выполнения.
//
// # Обзор
//
// Detector по имени метода, именам типов запроса/ответа и streaming-флагу
// определяет, стоит ли выгружать вызов в worker, поддерживает ли он
// progress и отмену, и какую категорию памяти ожидать. Схемы методов
// у системы нет — классификация целиком эвристическая, по статическим
// таблицам подстрок и регулярных выражений.
//
// Detect — чистая функция: без I/O, без разделяемого состояния,
// результат детерминирован и пересчитывается при каждом вызове.
//
// # Категории памяти
//
// Категория уточняется цепочкой независимых сигналов, порядок важен:
//
//	low (default) → medium (analyze/process) → high (batch/bulk, streaming)
//	→ ultra (generate + MaxPoints в типе запроса, перекрывает всё)
//
// Рекомендуемый размер chunk привязан к категории:
// medium — 50000, high — 25000, ultra — 10000, low — без рекомендации.
//
// Router зависит от интерфейса Classifier, поэтому эвристику можно
// заменить на реальный schema registry без изменения control flow.
package capability
