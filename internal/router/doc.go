// Package router решает, как выполнять вызов метода: inline или
// через фоновый worker processor.
//
// # Обзор
//
// Router — orchestrator подсистемы адаптивного выполнения. На каждый
// вызов ExecuteMethod он:
//
//   - оценивает стоимость запроса (internal/estimate)
//   - выбирает путь выполнения: явный override из опций или
//     авто-решение (больше 100000 элементов либо поднятый лимит памяти)
//   - inline path: прямой вызов executor'а, без регистрации операции
//   - worker path: session в worker processor'е, chunk posting,
//     progress события, отмена через operation registry
//
// Результат всегда единый — ExecutionResult с данными и метриками
// (время, пик памяти, элементы, скорость, chunks, cache hits).
//
// # Жизненный цикл worker-path операции
//
//	STARTED → (CHUNKING | SINGLE_SHOT) → FINALIZING → {COMPLETED | CANCELLED | FAILED}
//
// CHUNKING — когда заданы и streaming executor, и OnChunk callback:
// каждый chunk учитывается estimator'ом, постится в session и только
// потом отдаётся в OnChunk. SINGLE_SHOT — всё остальное: один
// descriptor chunk для телеметрии, затем обычный вызов inline
// executor'а.
//
// # Гарантии
//
//   - Запрос никогда не теряется: любая ошибка, кроме отмены,
//     пробрасывается caller'у как есть.
//   - Registry не течёт: запись об операции снимается при любом
//     исходе (defer).
//   - Отмена не ошибка: маркер отмены превращается в
//     ExecutionResult{Cancelled: true} с пустыми данными.
//   - Inline path не трогает ни registry, ни processor.
//
// # Отмена
//
// Кооперативная. CancelOperation(id) дёргает handle операции:
// отменяется context executor'а и помечается worker session.
// Inline-path операции не регистрируются и не отменяются.
//
// Router создаётся явно через New(cfg) — процесс может держать
// несколько независимых экземпляров (важно для тестов). Worker
// processor создаётся лениво при первом worker-path вызове и
// разделяется всеми операциями экземпляра до Cleanup().
package router
