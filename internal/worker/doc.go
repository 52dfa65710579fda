// Package worker выполняет фоновую обработку chunks для execution router'а.
//
// # Обзор
//
// Processor — разделяемая фоновая единица выполнения. Для каждой
// операции router открывает Session, в которую асинхронно постит
// chunks. Session обрабатывает их в собственной горутине, эмитит
// progress события и закрывается через Finalize с итоговой
// статистикой (количество chunks, cache hits, пик памяти).
//
// Один Processor обслуживает несколько конкурентных sessions,
// ключ — operation id. Processor создаётся лениво router'ом
// при первом worker-path вызове и живёт до Cleanup.
//
// # Контракт session
//
//	session := processor.StartSession(opID, totalItems, progressFn)
//	err := session.PostChunk(chunk)   // ErrCancelled после Cancel()
//	session.Cancel()                  // кооперативная отмена
//	stats, err := session.Finalize(ctx)
//
// # Отмена
//
// Отмена кооперативная: Cancel() помечает session, и следующий
// PostChunk (или Finalize) возвращает ErrCancelled. Уже принятые
// chunks дообрабатываются — session не прерывает работу посреди chunk.
//
// # Кэш
//
// Processor держит кэш сигнатур обработанных chunks. Повторный
// chunk с той же сигнатурой засчитывается как cache hit и не
// обрабатывается заново. Кэш разделяется всеми sessions процесса.
package worker
