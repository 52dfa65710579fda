// Package estimate оценивает стоимость операций по форме запроса.
//
// Запросы в системе — нетипизированные map[string]any (payload приходит
// из IPC-моста без схемы). Вместо разбросанных проверок полей пакет
// собирает оценку из маленьких accessor-функций, применяемых в
// фиксированном порядке приоритета.
//
// Оценки никогда не ошибаются: отсутствие сигнала деградирует
// к консервативному default, а не к error.
package estimate
