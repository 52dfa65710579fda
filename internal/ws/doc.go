// Package ws транслирует progress события операций в UI.
//
// Hub держит множество подключённых websocket клиентов (Electron
// renderer подписывается при старте) и рассылает им JSON события:
// progress операций, завершение, отмену. Подключение/отключение и
// рассылка идут через каналы в одной горутине Run — без локов
// вокруг карты клиентов.
//
// Медленный клиент не тормозит остальных: при переполнении его
// буфера отправки клиент отключается.
package ws
