package worker

import "errors"

// Ошибки worker processor'а.
var (
	// ErrCancelled — операция отменена. Router превращает её в
	// результат с cancelled=true, а не в ошибку вызывающему.
	ErrCancelled = errors.New("operation cancelled")

	// ErrSessionClosed — session уже финализирована.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionExists — session с таким operation id уже открыта.
	ErrSessionExists = errors.New("session already exists")

	// ErrProcessorClosed — processor остановлен через Close.
	ErrProcessorClosed = errors.New("processor closed")
)
