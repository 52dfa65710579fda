package router

import "errors"

// Ошибки router'а.
var (
	// ErrNoExecutor — не передан inline executor.
	ErrNoExecutor = errors.New("inline executor is required")
)
