package router

import (
	"sort"
	"sync"
)

// CancelHandle — непрозрачный handle отмены операции.
type CancelHandle interface {
	Cancel()
}

// Registry — реестр активных worker-path операций.
//
// Единственное процессно-разделяемое изменяемое состояние подсистемы.
// Все операции атомарны, ни одна не паникует: неизвестный id — это
// false/пустой результат, не ошибка. UI может дёргать отмену
// вслепую ("cancel all").
type Registry struct {
	mu  sync.Mutex
	ops map[string]CancelHandle
}

// NewRegistry создаёт пустой Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]CancelHandle)}
}

// Register добавляет операцию с её cancel handle.
func (r *Registry) Register(id string, handle CancelHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[id] = handle
}

// Cancel отменяет операцию по id.
//
// Возвращает false, если операция неизвестна или handle пустой.
// При успехе запись снимается с реестра.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	handle, ok := r.ops[id]
	if !ok || handle == nil {
		r.mu.Unlock()
		return false
	}
	delete(r.ops, id)
	r.mu.Unlock()

	// handle.Cancel вне лока: отмена может synchronously дёргать
	// callbacks, которым нельзя давать держать реестр
	handle.Cancel()
	return true
}

// Remove снимает операцию с реестра без отмены.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ops, id)
}

// ListActive возвращает отсортированные id активных операций.
func (r *Registry) ListActive() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.ops))
	for id := range r.ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len возвращает количество активных операций.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// Clear отменяет и снимает все операции.
func (r *Registry) Clear() {
	r.mu.Lock()
	handles := make([]CancelHandle, 0, len(r.ops))
	for _, h := range r.ops {
		if h != nil {
			handles = append(handles, h)
		}
	}
	r.ops = make(map[string]CancelHandle)
	r.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}
