package router

import "testing"

// fakeHandle — тестовый cancel handle.
type fakeHandle struct {
	cancelled bool
}

func (h *fakeHandle) Cancel() {
	h.cancelled = true
}

func TestRegistry_RegisterAndCancel(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{}

	r.Register("op-1", h)

	if !r.Cancel("op-1") {
		t.Error("expected cancel to succeed")
	}
	if !h.cancelled {
		t.Error("handle was not cancelled")
	}
	// запись снята при отмене
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Len())
	}
}

// Отмена неизвестного id — false, не паника.
func TestRegistry_CancelUnknown(t *testing.T) {
	r := NewRegistry()

	if r.Cancel("no-such-operation") {
		t.Error("expected false for unknown id")
	}
}

// Handle без возможности отмены (nil) — false.
func TestRegistry_CancelNilHandle(t *testing.T) {
	r := NewRegistry()
	r.Register("op-nil", nil)

	if r.Cancel("op-nil") {
		t.Error("expected false for nil handle")
	}
}

func TestRegistry_ListActive(t *testing.T) {
	r := NewRegistry()
	r.Register("op-b", &fakeHandle{})
	r.Register("op-a", &fakeHandle{})

	ids := r.ListActive()
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	// отсортированы для детерминизма
	if ids[0] != "op-a" || ids[1] != "op-b" {
		t.Errorf("unexpected order: %v", ids)
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{}
	r.Register("op-1", h)

	r.Remove("op-1")

	if r.Len() != 0 {
		t.Error("expected empty registry")
	}
	// Remove не отменяет
	if h.cancelled {
		t.Error("remove should not cancel the handle")
	}
	// повторный Remove — no-op
	r.Remove("op-1")
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	h1 := &fakeHandle{}
	h2 := &fakeHandle{}
	r.Register("op-1", h1)
	r.Register("op-2", h2)

	r.Clear()

	if r.Len() != 0 {
		t.Error("expected empty registry after clear")
	}
	if !h1.cancelled || !h2.cancelled {
		t.Error("clear should cancel all handles")
	}
}
