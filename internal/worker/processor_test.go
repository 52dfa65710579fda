package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSession_ProcessChunks(t *testing.T) {
	p := NewProcessor(nil)

	var mu sync.Mutex
	var events []ProgressEvent

	session, err := p.StartSession("op-1", 300, func(e ProgressEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	// три chunk по 100 элементов
	for i := 0; i < 3; i++ {
		chunk := map[string]any{"points_in_chunk": 100, "chunk_number": i}
		if err := session.PostChunk(chunk); err != nil {
			t.Fatalf("post chunk %d: %v", i, err)
		}
	}

	stats, err := session.Finalize(context.Background())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if stats.ChunksProcessed != 3 {
		t.Errorf("expected 3 chunks, got %d", stats.ChunksProcessed)
	}
	if stats.ItemsProcessed != 300 {
		t.Errorf("expected 300 items, got %d", stats.ItemsProcessed)
	}

	// progress события пришли по порядку
	mu.Lock()
	defer mu.Unlock()
	if len(events) != 3 {
		t.Fatalf("expected 3 progress events, got %d", len(events))
	}
	for i, e := range events {
		if e.CurrentChunk != i+1 {
			t.Errorf("event %d: expected chunk %d, got %d", i, i+1, e.CurrentChunk)
		}
	}
	if events[2].ProcessedItems != 300 {
		t.Errorf("expected 300 processed in last event, got %d", events[2].ProcessedItems)
	}
	if events[2].Percentage != 100 {
		t.Errorf("expected 100%%, got %f", events[2].Percentage)
	}
}

func TestSession_CacheHits(t *testing.T) {
	p := NewProcessor(nil)

	session, err := p.StartSession("op-cache", 0, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	// одинаковые chunks — второй и третий должны попасть в кэш
	chunk := map[string]any{"points_in_chunk": 50, "chunk_number": 0}
	for i := 0; i < 3; i++ {
		if err := session.PostChunk(chunk); err != nil {
			t.Fatalf("post chunk: %v", err)
		}
	}

	stats, err := session.Finalize(context.Background())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if stats.CacheHits != 2 {
		t.Errorf("expected 2 cache hits, got %d", stats.CacheHits)
	}
}

func TestSession_Cancel(t *testing.T) {
	p := NewProcessor(nil)

	session, err := p.StartSession("op-cancel", 0, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if err := session.PostChunk(map[string]any{"points_in_chunk": 10}); err != nil {
		t.Fatalf("post chunk: %v", err)
	}

	session.Cancel()

	// после отмены PostChunk возвращает ErrCancelled
	if err := session.PostChunk(map[string]any{"points_in_chunk": 10}); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}

	// Finalize тоже возвращает маркер отмены, но со статистикой
	stats, err := session.Finalize(context.Background())
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled from finalize, got %v", err)
	}
	if stats == nil {
		t.Fatal("expected stats even for cancelled session")
	}
}

func TestSession_DoubleFinalize(t *testing.T) {
	p := NewProcessor(nil)

	session, err := p.StartSession("op-double", 0, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if _, err := session.Finalize(context.Background()); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if _, err := session.Finalize(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestProcessor_DuplicateSession(t *testing.T) {
	p := NewProcessor(nil)

	session, err := p.StartSession("op-dup", 0, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	defer session.Finalize(context.Background())

	if _, err := p.StartSession("op-dup", 0, nil); !errors.Is(err, ErrSessionExists) {
		t.Errorf("expected ErrSessionExists, got %v", err)
	}
}

func TestProcessor_SessionLifecycle(t *testing.T) {
	p := NewProcessor(nil)

	session, err := p.StartSession("op-life", 0, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if p.ActiveSessions() != 1 {
		t.Errorf("expected 1 active session, got %d", p.ActiveSessions())
	}

	if _, err := session.Finalize(context.Background()); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if p.ActiveSessions() != 0 {
		t.Errorf("expected 0 active sessions after finalize, got %d", p.ActiveSessions())
	}
}

func TestProcessor_Close(t *testing.T) {
	p := NewProcessor(nil)

	session, err := p.StartSession("op-close", 0, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	p.Close()

	// все sessions отменены
	if !session.Cancelled() {
		t.Error("session should be cancelled after processor close")
	}

	// новые sessions не создаются
	if _, err := p.StartSession("op-after", 0, nil); !errors.Is(err, ErrProcessorClosed) {
		t.Errorf("expected ErrProcessorClosed, got %v", err)
	}
}

func TestSession_ConcurrentSessions(t *testing.T) {
	p := NewProcessor(nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			id := "op-concurrent-" + string(rune('a'+n))
			session, err := p.StartSession(id, 0, nil)
			if err != nil {
				t.Errorf("start %s: %v", id, err)
				return
			}

			for j := 0; j < 10; j++ {
				chunk := map[string]any{"points_in_chunk": 10, "session": n, "chunk_number": j}
				if err := session.PostChunk(chunk); err != nil {
					t.Errorf("post %s/%d: %v", id, j, err)
					return
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			stats, err := session.Finalize(ctx)
			if err != nil {
				t.Errorf("finalize %s: %v", id, err)
				return
			}
			if stats.ChunksProcessed != 10 {
				t.Errorf("%s: expected 10 chunks, got %d", id, stats.ChunksProcessed)
			}
		}(i)
	}
	wg.Wait()

	if p.ActiveSessions() != 0 {
		t.Errorf("expected 0 active sessions, got %d", p.ActiveSessions())
	}
}
