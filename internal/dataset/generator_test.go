package dataset

import (
	"context"
	"testing"
)

func TestGenerateColumnar_Count(t *testing.T) {
	g := NewGenerator(nil)

	data := g.GenerateColumnar(1000, 20)

	// запрошено больше, чем сетка 20×20 — разрешение поднято,
	// результат обрезан до max_points
	if data.Len() != 1000 {
		t.Errorf("expected 1000 points, got %d", data.Len())
	}

	// все колонки одной длины
	if len(data.ID) != data.Len() || len(data.Y) != data.Len() ||
		len(data.Z) != data.Len() || len(data.Value3) != data.Len() {
		t.Error("column lengths differ")
	}
}

func TestGenerateColumnar_SmallGrid(t *testing.T) {
	g := NewGenerator(nil)

	// 100 точек помещаются в сетку 20×20
	data := g.GenerateColumnar(100, 20)

	if data.Len() != 100 {
		t.Errorf("expected 100 points, got %d", data.Len())
	}
}

func TestGenerateColumnar_Bounds(t *testing.T) {
	g := NewGenerator(nil)

	data := g.GenerateColumnar(400, 20)

	for i := 0; i < data.Len(); i++ {
		if data.Y[i] < latMin || data.Y[i] > latMax {
			t.Fatalf("point %d: latitude %f out of bounds", i, data.Y[i])
		}
		if data.X[i] < lngMin || data.X[i] > lngMax {
			t.Fatalf("point %d: longitude %f out of bounds", i, data.X[i])
		}
		// влажность прижата к [0, 100]
		if data.Value3[i] < 0 || data.Value3[i] > 100 {
			t.Fatalf("point %d: humidity %f out of range", i, data.Value3[i])
		}
	}
}

func TestExecuteStreamed_ChunkArithmetic(t *testing.T) {
	g := NewGenerator(nil)

	var chunks []map[string]any
	_, err := g.ExecuteStreamed(context.Background(),
		map[string]any{"max_points": 60000, "resolution": 20},
		func(chunk map[string]any) { chunks = append(chunks, chunk) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 60000 точек по 25000 — три chunk: 25000 + 25000 + 10000
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantSizes := []int{25000, 25000, 10000}
	total := 0
	for i, chunk := range chunks {
		points := chunk["points_in_chunk"].(int)
		if points != wantSizes[i] {
			t.Errorf("chunk %d: expected %d points, got %d", i, wantSizes[i], points)
		}
		total += points

		if chunk["chunk_number"].(int) != i {
			t.Errorf("chunk %d: wrong chunk_number %v", i, chunk["chunk_number"])
		}
		if chunk["total_chunks"].(int) != 3 {
			t.Errorf("chunk %d: wrong total_chunks %v", i, chunk["total_chunks"])
		}

		isFinal := chunk["is_final_chunk"].(bool)
		if isFinal != (i == 2) {
			t.Errorf("chunk %d: wrong is_final_chunk %v", i, isFinal)
		}
	}
	if total != 60000 {
		t.Errorf("chunks sum to %d, expected 60000", total)
	}
}

func TestExecuteStreamed_ContextCancelled(t *testing.T) {
	g := NewGenerator(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.ExecuteStreamed(ctx, map[string]any{"max_points": 60000}, nil)
	if err == nil {
		t.Error("expected context error")
	}
}

func TestExecute_SingleChunk(t *testing.T) {
	g := NewGenerator(nil)

	result, err := g.Execute(context.Background(), map[string]any{"max_points": 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := result.(map[string]any)
	if resp["total_count"].(int) != 500 {
		t.Errorf("expected 500 points, got %v", resp["total_count"])
	}
	if resp["total_chunks"].(int) != 1 {
		t.Errorf("non-streamed response is a single chunk, got %v", resp["total_chunks"])
	}
	if !resp["is_final_chunk"].(bool) {
		t.Error("single chunk must be final")
	}
}
