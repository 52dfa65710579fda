package estimate

import "testing"

func TestItemCount(t *testing.T) {
	tests := []struct {
		name    string
		request map[string]any
		want    int
	}{
		{
			name:    "max_points",
			request: map[string]any{"max_points": 500000},
			want:    500000,
		},
		{
			name:    "max_points as float64 (json decode)",
			request: map[string]any{"max_points": float64(500000)},
			want:    500000,
		},
		{
			name:    "empty request degrades to default",
			request: map[string]any{},
			want:    DefaultItemCount,
		},
		{
			// max_points имеет приоритет над limit
			name:    "priority order",
			request: map[string]any{"limit": 50, "max_points": 200000},
			want:    200000,
		},
		{
			name:    "limit",
			request: map[string]any{"limit": 50},
			want:    50,
		},
		{
			name:    "count",
			request: map[string]any{"count": 777},
			want:    777,
		},
		{
			name:    "size",
			request: map[string]any{"size": 12},
			want:    12,
		},
		{
			// floor(resolution² × 100)
			name: "bounds and resolution",
			request: map[string]any{
				"bounds":     map[string]any{"min_x": 0.0, "max_x": 1.0},
				"resolution": 40,
			},
			want: 160000,
		},
		{
			// resolution без bounds — сигнала нет
			name:    "resolution without bounds",
			request: map[string]any{"resolution": 40},
			want:    DefaultItemCount,
		},
		{
			// нечисловое поле не считается сигналом
			name:    "non-numeric field skipped",
			request: map[string]any{"count": "many"},
			want:    DefaultItemCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemCount(tt.request); got != tt.want {
				t.Errorf("ItemCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChunkSize(t *testing.T) {
	tests := []struct {
		name  string
		chunk map[string]any
		want  int
	}{
		{
			name:  "points_in_chunk",
			chunk: map[string]any{"points_in_chunk": 10000},
			want:  10000,
		},
		{
			name:  "items array",
			chunk: map[string]any{"items": []any{1, 2, 3}},
			want:  3,
		},
		{
			name:  "data array",
			chunk: map[string]any{"data": []float64{1.0, 2.0}},
			want:  2,
		},
		{
			name: "columnar data x column",
			chunk: map[string]any{
				"columnar_data": map[string]any{
					"x": []float64{1, 2, 3, 4, 5},
					"y": []float64{1, 2, 3, 4, 5},
				},
			},
			want: 5,
		},
		{
			name:  "empty chunk degrades to default",
			chunk: map[string]any{},
			want:  DefaultChunkSize,
		},
		{
			// points_in_chunk приоритетнее массивов
			name: "priority order",
			chunk: map[string]any{
				"points_in_chunk": 7,
				"items":           []any{1, 2, 3},
			},
			want: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkSize(tt.chunk); got != tt.want {
				t.Errorf("ChunkSize() = %d, want %d", got, tt.want)
			}
		})
	}
}
