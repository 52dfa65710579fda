package capability

import (
	"testing"

	"github.com/shaiso/Datalens/internal/domain"
)

func TestDetect_LightMethod(t *testing.T) {
	d := NewDetector()

	caps := d.Detect("GetProject", "GetProjectRequest", "GetProjectResponse", false)

	if caps.SupportsWorkerThread {
		t.Error("CRUD method should not support worker thread")
	}
	if caps.SupportsProgress || caps.SupportsCancellation {
		t.Error("CRUD method should not support progress or cancellation")
	}
	if caps.MemoryCategory != domain.MemoryLow {
		t.Errorf("expected low, got %s", caps.MemoryCategory)
	}
	// для low рекомендации размера chunk нет
	if caps.RecommendedChunkSize != 0 {
		t.Errorf("expected no chunk size recommendation, got %d", caps.RecommendedChunkSize)
	}
}

func TestDetect_BatchMethod(t *testing.T) {
	d := NewDetector()

	caps := d.Detect("GetBatchDataColumnar", "GetBatchDataRequest", "GetBatchDataColumnarResponse", false)

	if !caps.SupportsWorkerThread {
		t.Error("batch method should support worker thread")
	}
	if !caps.SupportsProgress {
		t.Error("batch method should support progress")
	}
	if !caps.SupportsCancellation {
		t.Error("batch method should support cancellation")
	}
	if caps.MemoryCategory != domain.MemoryHigh {
		t.Errorf("expected high, got %s", caps.MemoryCategory)
	}
	if caps.RecommendedChunkSize != chunkSizeHigh {
		t.Errorf("expected %d, got %d", chunkSizeHigh, caps.RecommendedChunkSize)
	}
}

func TestDetect_AnalyzeMethod(t *testing.T) {
	d := NewDetector()

	caps := d.Detect("AnalyzeCsvForProject", "AnalyzeCsvForProjectRequest", "AnalyzeCsvForProjectResponse", false)

	if !caps.SupportsWorkerThread {
		t.Error("analyze method should support worker thread")
	}
	if caps.MemoryCategory != domain.MemoryMedium {
		t.Errorf("expected medium, got %s", caps.MemoryCategory)
	}
	if caps.RecommendedChunkSize != chunkSizeMedium {
		t.Errorf("expected %d, got %d", chunkSizeMedium, caps.RecommendedChunkSize)
	}
}

// batch перекрывает medium: метод содержит и "process", и "batch".
func TestDetect_BatchOverridesMedium(t *testing.T) {
	d := NewDetector()

	caps := d.Detect("ProcessBatchUpload", "ProcessBatchUploadRequest", "ProcessBatchUploadResponse", false)

	if caps.MemoryCategory != domain.MemoryHigh {
		t.Errorf("batch should override medium, got %s", caps.MemoryCategory)
	}
}

// generate + MaxPoints в типе запроса даёт ultra поверх всего —
// это самый тяжёлый профиль (генерация полного набора точек).
func TestDetect_UltraPrecedence(t *testing.T) {
	d := NewDetector()

	caps := d.Detect("generateDataset", "GetColumnarDataMaxPointsRequest", "GetColumnarDataResponse", false)

	if caps.MemoryCategory != domain.MemoryUltra {
		t.Errorf("expected ultra, got %s", caps.MemoryCategory)
	}
	if caps.RecommendedChunkSize != chunkSizeUltra {
		t.Errorf("expected %d, got %d", chunkSizeUltra, caps.RecommendedChunkSize)
	}
}

func TestDetect_StreamingFlag(t *testing.T) {
	d := NewDetector()

	// имя и типы ничего не сигнализируют, но вызов streaming
	caps := d.Detect("GetDatasetTableData", "GetDatasetTableDataRequest", "GetDatasetTableDataResponse", true)

	if !caps.SupportsWorkerThread {
		t.Error("streaming call should support worker thread")
	}
	if !caps.SupportsStreaming {
		t.Error("streaming call should support streaming")
	}
	if caps.MemoryCategory != domain.MemoryHigh {
		t.Errorf("streaming should raise category to high, got %s", caps.MemoryCategory)
	}
}

// Detect — чистая функция: повторный вызов с теми же аргументами
// возвращает идентичный результат.
func TestDetect_Deterministic(t *testing.T) {
	d := NewDetector()

	first := d.Detect("GetBatchDataColumnarStreamed", "GetBatchDataRequest", "ColumnarDataChunk", true)
	second := d.Detect("GetBatchDataColumnarStreamed", "GetBatchDataRequest", "ColumnarDataChunk", true)

	if first != second {
		t.Errorf("detect is not deterministic: %+v vs %+v", first, second)
	}
}

func TestDetect_HeavyRequestTypeAlone(t *testing.T) {
	d := NewDetector()

	// имя метода нейтральное, но тип запроса сигнализирует bulk payload
	caps := d.Detect("UploadData", "BulkUploadRequest", "UploadDataResponse", false)

	if !caps.SupportsWorkerThread {
		t.Error("bulk request type should qualify for worker thread")
	}
}
