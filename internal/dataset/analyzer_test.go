package dataset

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Datalens/internal/domain"
)

const sampleCSV = `sensor_id,longitude,latitude,elevation,temperature,city
s1,-70.6,-33.4,520.5,21.3,Santiago
s2,-70.7,-33.5,498.0,19.8,Santiago
s3,-70.5,-33.3,541.2,22.1,Valparaiso
`

func TestAnalyzeCSV_ColumnsAndTypes(t *testing.T) {
	a := NewAnalyzer(nil)

	analysis, err := a.AnalyzeCSV(strings.NewReader(sampleCSV), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(analysis.Columns) != 6 {
		t.Fatalf("expected 6 columns, got %d", len(analysis.Columns))
	}

	types := map[string]string{}
	for _, c := range analysis.Columns {
		types[c.Name] = c.Type
	}
	if types["longitude"] != "number" {
		t.Errorf("longitude should be number, got %s", types["longitude"])
	}
	if types["city"] != "string" {
		t.Errorf("city should be string, got %s", types["city"])
	}
	if types["sensor_id"] != "string" {
		t.Errorf("sensor_id should be string, got %s", types["sensor_id"])
	}
}

func TestAnalyzeCSV_AutoMapping(t *testing.T) {
	a := NewAnalyzer(nil)

	analysis, err := a.AnalyzeCSV(strings.NewReader(sampleCSV), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.AutoMapping["id"] != "sensor_id" {
		t.Errorf("expected id → sensor_id, got %q", analysis.AutoMapping["id"])
	}
	if analysis.AutoMapping["x"] != "longitude" {
		t.Errorf("expected x → longitude, got %q", analysis.AutoMapping["x"])
	}
	if analysis.AutoMapping["y"] != "latitude" {
		t.Errorf("expected y → latitude, got %q", analysis.AutoMapping["y"])
	}
	if analysis.AutoMapping["z"] != "elevation" {
		t.Errorf("expected z → elevation, got %q", analysis.AutoMapping["z"])
	}
}

// year не распознаётся как ось y, хотя содержит "y".
func TestAnalyzeCSV_YearIsNotYAxis(t *testing.T) {
	a := NewAnalyzer(nil)

	csv := "year,value\n2024,10\n"
	analysis, err := a.AnalyzeCSV(strings.NewReader(csv), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := analysis.AutoMapping["y"]; ok {
		t.Errorf("year must not map to y axis: %v", analysis.AutoMapping)
	}
}

func TestAnalyzeCSV_EmptyFile(t *testing.T) {
	a := NewAnalyzer(nil)

	if _, err := a.AnalyzeCSV(strings.NewReader(""), 2); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestComputeColumnStats_Numeric(t *testing.T) {
	header := []string{"value"}
	records := [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}}

	stats := ComputeColumnStats(uuid.New(), header, records)
	if len(stats) != 1 {
		t.Fatalf("expected 1 column, got %d", len(stats))
	}

	s := stats[0]
	if s.ColumnType != domain.ColumnTypeNumeric {
		t.Fatalf("expected numeric, got %s", s.ColumnType)
	}
	if s.Count != 5 {
		t.Errorf("expected count 5, got %d", s.Count)
	}
	if *s.Mean != 3 {
		t.Errorf("expected mean 3, got %f", *s.Mean)
	}
	if *s.Min != 1 || *s.Max != 5 {
		t.Errorf("expected min 1 max 5, got %f/%f", *s.Min, *s.Max)
	}
	if *s.Q50 != 3 {
		t.Errorf("expected median 3, got %f", *s.Q50)
	}
	if *s.Q25 != 2 || *s.Q75 != 4 {
		t.Errorf("expected quartiles 2/4, got %f/%f", *s.Q25, *s.Q75)
	}
}

func TestComputeColumnStats_Categorical(t *testing.T) {
	header := []string{"city"}
	records := [][]string{{"Santiago"}, {"Santiago"}, {"Valparaiso"}, {""}}

	stats := ComputeColumnStats(uuid.New(), header, records)
	s := stats[0]

	if s.ColumnType != domain.ColumnTypeCategorical {
		t.Fatalf("expected categorical, got %s", s.ColumnType)
	}
	if s.Count != 3 {
		t.Errorf("expected count 3, got %d", s.Count)
	}
	if s.NullCount != 1 {
		t.Errorf("expected 1 null, got %d", s.NullCount)
	}
	if s.UniqueCount != 2 {
		t.Errorf("expected 2 unique, got %d", s.UniqueCount)
	}
	if s.Mean != nil {
		t.Error("categorical column must not have a mean")
	}
}
