package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCSV читает весь файл: заголовок и все строки данных.
func ParseCSV(r io.Reader) (header []string, records [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err = reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	records, err = reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv records: %w", err)
	}

	return header, records, nil
}

// RowsFromRecords конвертирует строки CSV в карты "колонка → значение".
// Числовые значения конвертируются во float64, остальные остаются
// строками — в таком виде строки уходят в БД и пагинацию.
func RowsFromRecords(header []string, records [][]string) []map[string]any {
	rows := make([]map[string]any, 0, len(records))

	for _, rec := range records {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i >= len(rec) {
				row[name] = nil
				continue
			}
			raw := strings.TrimSpace(rec[i])
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				row[name] = v
			} else {
				row[name] = raw
			}
		}
		rows = append(rows, row)
	}

	return rows
}
