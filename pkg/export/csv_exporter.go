package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter writes a dataset as a header line followed by one record per row.
// Cells missing from a row are left empty. CSV has no title line.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Extension returns the file extension for CSV reports.
func (e *CSVExporter) Extension() string {
	return "csv"
}

// Render encodes data; the title is ignored.
func (e *CSVExporter) Render(data Dataset, _ string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv report has no columns")
	}
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for col, header := range data.Headers {
			record[col] = row[header]
		}
		records = append(records, record)
	}

	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("encode csv report: %w", err)
	}
	return buf.Bytes(), nil
}
