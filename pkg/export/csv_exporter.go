package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a table whose rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Sheet is a titled dataset, optionally preceded by caption lines.
type Sheet struct {
	Title    string
	Captions []string
	Data     Dataset
}

// CSVExporter writes sheets as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes captions as single-cell lines, then the header row and body.
func (e *CSVExporter) Render(sheet Sheet) ([]byte, error) {
	if len(sheet.Data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for _, caption := range sheet.Captions {
		if err := writer.Write([]string{caption}); err != nil {
			return nil, fmt.Errorf("write csv caption: %w", err)
		}
	}
	if err := writer.Write(sheet.Data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range sheet.Data.Rows {
		record := make([]string, len(sheet.Data.Headers))
		for i, header := range sheet.Data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
