package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseCSV reads an uploaded CSV into a header row and data rows.
// Ragged rows are tolerated; the validator treats missing cells as
// empty. A UTF-8 BOM on the first header cell is stripped.
func ParseCSV(r io.Reader) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv file is empty")
	}

	header = records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	return header, records[1:], nil
}
