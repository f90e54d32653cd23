package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// ReadCSV loads a CSV file into a materialized table. The first row is
// the header. Column types are inferred over the whole file: int64 when
// every non-empty cell parses as an integer, float64 when every
// non-empty cell parses as a number, string otherwise. Empty cells are
// nulls.
func ReadCSV(path string) (*table.Local, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	data := make(map[string][]any, len(headers))
	for j, name := range headers {
		cells := make([]string, 0, len(records)-1)
		for _, record := range records[1:] {
			cells = append(cells, record[j])
		}
		data[name] = inferColumn(cells)
	}
	return table.FromColumns(headers, data)
}

func inferColumn(cells []string) []any {
	isInt := true
	isFloat := true
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isFloat = false
			}
		}
		if !isInt && !isFloat {
			break
		}
	}

	out := make([]any, len(cells))
	for i, cell := range cells {
		switch {
		case cell == "":
			out[i] = nil
		case isInt:
			v, _ := strconv.ParseInt(cell, 10, 64)
			out[i] = v
		case isFloat:
			v, _ := strconv.ParseFloat(cell, 64)
			out[i] = v
		default:
			out[i] = cell
		}
	}
	return out
}
