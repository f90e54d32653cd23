package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// partitionFile reports whether a file name is a recognized partition
// format.
func partitionFile(name string) bool {
	return strings.HasSuffix(name, ".parquet") || strings.HasSuffix(name, ".jsonl.gz")
}

// decodePartition dispatches on the partition file name.
func decodePartition(ref string, data []byte) (*table.Local, error) {
	switch {
	case strings.HasSuffix(ref, ".parquet"):
		return decodeParquet(ref, data)
	case strings.HasSuffix(ref, ".jsonl.gz"):
		return decodeJSONLines(ref, data)
	default:
		return nil, fmt.Errorf("unsupported partition format %q", filepath.Base(ref))
	}
}

// decodeParquet reads one parquet object column by column. Values come
// back typed by the physical schema (int64, float64, string, bool) with
// nil for nulls.
func decodeParquet(ref string, data []byte) (*table.Local, error) {
	pf := buffer.NewBufferFileFromBytes(data)
	pr, err := reader.NewParquetColumnReader(pf, 1)
	if err != nil {
		return nil, fmt.Errorf("parquet: open %s: %w", ref, err)
	}
	defer pr.ReadStop()

	rows := pr.GetNumRows()
	names := make([]string, 0, len(pr.SchemaHandler.ValueColumns))
	cols := make(map[string][]any, len(pr.SchemaHandler.ValueColumns))
	for _, inPath := range pr.SchemaHandler.ValueColumns {
		parts := strings.Split(pr.SchemaHandler.InPathToExPath[inPath], common.PAR_GO_PATH_DELIMITER)
		name := parts[len(parts)-1]

		vals, _, _, err := pr.ReadColumnByPath(inPath, rows)
		if err != nil {
			return nil, fmt.Errorf("parquet: read column %q of %s: %w", name, ref, err)
		}
		names = append(names, name)
		cols[name] = vals
	}
	return table.FromColumns(names, cols)
}

// decodeJSONLines reads one gzip-compressed JSON-lines object. Columns
// are the sorted union of keys across records; absent keys are nulls.
func decodeJSONLines(ref string, data []byte) (*table.Local, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("jsonl: open %s: %w", ref, err)
	}
	defer gz.Close() //nolint:errcheck

	dec := json.NewDecoder(gz)
	var records []map[string]any
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("jsonl: decode %s: %w", ref, err)
		}
		records = append(records, rec)
	}

	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
		}
	}
	sort.Strings(names)
	return table.FromRecords(names, records), nil
}
