package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// DirReader exposes a local directory as a deferred table: every
// *.parquet and *.jsonl.gz file in it is one partition.
type DirReader struct {
	dir string
}

// NewDirReader builds a reader over dir. The directory is only touched
// when partitions are listed or read.
func NewDirReader(dir string) *DirReader {
	return &DirReader{dir: dir}
}

// Partitions lists the partition file names in sorted order.
func (r *DirReader) Partitions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("dir: list %s: %w", r.dir, err)
	}

	var refs []string
	for _, entry := range entries {
		if entry.IsDir() || !partitionFile(entry.Name()) {
			continue
		}
		refs = append(refs, entry.Name())
	}
	sort.Strings(refs)
	return refs, nil
}

// ReadPartition materializes one partition file.
func (r *DirReader) ReadPartition(ctx context.Context, ref string) (*table.Local, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.dir, ref))
	if err != nil {
		return nil, fmt.Errorf("dir: read %s: %w", ref, err)
	}
	return decodePartition(ref, data)
}
