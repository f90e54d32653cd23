package table

import (
	"context"
	"fmt"
)

// PartitionReader supplies the partitions backing a Partitioned table.
// Implementations live outside the core (directory readers, object stores)
// or in-memory via ChunkReader.
type PartitionReader interface {
	// Partitions lists partition references in a stable order.
	Partitions(ctx context.Context) ([]string, error)
	// ReadPartition materializes a single partition as a Local chunk.
	ReadPartition(ctx context.Context, ref string) (*Local, error)
}

// Partitioned is a partition-backed table. Nothing is loaded at
// construction; Scan and Count are the explicit materialization points,
// loading one partition at a time and discarding it after use.
type Partitioned struct {
	reader PartitionReader
}

// NewPartitioned wraps a PartitionReader as a table.
func NewPartitioned(r PartitionReader) *Partitioned {
	return &Partitioned{reader: r}
}

// Kind reports KindPartitioned.
func (t *Partitioned) Kind() Kind { return KindPartitioned }

func (t *Partitioned) sealed() {}

// Scan materializes each partition in order and passes it to fn. The chunk
// is only valid for the duration of the call. Scanning stops at the first
// error from the reader, fn, or the context.
func (t *Partitioned) Scan(ctx context.Context, fn func(chunk *Local) error) error {
	refs, err := t.reader.Partitions(ctx)
	if err != nil {
		return fmt.Errorf("listing partitions: %w", err)
	}
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := t.reader.ReadPartition(ctx, ref)
		if err != nil {
			return fmt.Errorf("reading partition %s: %w", ref, err)
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the total number of rows across all partitions. This
// triggers a full scan.
func (t *Partitioned) Count(ctx context.Context) (int, error) {
	total := 0
	err := t.Scan(ctx, func(chunk *Local) error {
		total += chunk.Len()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ChunkReader serves pre-built in-memory chunks as partitions. Useful for
// programmatic callers and tests that need partitioned semantics without
// any I/O.
type ChunkReader struct {
	refs   []string
	chunks map[string]*Local
}

// NewChunkReader builds a reader over the given chunks, one partition per
// chunk in argument order.
func NewChunkReader(chunks ...*Local) *ChunkReader {
	r := &ChunkReader{
		refs:   make([]string, len(chunks)),
		chunks: make(map[string]*Local, len(chunks)),
	}
	for i, chunk := range chunks {
		ref := fmt.Sprintf("part-%06d", i)
		r.refs[i] = ref
		r.chunks[ref] = chunk
	}
	return r
}

// Partitions lists the chunk references.
func (r *ChunkReader) Partitions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), r.refs...), nil
}

// ReadPartition returns the chunk for ref.
func (r *ChunkReader) ReadPartition(ctx context.Context, ref string) (*Local, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chunk, ok := r.chunks[ref]
	if !ok {
		return nil, fmt.Errorf("unknown partition %q", ref)
	}
	return chunk, nil
}
