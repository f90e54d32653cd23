package source

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// ObjectStore abstracts the minimal object operations partition loading
// needs. Implemented by S3Store; faked in tests.
type ObjectStore interface {
	ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Store implements ObjectStore on the minio-go SDK for MinIO/S3
// connectivity.
type S3Store struct {
	client *minio.Client
}

// NewS3Store connects to an S3-compatible endpoint with static
// credentials.
func NewS3Store(endpoint, accessKey, secretKey string, useSSL bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object: connect %s: %w", endpoint, err)
	}
	return &S3Store{client: client}, nil
}

func (s *S3Store) ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	objectCh := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, fmt.Errorf("object: list %s/%s: %w", bucket, prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *S3Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("object: get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close() //nolint:errcheck

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("object: read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// ObjectReader exposes an object-store prefix as a deferred table:
// every *.parquet and *.jsonl.gz key under it is one partition.
type ObjectReader struct {
	store  ObjectStore
	bucket string
	prefix string
}

// NewObjectReader builds a reader over bucket/prefix on the given
// store.
func NewObjectReader(store ObjectStore, bucket, prefix string) *ObjectReader {
	return &ObjectReader{store: store, bucket: bucket, prefix: prefix}
}

// Partitions lists the partition keys under the prefix in sorted order.
func (r *ObjectReader) Partitions(ctx context.Context) ([]string, error) {
	keys, err := r.store.ListPrefix(ctx, r.bucket, r.prefix)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, key := range keys {
		if partitionFile(key) {
			refs = append(refs, key)
		}
	}
	sort.Strings(refs)
	return refs, nil
}

// ReadPartition fetches and materializes one object.
func (r *ObjectReader) ReadPartition(ctx context.Context, ref string) (*table.Local, error) {
	data, err := r.store.GetObject(ctx, r.bucket, ref)
	if err != nil {
		return nil, err
	}
	return decodePartition(ref, data)
}
