// Package objstore is a small abstraction over S3-compatible object storage.
// The rate fetcher keeps its cache entries here when running against MinIO.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// ErrObjectNotFound is returned by Get when the bucket has no such object.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is a generic interface for object store operations
type ObjectStore interface {
	Put(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, obj string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, obj string) error
}

// MinioObjStore implements ObjectStore on top of a MinIO client
type MinioObjStore struct {
	client *minio.Client
}

func NewMinioObjectStore(client *minio.Client) *MinioObjStore {
	return &MinioObjStore{client: client}
}

// EnsureBucket creates bucket unless it already exists.
func (s *MinioObjStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", bucket, err)
	}
	return nil
}

func (s *MinioObjStore) Put(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, obj, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Get retrieves an object. A missing object yields ErrObjectNotFound rather
// than a reader that fails on first use.
func (s *MinioObjStore) Get(ctx context.Context, bucket, obj string) (io.ReadCloser, error) {
	o, err := s.client.GetObject(ctx, bucket, obj, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := o.Stat(); err != nil {
		o.Close()
		return nil, mapError(err)
	}
	return o, nil
}

func (s *MinioObjStore) Delete(ctx context.Context, bucket, obj string) error {
	return s.client.RemoveObject(ctx, bucket, obj, minio.RemoveObjectOptions{})
}

func mapError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}
	return err
}
