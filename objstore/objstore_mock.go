package objstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// ObjectStoreMock is a mock implementation of the ObjectStore interface.
// Calls go to the Func fields; a nil field falls through to an in-memory
// bucket map so tests only override what they care about.
type ObjectStoreMock struct {
	PutFunc    func(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error
	GetFunc    func(ctx context.Context, bucket, obj string) (io.ReadCloser, error)
	DeleteFunc func(ctx context.Context, bucket, obj string) error

	mu      sync.Mutex
	objects map[string][]byte
}

func (m *ObjectStoreMock) Put(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, bucket, obj, reader, size, contentType)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[bucket+"/"+obj] = data
	return nil
}

func (m *ObjectStoreMock) Get(ctx context.Context, bucket, obj string) (io.ReadCloser, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, bucket, obj)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+obj]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *ObjectStoreMock) Delete(ctx context.Context, bucket, obj string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, bucket, obj)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+obj)
	return nil
}

// GenerateObjectStoreMock returns a mock backed by an empty in-memory bucket map.
func GenerateObjectStoreMock() *ObjectStoreMock {
	return &ObjectStoreMock{objects: make(map[string][]byte)}
}
