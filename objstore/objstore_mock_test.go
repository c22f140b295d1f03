package objstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStoreMockRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := GenerateObjectStoreMock()

	content := []byte("<DataSet/>")
	require.NoError(t, store.Put(ctx, "rates", "today", bytes.NewReader(content), int64(len(content)), "application/xml"))

	r, err := store.Get(ctx, "rates", "today")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, "rates", "today"))
	_, err = store.Get(ctx, "rates", "today")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestObjectStoreMockOverrides(t *testing.T) {
	boom := errors.New("boom")
	store := &ObjectStoreMock{
		PutFunc: func(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error {
			return boom
		},
	}
	err := store.Put(context.Background(), "b", "o", bytes.NewReader(nil), 0, "text/plain")
	assert.ErrorIs(t, err, boom)

	// unset funcs still work on a zero value
	_, err = store.Get(context.Background(), "b", "o")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
