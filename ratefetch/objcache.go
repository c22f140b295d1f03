package ratefetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/remiges-tech/leu/objstore"
)

// ObjectCache stores entries as JSON objects in an object store bucket, one
// object per key. An object that does not decode is deleted so the next
// Save starts clean.
type ObjectCache struct {
	Store  objstore.ObjectStore
	Bucket string
	Prefix string
}

func NewObjectCache(store objstore.ObjectStore, bucket, prefix string) *ObjectCache {
	return &ObjectCache{Store: store, Bucket: bucket, Prefix: prefix}
}

func (c *ObjectCache) objectName(key string) string {
	return c.Prefix + key + ".json"
}

func (c *ObjectCache) Load(ctx context.Context, key string) (*Entry, error) {
	r, err := c.Store.Get(ctx, c.Bucket, c.objectName(key))
	if errors.Is(err, objstore.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", c.Bucket, c.objectName(key), err)
	}
	defer r.Close()

	var e Entry
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		decodeErr := fmt.Errorf("decoding %s/%s: %w", c.Bucket, c.objectName(key), err)
		if delErr := c.Store.Delete(ctx, c.Bucket, c.objectName(key)); delErr != nil {
			return nil, errors.Join(decodeErr, delErr)
		}
		return nil, decodeErr
	}
	return &e, nil
}

func (c *ObjectCache) Save(ctx context.Context, entry *Entry, key string) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	err = c.Store.Put(ctx, c.Bucket, c.objectName(key), bytes.NewReader(data), int64(len(data)), "application/json")
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", c.Bucket, c.objectName(key), err)
	}
	return nil
}
