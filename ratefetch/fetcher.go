// Package ratefetch fetches the BNR reference-rate document and caches it
// for the rest of the publication day.
//
// BNR publishes new rates once per working day, around 13:00 Bucharest time.
// A cached document is reused until the next publication mark has passed.
package ratefetch

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/remiges-tech/logharbour/logharbour"
)

// Fetcher returns the rate document at a path, going to the source only when
// the cached copy has expired.
type Fetcher struct {
	path   string
	key    string
	cache  CacheStore
	fetch  FetchFunc
	now    func() time.Time
	loc    *time.Location
	hour   int
	logger *logharbour.Logger

	// serialises refreshes so concurrent callers do not all hit the source
	mu sync.Mutex
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchFunc replaces DefaultFetch.
func WithFetchFunc(fn FetchFunc) Option {
	return func(f *Fetcher) { f.fetch = fn }
}

// WithClock fixes the current time, for tests and replays.
func WithClock(now time.Time) Option {
	return func(f *Fetcher) { f.now = func() time.Time { return now } }
}

// WithLocation sets the time zone the publication hour is read in.
func WithLocation(loc *time.Location) Option {
	return func(f *Fetcher) { f.loc = loc }
}

func WithPublishHour(hour int) Option {
	return func(f *Fetcher) { f.hour = hour }
}

func WithLogger(l *logharbour.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New returns a Fetcher for path, which must be an absolute URL with a scheme
// and host or an existing regular file.
func New(path string, cache CacheStore, opts ...Option) (*Fetcher, error) {
	if !validPath(path) {
		return nil, &InvalidPathError{Path: path}
	}
	if cache == nil {
		return nil, fmt.Errorf("ratefetch: nil cache store")
	}

	sum := md5.Sum([]byte(path))
	f := &Fetcher{
		path:  path,
		key:   hex.EncodeToString(sum[:]),
		cache: cache,
		fetch: DefaultFetch,
		now:   time.Now,
		loc:   time.Local,
		hour:  DefaultPublishHour,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logharbour.NewLogger(&logharbour.LoggerContext{}, "ratefetch", io.Discard)
	}
	f.logger = f.logger.WithModule("ratefetch")
	return f, nil
}

// Path returns the source path the fetcher was built with.
func (f *Fetcher) Path() string {
	return f.path
}

// Key returns the cache key, the hex MD5 of the path.
func (f *Fetcher) Key() string {
	return f.key
}

// Contents returns the document, from the cache when the cached copy is
// still current and from the source otherwise. A fresh document is saved
// with the current time before it is returned.
func (f *Fetcher) Contents(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	entry, err := f.cache.Load(ctx, f.key)
	if err != nil {
		// an unreadable cache counts as a miss
		f.logger.Warn().LogActivity("Rate cache load failed, fetching from source", map[string]any{
			"path":  f.path,
			"error": err.Error(),
		})
		entry = nil
	}

	if entry != nil && !Expired(entry.SaveTime, now, f.loc, f.hour) {
		f.logger.Debug0().LogActivity("Serving rates from cache", map[string]any{
			"path":     f.path,
			"saveTime": entry.SaveTime,
		})
		return entry.Source, nil
	}

	src, err := f.fetch(ctx, f.path)
	if err != nil {
		f.logger.Error(err).LogActivity("Rate document fetch failed", map[string]any{"path": f.path})
		return nil, fmt.Errorf("fetching %s: %w", f.path, err)
	}

	fresh := &Entry{Source: src, SaveTime: now}
	if err := f.cache.Save(ctx, fresh, f.key); err != nil {
		f.logger.Error(err).LogActivity("Rate cache save failed", map[string]any{"path": f.path})
		return nil, fmt.Errorf("caching %s: %w", f.path, err)
	}
	f.logger.Info().LogActivity("Fetched rate document", map[string]any{
		"path":  f.path,
		"bytes": len(src),
	})
	return src, nil
}

// String returns the document, or a description of the error that prevented
// getting it.
func (f *Fetcher) String() string {
	src, err := f.Contents(context.Background())
	if err != nil {
		return "Exception occurred: " + err.Error()
	}
	return string(src)
}
