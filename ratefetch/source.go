package ratefetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// FetchFunc retrieves the raw document at path.
type FetchFunc func(ctx context.Context, path string) ([]byte, error)

// InvalidPathError is returned by New for a path that is neither an absolute
// URL nor an existing file.
type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("supplied XML file path does not seem to be reachable. Path: %s", e.Path)
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// DefaultFetch GETs URLs and reads anything else from the file system.
func DefaultFetch(ctx context.Context, path string) ([]byte, error) {
	if !isURL(path) {
		return os.ReadFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func isURL(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func validPath(path string) bool {
	if isURL(path) {
		return true
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
