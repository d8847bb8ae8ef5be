// Package sources loads the chorusmap session inputs: logger positions,
// per-species detection series, the reserve perimeter and the optional
// weather and live-event feeds. The core consumes the results as plain data.
package sources

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skovlyst/chorusmap/pkg/store"
)

// ErrNotFound reports a 404 from the data server.
var ErrNotFound = errors.New("resource not found on server")

// fetchTimeout bounds every data request; the core never runs until these
// have resolved or failed.
const fetchTimeout = 15 * time.Second

var httpClient = &http.Client{Timeout: fetchTimeout}

// Loader fetches JSON resources relative to a base URL, with an optional
// on-disk cache consulted first. When Dir is set instead of BaseURL,
// resources are read straight from the local filesystem (exported season
// dumps, tests).
type Loader struct {
	BaseURL string
	Dir     string
	Cache   *store.Cache
	// CacheTTL bounds how long cached responses are served; zero keeps
	// them until Clear.
	CacheTTL time.Duration
}

// FetchBytes returns the body of baseURL/path, serving from the cache when
// possible and populating it on a successful fetch.
func (l *Loader) FetchBytes(path string) ([]byte, error) {
	if l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(path)))
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return data, err
	}
	url := l.BaseURL + "/" + path
	if l.Cache != nil {
		if data, err := l.Cache.Get(url); err == nil && data != nil {
			log.Printf("Using cached copy of %s", url)
			return data, nil
		}
	}

	log.Printf("Fetching %s", url)
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if l.Cache != nil {
		if err := l.Cache.Put(url, data, l.CacheTTL); err != nil {
			log.Printf("Failed to cache %s: %v", url, err)
		}
	}
	return data, nil
}
