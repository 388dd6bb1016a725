package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	appLog "teamcal/internal/log"
)

// Source is one subscribed feed.
type Source struct {
	// ID is stored on every imported event as its source ID.
	ID  string
	URL string
}

// FetchResult is the payload of one feed, fresh or from the disk cache.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

// cacheMeta is the HTTP validator state persisted next to a cached body.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// feedCache is the on-disk directory of a single feed URL.
type feedCache struct {
	dir string
}

func (c feedCache) metaPath() string { return filepath.Join(c.dir, "meta.json") }
func (c feedCache) bodyPath() string { return filepath.Join(c.dir, "body.ics") }

func (c feedCache) load() (cacheMeta, []byte) {
	var meta cacheMeta
	if data, err := os.ReadFile(c.metaPath()); err == nil {
		_ = json.Unmarshal(data, &meta)
	}
	body, _ := os.ReadFile(c.bodyPath())
	return meta, body
}

func (c feedCache) store(meta cacheMeta, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(c.bodyPath(), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.metaPath(), data, 0o600)
}

// Fetcher downloads feeds with conditional requests (ETag /
// Last-Modified) and falls back to the last good body on failure.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher creates a Fetcher caching under cacheDir, e.g.
// "/var/lib/teamcal/ics-cache".
func NewFetcher(cacheDir string, timeout time.Duration) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
	}
}

func (f *Fetcher) cacheFor(rawURL string) feedCache {
	sum := sha256.Sum256([]byte(rawURL))
	return feedCache{dir: filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))}
}

// Fetch downloads src. When the server is unreachable or answers with an
// error status, a previously cached body is returned instead.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("ics: source URL is empty")
	}

	cache := f.cacheFor(src.URL)
	if err := os.MkdirAll(cache.dir, 0o700); err != nil {
		return FetchResult{}, err
	}
	meta, cached := cache.load()

	fromCache := func(reason error) (FetchResult, error) {
		if len(cached) == 0 {
			return FetchResult{}, reason
		}
		appLog.Error("ics fetch failed, using cached body", reason, "id", src.ID, "url", redactURL(src.URL))
		return FetchResult{Source: src, Body: cached, FromCache: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("ics: build request: %w", err)
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("ics fetch start", "id", src.ID, "url", redactURL(src.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		return fromCache(fmt.Errorf("ics: fetch %s: %w", src.ID, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fromCache(fmt.Errorf("ics: read %s: %w", src.ID, err))
		}
		next := cacheMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := cache.store(next, body); err != nil {
			appLog.Error("ics cache save failed", err, "id", src.ID)
		}
		appLog.Info("ics fetch success", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return FetchResult{}, fmt.Errorf("ics: %s answered 304 but nothing is cached", src.ID)
		}
		appLog.Debug("ics not modified", "id", src.ID)
		return FetchResult{Source: src, Body: cached, FromCache: true}, nil
	}

	return fromCache(fmt.Errorf("ics: fetch %s: %s", src.ID, resp.Status))
}

// redactURL keeps only scheme and host so feed tokens never reach logs.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
