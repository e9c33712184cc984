package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "ordercat/1.0"
)

// StatusError is returned when a source URL answers with anything but 200.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Client loads purchase records from HTTP endpoints and local files.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client whose HTTP requests time out after timeout.
// A zero timeout uses the default of 15 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// NewClientWithHTTP wraps an existing http.Client (for testing).
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// FetchRecords GETs reqURL and decodes the body. CSV is used when the
// server says text/csv or the path ends in .csv; JSON otherwise.
func (c *Client) FetchRecords(ctx context.Context, reqURL string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/csv")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching records: %w", &StatusError{StatusCode: resp.StatusCode, URL: reqURL})
	}

	format := FormatJSON
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") || strings.HasSuffix(strings.ToLower(req.URL.Path), ".csv") {
		format = FormatCSV
	}

	records, err := ReadRecords(resp.Body, format)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return records, nil
}

// ReadFile decodes a local JSON or CSV file, picking the format from the
// extension.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return records, nil
}

// FormatForPath returns FormatCSV for .csv paths and FormatJSON otherwise.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads one source: an http(s) URL or a file path.
func (c *Client) Load(ctx context.Context, source string) ([]Record, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}
	if IsRemote(source) {
		return c.FetchRecords(ctx, source)
	}
	return ReadFile(source)
}

// LoadAll loads every source concurrently and concatenates the records in
// the order the sources were given. Any failure fails the whole load.
func (c *Client) LoadAll(ctx context.Context, sources []string) ([]Record, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	parts := make([][]Record, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			records, err := c.Load(gctx, src)
			if err != nil {
				return fmt.Errorf("loading %s: %w", src, err)
			}
			parts[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]Record, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}
