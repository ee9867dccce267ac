// Package meteoapi fetches raw readings from an upstream meteo API exposing
// GET /measurements and GET /measurements/{location}.
package meteoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
)

// ErrNotFound is returned when the upstream answers 404 for a location.
var ErrNotFound = errors.New("meteoapi: not found")

// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL (scheme and host, with
// an optional path prefix). Requests time out after timeout; zero means 5s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// wireReading mirrors the upstream JSON, whose timestamps are not always RFC3339.
type wireReading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Location    string  `json:"location"`
	Timestamp   string  `json:"timestamp"`
}

// FetchReadings returns every reading the upstream holds, in upstream order.
func (c *Client) FetchReadings(ctx context.Context) ([]types.Reading, error) {
	return c.get(ctx, "measurements")
}

// FetchReadingsByLocation returns the readings for one location.
func (c *Client) FetchReadingsByLocation(ctx context.Context, location string) ([]types.Reading, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("location cannot be empty")
	}
	return c.get(ctx, "measurements", location)
}

func (c *Client) get(ctx context.Context, segments ...string) ([]types.Reading, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath(segments...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u.Path)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var wire []wireReading
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]types.Reading, 0, len(wire))
	for i, w := range wire {
		ts, err := ParseTimestamp(w.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		out = append(out, types.Reading{
			Temperature: w.Temperature,
			Humidity:    w.Humidity,
			Location:    w.Location,
			Timestamp:   ts,
		})
	}
	return out, nil
}

// Layouts accepted for upstream timestamps, tried in order. Zone-less
// layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses the timestamp forms meteo APIs commonly emit.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
