package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const UserAgent = "Daymark/1.0 (+local)"

// NewClient is the shared HTTP client shape used by every adapter.
func NewClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}

// Get issues a GET through the limiter and returns the response for a 2xx
// status. Any other status becomes an error carrying a body excerpt.
func Get(ctx context.Context, hc *http.Client, lim *HostLimiter, rawURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if err := lim.WaitURL(ctx, rawURL); err != nil {
		return nil, err
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		res.Body.Close()
		return nil, &StatusError{Code: res.StatusCode, Body: string(body)}
	}
	return res, nil
}

// GetJSON is Get followed by a JSON decode into out.
func GetJSON(ctx context.Context, hc *http.Client, lim *HostLimiter, rawURL string, header http.Header, out any) (http.Header, error) {
	res, err := Get(ctx, hc, lim, rawURL, header)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return res.Header, fmt.Errorf("decode: %w", err)
	}
	return res.Header, nil
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}
