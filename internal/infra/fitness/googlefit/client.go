package googlefit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
)

const defaultBaseURL = "https://www.googleapis.com/fitness/v1/users/me"

// Client reads datasets from the Google Fit REST API.
type Client struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
}

// NewClient builds an API client. The credential is supplied per call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(base, "/"),
		timeout:   timeout,
		transport: http.DefaultTransport,
	}
}

// Fetch retrieves the points of dataSourceID inside window and normalizes them.
func (c *Client) Fetch(ctx context.Context, cred oauth2.TokenSource, dataSourceID string, window fitness.Window, metric string) (fitness.Series, error) {
	endpoint := fmt.Sprintf("%s/dataSources/%s/datasets/%s", c.baseURL, url.PathEscape(dataSourceID), DatasetID(window))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fitness.Series{}, fmt.Errorf("build dataset request: %w", err)
	}

	httpClient := &http.Client{
		Timeout:   c.timeout,
		Transport: &oauth2.Transport{Source: cred, Base: c.transport},
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fitness.Series{}, fmt.Errorf("dataset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fitness.Series{}, fmt.Errorf("dataset request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fitness.Series{}, fmt.Errorf("read dataset response: %w", err)
	}

	series, err := Normalize(body, metric)
	if err != nil {
		return fitness.Series{}, fmt.Errorf("decode dataset response: %w", err)
	}
	return series, nil
}

// DatasetID renders the nanosecond range identifier Google Fit expects.
func DatasetID(window fitness.Window) string {
	return fmt.Sprintf("%d000000-%d000000", window.StartMillis, window.EndMillis)
}
