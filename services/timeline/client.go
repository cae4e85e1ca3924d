package timeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"showsync/models"
)

var timelineAPIBaseURL = "https://timeline-api.getpebble.com"

// setBaseURL overrides the API base URL. Used by tests.
func setBaseURL(u string) {
	timelineAPIBaseURL = u
}

// Client pushes shared pins to the Pebble timeline API.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

// NewClient creates a new timeline API client.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
	}
}

// SendSharedPin publishes pin to every subscriber of the given topics.
// Any non-2xx status is returned as an error carrying the response body so
// the caller can log the API's failure detail. Sends are never retried here;
// an unrecorded pin reappears as new on the next cycle.
func (c *Client) SendSharedPin(ctx context.Context, topics []string, pin models.Pin) error {
	body, err := json.Marshal(pin)
	if err != nil {
		return fmt.Errorf("marshal pin: %w", err)
	}

	url := timelineAPIBaseURL + "/v1/shared/pins/" + pin.ID
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-Pin-Topics", strings.Join(topics, ","))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("timeline api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("timeline pin send failed: %s - %s", resp.Status, string(respBody))
	}
	return nil
}
