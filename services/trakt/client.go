package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"showsync/models"
)

var traktAPIBaseURL = "https://api.trakt.tv"

const traktAPIVersion = "2"

// setBaseURL overrides the API base URL. Used by tests.
func setBaseURL(u string) {
	traktAPIBaseURL = u
}

// Client fetches the airing schedule from the Trakt API.
type Client struct {
	httpClient *http.Client
	clientID   string
}

// NewClient creates a new Trakt API client.
func NewClient(clientID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clientID:   clientID,
	}
}

// setTraktHeaders adds required Trakt API headers to a request.
func (c *Client) setTraktHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", traktAPIVersion)
	req.Header.Set("trakt-api-key", c.clientID)
}

// Schedule fetches the "all shows" calendar for the window starting at
// start and spanning days. Transient failures (transport errors, 5xx, 429)
// are retried with backoff inside this call; any other non-2xx status is
// returned immediately.
func (c *Client) Schedule(ctx context.Context, start time.Time, days int) ([]models.ScheduleEntry, error) {
	url := fmt.Sprintf("%s/calendars/all/shows/%s/%d",
		traktAPIBaseURL, start.Format("2006-01-02"), days)

	var entries []models.ScheduleEntry
	err := retry.Do(
		func() error {
			return c.fetchSchedule(ctx, url, &entries)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) fetchSchedule(ctx context.Context, url string, dest *[]models.ScheduleEntry) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setTraktHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{fmt.Errorf("trakt api request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("trakt schedule failed: %s - %s", resp.Status, string(respBody))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return &transientError{err}
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("trakt decode error: %w", err)
	}
	return nil
}

// transientError marks a failure worth retrying within one fetch.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
