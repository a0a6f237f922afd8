// Package garmin talks to the Garmin-style wellness API. It owns session
// login and the resilience wrapping of outbound calls; per-date fetch
// failures are returned to the caller, who decides whether to tolerate them.
package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
)

// Client is what the update service needs from the provider: raw per-day
// payloads, each independently failable.
type Client interface {
	FetchActivity(ctx context.Context, date string) (*metrics.ActivityStats, error)
	FetchSleep(ctx context.Context, date string) (*metrics.SleepStats, error)
}

// Config holds the connection settings for the HTTP client.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// HTTPClient implements Client against the provider's REST endpoints.
// A session token is obtained lazily on the first call and refreshed once on
// a 401. All calls run through a circuit breaker so a provider outage during
// a backfill fails fast instead of hammering a dead endpoint.
type HTTPClient struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]

	mu    sync.Mutex
	token string
}

// NewHTTPClient creates a provider client from config.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "garmin",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &HTTPClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
	}
}

// FetchActivity returns the raw daily activity stats for a date.
func (c *HTTPClient) FetchActivity(ctx context.Context, date string) (*metrics.ActivityStats, error) {
	var stats metrics.ActivityStats
	path := fmt.Sprintf("/usersummary-service/stats/daily/%s", date)
	if err := c.getJSON(ctx, path, &stats); err != nil {
		return nil, fmt.Errorf("fetch activity for %s: %w", date, err)
	}
	return &stats, nil
}

// FetchSleep returns the raw daily sleep stats for a date.
func (c *HTTPClient) FetchSleep(ctx context.Context, date string) (*metrics.SleepStats, error) {
	var stats metrics.SleepStats
	path := fmt.Sprintf("/sleep-service/sleep/daily/%s", date)
	if err := c.getJSON(ctx, path, &stats); err != nil {
		return nil, fmt.Errorf("fetch sleep for %s: %w", date, err)
	}
	return &stats, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, path, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		// Session expired; log in again and retry once.
		token, err = c.refreshToken(ctx)
		if err != nil {
			return err
		}
		if resp, err = c.do(ctx, path, token); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, path, token string) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		return c.client.Do(req)
	})
}

// sessionToken returns the cached token, logging in when there is none.
func (c *HTTPClient) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}
	return c.loginLocked(ctx)
}

func (c *HTTPClient) refreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *HTTPClient) loginLocked(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    c.cfg.Email,
		"password": c.cfg.Password,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/signin", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.client.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("provider login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("provider login failed with status %d", resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if session.Token == "" {
		return "", fmt.Errorf("provider login returned empty token")
	}

	c.token = session.Token
	slog.Info("[Garmin] Session established")
	return c.token, nil
}
