package garmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeProvider mimics the wellness API: a signin endpoint that issues tokens
// and two per-date stats endpoints guarded by bearer auth.
type fakeProvider struct {
	token    string
	logins   atomic.Int32
	activity map[string]string
	sleep    map[string]string
}

func (f *fakeProvider) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/signin", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.logins.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"token": f.token})
	})

	authed := func(payloads map[string]string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if r.Header.Get("Authorization") != "Bearer "+f.token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			date := path.Base(r.URL.Path)
			body, ok := payloads[date]
			if !ok {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}
	}

	mux.HandleFunc("/usersummary-service/stats/daily/", authed(f.activity))
	mux.HandleFunc("/sleep-service/sleep/daily/", authed(f.sleep))
	return mux
}

func newTestClient(t *testing.T, f *fakeProvider) *HTTPClient {
	t.Helper()

	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	return NewHTTPClient(Config{
		BaseURL:  srv.URL,
		Email:    "user@example.com",
		Password: "secret",
		Timeout:  2 * time.Second,
	})
}

func TestHTTPClient_FetchActivity(t *testing.T) {
	f := &fakeProvider{
		token: "tok-1",
		activity: map[string]string{
			"2025-06-01": `{"totalSteps": 8000, "totalKilocalories": 2100.4, "totalDistanceMeters": 6437.3}`,
		},
	}
	c := newTestClient(t, f)

	stats, err := c.FetchActivity(context.Background(), "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, 8000, *stats.TotalSteps)
	require.Equal(t, 2100.4, *stats.TotalKilocalories)
	require.Equal(t, 6437.3, *stats.TotalDistanceMeters)
}

func TestHTTPClient_FetchSleep(t *testing.T) {
	f := &fakeProvider{
		token: "tok-1",
		sleep: map[string]string{
			"2025-06-01": `{"dailySleepDTO": {"sleepTimeSeconds": 25200, "deepSleepSeconds": 5400, "lightSleepSeconds": 14400, "remSleepSeconds": 3600, "awakeSleepSeconds": 1800}}`,
		},
	}
	c := newTestClient(t, f)

	stats, err := c.FetchSleep(context.Background(), "2025-06-01")
	require.NoError(t, err)
	require.NotNil(t, stats.DailySleep)
	require.Equal(t, 25200, *stats.DailySleep.SleepTimeSeconds)
	require.Equal(t, 5400, stats.DailySleep.DeepSleepSeconds)
}

func TestHTTPClient_LogsInOncePerSession(t *testing.T) {
	f := &fakeProvider{
		token: "tok-1",
		activity: map[string]string{
			"2025-06-01": `{"totalSteps": 100}`,
			"2025-06-02": `{"totalSteps": 200}`,
		},
	}
	c := newTestClient(t, f)

	_, err := c.FetchActivity(context.Background(), "2025-06-01")
	require.NoError(t, err)
	_, err = c.FetchActivity(context.Background(), "2025-06-02")
	require.NoError(t, err)

	require.Equal(t, int32(1), f.logins.Load())
}

func TestHTTPClient_RefreshesExpiredSession(t *testing.T) {
	f := &fakeProvider{
		token: "tok-2",
		activity: map[string]string{
			"2025-06-01": `{"totalSteps": 100}`,
		},
	}
	c := newTestClient(t, f)
	c.token = "tok-expired" // stale cached session

	stats, err := c.FetchActivity(context.Background(), "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, 100, *stats.TotalSteps)
	require.Equal(t, int32(1), f.logins.Load())
}

func TestHTTPClient_ProviderErrorSurfaces(t *testing.T) {
	f := &fakeProvider{token: "tok-1", activity: map[string]string{}}
	c := newTestClient(t, f)

	_, err := c.FetchActivity(context.Background(), "2025-06-01")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestHTTPClient_LoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(Config{BaseURL: srv.URL, Email: "user@example.com", Password: "bad"})

	_, err := c.FetchActivity(context.Background(), "2025-06-01")
	require.Error(t, err)
	require.Contains(t, err.Error(), "login failed")
}
