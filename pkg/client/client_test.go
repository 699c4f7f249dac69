package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/neo-orbit-api/internal/testutil"
	"github.com/Sternrassler/neo-orbit-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = baseURL
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:        "valid config",
			config:      DefaultConfig("abc"),
			expectError: false,
		},
		{
			name: "empty user agent",
			config: Config{
				BaseURL: DefaultBaseURL,
				Timeout: time.Second,
			},
			expectError: true,
		},
		{
			name: "zero timeout",
			config: Config{
				BaseURL:   DefaultBaseURL,
				UserAgent: "test/1.0",
			},
			expectError: true,
		},
		{
			name: "relative base url",
			config: Config{
				BaseURL:   "/neo/browse",
				UserAgent: "test/1.0",
				Timeout:   time.Second,
			},
			expectError: true,
		},
		{
			name: "unsupported scheme",
			config: Config{
				BaseURL:   "ftp://api.nasa.gov/neo",
				UserAgent: "test/1.0",
				Timeout:   time.Second,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Error %v should wrap ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client == nil {
				t.Error("Client is nil")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("")

	if cfg.APIKey != DemoAPIKey {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, DemoAPIKey)
	}
	if cfg.Timeout != 20*time.Second {
		t.Errorf("Timeout = %s, want 20s", cfg.Timeout)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}

	if got := DefaultConfig("mine").APIKey; got != "mine" {
		t.Errorf("APIKey = %q, want %q", got, "mine")
	}
}

func TestBrowsePage_Success(t *testing.T) {
	mock := testutil.NewMockNeoWs()
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	records, err := c.BrowsePage(context.Background(), 3, 5)
	if err != nil {
		t.Fatalf("BrowsePage() error = %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(records))
	}
	for i, rec := range records {
		if rec.ID == nil {
			t.Fatalf("records[%d].ID is nil", i)
		}
		want := "p3-" + string(rune('0'+i))
		if *rec.ID != want {
			t.Errorf("records[%d].ID = %q, want %q", i, *rec.ID, want)
		}
		if rec.Hazardous != (i%2 == 1) {
			t.Errorf("records[%d].Hazardous = %v", i, rec.Hazardous)
		}
		if rec.A == nil || *rec.A != 1.458120998474684 {
			t.Errorf("records[%d].A = %v", i, rec.A)
		}
	}

	q := mock.GetLastQuery()
	if q["page"] != "3" || q["size"] != "5" || q["api_key"] != "test-key" {
		t.Errorf("query = %v, want page=3 size=5 api_key=test-key", q)
	}

	h := mock.GetLastHeader()
	if h.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", h.Get("Accept"))
	}
	if h.Get("User-Agent") != "neo-orbit-api/0.1.0" {
		t.Errorf("User-Agent = %q", h.Get("User-Agent"))
	}
}

func TestBrowsePage_EmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"page": {"size": 0}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	records, err := c.BrowsePage(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("BrowsePage() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestBrowsePage_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		resp       testutil.MockNeoWsResponse
		wantStatus int
		expected   ErrorClass
	}{
		{"client error", testutil.MockNeoWsResponse{StatusCode: 403, Body: `{"error":"API_KEY_INVALID"}`}, 403, ErrorClassClient},
		{"rate limit", testutil.NewRateLimitResponse(), 429, ErrorClassRateLimit},
		{"server error", testutil.NewServerErrorResponse(), 500, ErrorClassServer},
		{"malformed json", testutil.NewMalformedResponse(), 200, ErrorClassDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockNeoWs()
			defer mock.Close()
			mock.SetPage(0, tt.resp)

			c := newTestClient(t, mock.URL())

			records, err := c.BrowsePage(context.Background(), 0, 20)
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if records != nil {
				t.Errorf("records = %v, want nil", records)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Error %T should be *APIError", err)
			}
			if apiErr.ErrorClass != tt.expected {
				t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, tt.expected)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if mock.GetRequestCount() != 1 {
				t.Errorf("RequestCount = %d, want 1 (no retry)", mock.GetRequestCount())
			}
		})
	}
}

func TestBrowsePage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url)

	_, err := c.BrowsePage(context.Background(), 0, 20)
	if err == nil {
		t.Fatal("Expected error but got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Error %T should be *APIError", err)
	}
	if apiErr.ErrorClass != ErrorClassNetwork {
		t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, ErrorClassNetwork)
	}
	if strings.Contains(err.Error(), "test-key") {
		t.Errorf("Error %q leaks the api key", err)
	}
}

func TestBrowsePage_Timeout(t *testing.T) {
	mock := testutil.NewMockNeoWs()
	defer mock.Close()
	mock.SetPage(0, testutil.MockNeoWsResponse{
		StatusCode: http.StatusOK,
		Body:       `{"near_earth_objects": []}`,
		Delay:      200 * time.Millisecond,
	})

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	cfg.Timeout = 20 * time.Millisecond
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = c.BrowsePage(context.Background(), 0, 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorClass != ErrorClassNetwork {
		t.Errorf("BrowsePage() error = %v, want network APIError", err)
	}
}

func TestPageURL_PreservesBaseQuery(t *testing.T) {
	c := newTestClient(t, "https://example.test/browse?detailed=false")

	got := c.pageURL(2, 10)
	for _, part := range []string{"detailed=false", "page=2", "size=10", "api_key=test-key"} {
		if !strings.Contains(got, part) {
			t.Errorf("pageURL() = %q, missing %q", got, part)
		}
	}
}

func TestBrowsePage_NonObjectOrbitalData(t *testing.T) {
	for _, bad := range []string{`false`, `""`, `[]`, `"x"`, `null`, `42`} {
		t.Run(bad, func(t *testing.T) {
			mock := testutil.NewMockNeoWs()
			defer mock.Close()
			mock.SetPage(0, testutil.MockNeoWsResponse{
				StatusCode: http.StatusOK,
				Body: `{"near_earth_objects": [
					{"id": "1", "orbital_data": {"eccentricity": "0.5"}},
					{"id": "2", "orbital_data": ` + bad + `}
				]}`,
			})

			c := newTestClient(t, mock.URL())

			records, err := c.BrowsePage(context.Background(), 0, 2)
			if err != nil {
				t.Fatalf("BrowsePage() error = %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("len(records) = %d, want 2", len(records))
			}

			good, degraded := records[0], records[1]
			if good.E == nil || *good.E != 0.5 {
				t.Errorf("records[0].E = %v, want 0.5", good.E)
			}
			if degraded.ID == nil || *degraded.ID != "2" {
				t.Errorf("records[1].ID = %v, want 2", degraded.ID)
			}
			if degraded.A != nil || degraded.E != nil || degraded.M0 != nil {
				t.Errorf("records[1] orbital fields should be nil, got %+v", degraded)
			}
		})
	}
}

// countingTransport counts round trips before delegating.
type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return t.next.RoundTrip(req)
}

func TestSetHTTPClient(t *testing.T) {
	mock := testutil.NewMockNeoWs()
	defer mock.Close()

	c := newTestClient(t, mock.URL())
	transport := &countingTransport{next: http.DefaultTransport}
	c.SetHTTPClient(&http.Client{Transport: transport, Timeout: time.Second})

	records, err := c.BrowsePage(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("BrowsePage() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}
	if transport.calls != 1 {
		t.Errorf("transport calls = %d, want 1", transport.calls)
	}
}

func TestMetricsRegisteredOnServiceRegistry(t *testing.T) {
	mock := testutil.NewMockNeoWs()
	defer mock.Close()

	c := newTestClient(t, mock.URL())
	if _, err := c.BrowsePage(context.Background(), 0, 1); err != nil {
		t.Fatalf("BrowsePage() error = %v", err)
	}

	gatherer, ok := metrics.Registry.(prometheus.Gatherer)
	if !ok {
		t.Fatalf("Registry %T is not a Gatherer", metrics.Registry)
	}
	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "neows_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("neows_requests_total not registered on metrics.Registry")
	}
}
