// Package testutil provides testing utilities for the NeoWs client and API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// BrowsePath is the path served by the mock, mirroring the real endpoint.
const BrowsePath = "/neo/rest/v1/neo/browse"

// MockNeoWsResponse defines the behavior for one mocked browse page.
type MockNeoWsResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockNeoWs is a configurable mock of the NeoWs browse endpoint. Pages not
// configured explicitly are served by a generator that returns Size objects
// whose ids encode the page and position ("p<page>-<n>").
type MockNeoWs struct {
	server *httptest.Server
	mu     sync.RWMutex
	pages  map[int]MockNeoWsResponse

	// Tracking
	RequestCount int
	Pages        []int
	LastQuery    map[string]string
	LastHeader   http.Header
}

// NewMockNeoWs creates a new mock NeoWs server.
func NewMockNeoWs() *MockNeoWs {
	mock := &MockNeoWs{
		pages: make(map[int]MockNeoWsResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != BrowsePath {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("size"))

		mock.mu.Lock()
		mock.RequestCount++
		mock.Pages = append(mock.Pages, page)
		mock.LastHeader = r.Header.Clone()
		mock.LastQuery = map[string]string{
			"page":    q.Get("page"),
			"size":    q.Get("size"),
			"api_key": q.Get("api_key"),
		}
		resp, exists := mock.pages[page]
		mock.mu.Unlock()

		if exists {
			if resp.Delay > 0 {
				time.Sleep(resp.Delay)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(resp.StatusCode)
			if resp.Body != "" {
				w.Write([]byte(resp.Body))
			}
			return
		}

		mock.defaultHandler(w, page, size)
	}))

	return mock
}

// URL returns the browse endpoint URL of the mock server.
func (m *MockNeoWs) URL() string {
	return m.server.URL + BrowsePath
}

// Close shuts down the mock server.
func (m *MockNeoWs) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockNeoWs) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Pages = nil
	m.LastQuery = nil
	m.LastHeader = nil
}

// SetPage configures the response for one page number.
func (m *MockNeoWs) SetPage(page int, resp MockNeoWsResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page] = resp
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockNeoWs) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPages returns the page numbers requested, in order.
func (m *MockNeoWs) GetPages() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.Pages...)
}

// GetLastQuery returns the tracked query parameters of the last request.
func (m *MockNeoWs) GetLastQuery() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// GetLastHeader returns the headers of the last request.
func (m *MockNeoWs) GetLastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastHeader
}

// defaultHandler serves a generated page of size objects.
func (m *MockNeoWs) defaultHandler(w http.ResponseWriter, page, size int) {
	objects := make([]map[string]any, 0, size)
	for n := 0; n < size; n++ {
		objects = append(objects, NeoObject(fmt.Sprintf("p%d-%d", page, n), n%2 == 1))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(BrowseBody(objects...))
}

// NeoObject builds a browse object in the NeoWs shape. Orbital values are
// strings, as the real API sends them.
func NeoObject(id string, hazardous bool) map[string]any {
	return map[string]any{
		"id":                                id,
		"neo_reference_id":                  id,
		"name":                              "(" + id + ")",
		"is_potentially_hazardous_asteroid": hazardous,
		"orbital_data": map[string]any{
			"orbit_id":                 "1",
			"semi_major_axis":          "1.458120998474684",
			"eccentricity":             ".2228359407071628",
			"inclination":              "10.82846651399785",
			"ascending_node_longitude": "304.2701025753316",
			"perihelion_argument":      "178.9297536744151",
			"epoch_osculation":         "2461000.5",
			"mean_anomaly":             "310.5543277370992",
			"mean_motion":              ".5597752949285997",
		},
	}
}

// BrowseBody wraps objects in a browse payload.
func BrowseBody(objects ...map[string]any) map[string]any {
	if objects == nil {
		objects = []map[string]any{}
	}
	return map[string]any{
		"links":              map[string]any{"self": "http://localhost" + BrowsePath},
		"page":               map[string]any{"size": len(objects)},
		"near_earth_objects": objects,
	}
}

// NewPageResponse creates a 200 OK response with the given objects.
func NewPageResponse(objects ...map[string]any) MockNeoWsResponse {
	data, _ := json.Marshal(BrowseBody(objects...))
	return MockNeoWsResponse{
		StatusCode: http.StatusOK,
		Body:       string(data),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockNeoWsResponse {
	return MockNeoWsResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewRateLimitResponse creates a 429 response like NeoWs sends when the
// DEMO_KEY quota is exhausted.
func NewRateLimitResponse() MockNeoWsResponse {
	return MockNeoWsResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": {"code": "OVER_RATE_LIMIT"}}`,
	}
}

// NewMalformedResponse creates a 200 response whose body is not JSON.
func NewMalformedResponse() MockNeoWsResponse {
	return MockNeoWsResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>not json`,
	}
}
