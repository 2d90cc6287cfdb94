// Package testutil provides testing utilities for the CourtListener crawler.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockCourtListener is a configurable mock CourtListener API server for
// testing. Handlers are keyed by path; unconfigured paths return 404 with
// the API's JSON error shape.
type MockCourtListener struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount int
	RequestURIs  []string
	LastAuth     string
}

// NewMockCourtListener creates a new mock API server.
func NewMockCourtListener() *MockCourtListener {
	mock := &MockCourtListener{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.RequestURIs = append(mock.RequestURIs, r.URL.RequestURI())
		mock.LastAuth = r.Header.Get("Authorization")
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail": "Not found."}`)
	}))

	return mock
}

// URL returns the mock server URL; use it as the crawl base URL.
func (m *MockCourtListener) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCourtListener) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockCourtListener) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.RequestURIs = nil
	m.LastAuth = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCourtListener) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetJSON configures a fixed JSON response for a path.
func (m *MockCourtListener) SetJSON(path string, statusCode int, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	})
}

// SetResource configures a resource endpoint, e.g.
// SetResource("clusters", "7", body) serves GET /clusters/7/.
func (m *MockCourtListener) SetResource(kind, id string, body string) {
	m.SetJSON(fmt.Sprintf("/%s/%s/", kind, id), http.StatusOK, body)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCourtListener) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequestURIs returns the request URIs seen so far, in order.
func (m *MockCourtListener) GetRequestURIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uris := make([]string, len(m.RequestURIs))
	copy(uris, m.RequestURIs)
	return uris
}

// ListEnvelope builds the paginated list envelope around the given result
// objects. Pass next == "" for the final page (serialized as null).
func ListEnvelope(next string, results ...string) string {
	raw := make([]json.RawMessage, len(results))
	for i, r := range results {
		raw[i] = json.RawMessage(r)
	}

	envelope := map[string]any{"results": raw}
	if next != "" {
		envelope["next"] = next
	} else {
		envelope["next"] = nil
	}

	b, err := json.Marshal(envelope)
	if err != nil {
		panic(fmt.Sprintf("marshal list envelope: %v", err))
	}
	return string(b)
}

// MarshalJSON marshals a fixture value, panicking on failure. Intended
// for building test bodies from the domain types.
func MarshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal fixture: %v", err))
	}
	return string(b)
}
