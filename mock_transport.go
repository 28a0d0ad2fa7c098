// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sandboa

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"
)

// MockResponse represents a mock HTTP response
type MockResponse struct {
	// StatusCode is the HTTP status code to return (default: 200)
	StatusCode int
	// Body is the response body content (used if BodyFunc is nil)
	Body string
	// BodyFunc is a function that generates the body dynamically based on the request
	// If set, this takes precedence over Body
	BodyFunc func(*http.Request) string
	// Headers are the HTTP headers to include in the response
	Headers http.Header
	// Delay simulates network latency before returning the response
	Delay time.Duration
	// Error simulates a network error
	Error error
}

// mockPattern represents a URL pattern matcher with associated response
type mockPattern struct {
	pattern  *regexp.Regexp
	response *MockResponse
}

// MockTransport implements http.RoundTripper for testing purposes.
// It allows registering mock responses for specific URLs or URL patterns
// without needing to run an actual HTTP server, and records the request
// times of every URL so tests can assert on request counts and spacing.
type MockTransport struct {
	// responses maps exact URLs to their mock responses
	responses map[string]*MockResponse
	// patterns contains regex patterns for matching URLs
	patterns []mockPattern
	// requestTimes records when each URL was requested
	requestTimes map[string][]time.Time
	// mutex protects concurrent access to the maps
	mutex sync.RWMutex
}

// NewMockTransport creates a new MockTransport instance
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses:    make(map[string]*MockResponse),
		patterns:     make([]mockPattern, 0),
		requestTimes: make(map[string][]time.Time),
	}
}

// Client returns an http.Client backed by this transport.
func (m *MockTransport) Client() *http.Client {
	return &http.Client{Transport: m}
}

// RegisterResponse registers a mock response for an exact URL match
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if response.StatusCode == 0 {
		response.StatusCode = 200
	}
	if response.Headers == nil {
		response.Headers = make(http.Header)
	}
	m.responses[url] = response
}

// RegisterHTML is a convenience method to register an HTML response with status 200
func (m *MockTransport) RegisterHTML(url, html string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "text/html; charset=utf-8")

	m.RegisterResponse(url, &MockResponse{
		StatusCode: 200,
		Body:       html,
		Headers:    headers,
	})
}

// RegisterRobots is a convenience method to register a robots.txt body for
// a domain, e.g. RegisterRobots("example.com", "User-agent: *\nDisallow: /admin/")
func (m *MockTransport) RegisterRobots(domain, body string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "text/plain; charset=utf-8")

	m.RegisterResponse("http://"+domain+"/robots.txt", &MockResponse{
		StatusCode: 200,
		Body:       body,
		Headers:    headers,
	})
	m.RegisterResponse("https://"+domain+"/robots.txt", &MockResponse{
		StatusCode: 200,
		Body:       body,
		Headers:    headers,
	})
}

// RegisterError registers a mock error for a URL (simulates network failure)
func (m *MockTransport) RegisterError(url string, err error) {
	m.RegisterResponse(url, &MockResponse{
		Error: err,
	})
}

// RegisterPattern registers a mock response for URLs matching a regex pattern
func (m *MockTransport) RegisterPattern(pattern string, response *MockResponse) error {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if response.StatusCode == 0 {
		response.StatusCode = 200
	}
	if response.Headers == nil {
		response.Headers = make(http.Header)
	}
	m.patterns = append(m.patterns, mockPattern{
		pattern:  regex,
		response: response,
	})
	return nil
}

// RequestCount returns how many times the URL was requested.
func (m *MockTransport) RequestCount(url string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.requestTimes[url])
}

// RequestTimes returns the times the URL was requested, in order.
func (m *MockTransport) RequestTimes(url string) []time.Time {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]time.Time{}, m.requestTimes[url]...)
}

// RequestedURLs returns every requested URL with its request count.
func (m *MockTransport) RequestedURLs() map[string]int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	counts := make(map[string]int, len(m.requestTimes))
	for url, times := range m.requestTimes {
		counts[url] = len(times)
	}
	return counts
}

// Reset clears all registered responses, patterns and recorded requests
func (m *MockTransport) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.responses = make(map[string]*MockResponse)
	m.patterns = make([]mockPattern, 0)
	m.requestTimes = make(map[string][]time.Time)
}

// RoundTrip implements the http.RoundTripper interface
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	m.mutex.Lock()
	m.requestTimes[url] = append(m.requestTimes[url], time.Now())
	mockResp, found := m.responses[url]
	if !found {
		for _, p := range m.patterns {
			if p.pattern.MatchString(url) {
				mockResp = p.response
				found = true
				break
			}
		}
	}
	m.mutex.Unlock()

	if !found {
		// No mock registered - return 404
		return &http.Response{
			StatusCode: 404,
			Body:       io.NopCloser(bytes.NewBufferString("Not Found")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	// Simulate delay if specified
	if mockResp.Delay > 0 {
		time.Sleep(mockResp.Delay)
	}

	// Return error if specified
	if mockResp.Error != nil {
		return nil, mockResp.Error
	}

	bodyContent := mockResp.Body
	if mockResp.BodyFunc != nil {
		bodyContent = mockResp.BodyFunc(req)
	}
	if req.Method == "HEAD" {
		bodyContent = ""
	}

	resp := &http.Response{
		StatusCode: mockResp.StatusCode,
		Body:       io.NopCloser(bytes.NewBufferString(bodyContent)),
		Header:     cloneHeaders(mockResp.Headers),
		Request:    req,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
	}
	if resp.Header.Get("Content-Length") == "" {
		resp.ContentLength = int64(len(bodyContent))
	}
	return resp, nil
}

// cloneHeaders creates a copy of HTTP headers
func cloneHeaders(headers http.Header) http.Header {
	clone := make(http.Header)
	for key, values := range headers {
		clone[key] = append([]string{}, values...)
	}
	return clone
}
