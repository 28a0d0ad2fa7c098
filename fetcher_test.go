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
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newMockFetcher(mock *MockTransport) *Fetcher {
	f := NewFetcher("sandboa-test/1.0", time.Second)
	f.Client = mock.Client()
	return f
}

func TestFetcherSendsUserAgentAndHeaders(t *testing.T) {
	mock := NewMockTransport()
	var gotUA, gotCustom string
	mock.RegisterResponse("http://example.com/", &MockResponse{
		BodyFunc: func(req *http.Request) string {
			gotUA = req.Header.Get("User-Agent")
			gotCustom = req.Header.Get("X-Custom")
			return "ok"
		},
	})

	f := newMockFetcher(mock)
	f.Headers = map[string]string{"X-Custom": "value"}
	if _, err := f.Get(context.Background(), "http://example.com/"); err != nil {
		t.Fatal(err)
	}
	if gotUA != "sandboa-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotCustom != "value" {
		t.Errorf("X-Custom = %q", gotCustom)
	}
}

func TestFetcherMaxBodySize(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("http://example.com/", strings.Repeat("x", 1000))

	f := newMockFetcher(mock)
	f.MaxBodySize = 100
	resp, err := f.Get(context.Background(), "http://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Body) != 100 {
		t.Errorf("body length = %d, expected limit of 100", len(resp.Body))
	}
}

func TestResponseContentType(t *testing.T) {
	cases := []struct {
		header   string
		expected string
		html     bool
	}{
		{"text/html; charset=utf-8", "text/html", true},
		{"application/xhtml+xml", "application/xhtml+xml", true},
		{"TEXT/HTML", "text/html", true},
		{"application/json", "application/json", false},
		{"", "", false},
	}
	for _, c := range cases {
		headers := make(http.Header)
		if c.header != "" {
			headers.Set("Content-Type", c.header)
		}
		r := &Response{Headers: &headers}
		if got := r.ContentType(); got != c.expected {
			t.Errorf("ContentType(%q) = %q, expected %q", c.header, got, c.expected)
		}
		if got := r.IsHTML(); got != c.html {
			t.Errorf("IsHTML(%q) = %v, expected %v", c.header, got, c.html)
		}
	}
}

func TestProbeUsesHead(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("http://example.com/", "body")

	f := newMockFetcher(mock)
	status, contentType, err := f.Probe(context.Background(), "http://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if status != 200 {
		t.Errorf("status = %d", status)
	}
	if !strings.HasPrefix(contentType, "text/html") {
		t.Errorf("content type = %q", contentType)
	}
	if n := mock.RequestCount("http://example.com/"); n != 1 {
		t.Errorf("probe made %d requests, expected 1 HEAD", n)
	}
}

func TestProbeFallsBackToGet(t *testing.T) {
	mock := NewMockTransport()
	// 405 on HEAD makes the probe retry with GET.
	mock.RegisterResponse("http://example.com/", &MockResponse{
		BodyFunc: func(req *http.Request) string {
			return "page"
		},
		StatusCode: 200,
	})
	mock.RegisterResponse("http://example.com/head-rejected", &MockResponse{
		StatusCode: 405,
	})

	f := newMockFetcher(mock)
	status, _, err := f.Probe(context.Background(), "http://example.com/head-rejected")
	if err != nil {
		t.Fatal(err)
	}
	if status != 405 {
		t.Errorf("status = %d, expected the GET fallback's 405", status)
	}
	if n := mock.RequestCount("http://example.com/head-rejected"); n != 2 {
		t.Errorf("probe made %d requests, expected HEAD then GET", n)
	}
}
