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
	"errors"
	"testing"
	"time"
)

func newTestRobotsCache(mock *MockTransport) *RobotsCache {
	cache := NewRobotsCache("sandboa", "http", time.Second)
	cache.Client = mock.Client()
	return cache
}

func TestRobotsAllowedAndDisallowed(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterRobots("example.com", "User-agent: *\nDisallow: /admin/\n")
	cache := newTestRobotsCache(mock)

	if !cache.Allowed("example.com", "/blog") {
		t.Error("/blog should be allowed")
	}
	if cache.Allowed("example.com", "/admin/users") {
		t.Error("/admin/users should be disallowed")
	}
}

func TestRobotsBotSpecificGroup(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterRobots("example.com",
		"User-agent: *\nDisallow:\n\nUser-agent: sandboa\nDisallow: /private/\n")
	cache := newTestRobotsCache(mock)

	if cache.Allowed("example.com", "/private/page") {
		t.Error("bot-specific disallow should apply")
	}
	if !cache.Allowed("example.com", "/public") {
		t.Error("/public should be allowed")
	}
}

func TestRobotsMissingPolicyAllowsAll(t *testing.T) {
	mock := NewMockTransport()
	// No robots.txt registered: the transport answers 404.
	cache := newTestRobotsCache(mock)

	if !cache.Allowed("example.com", "/anything") {
		t.Error("missing robots.txt should allow everything")
	}
	if cache.CrawlDelay("example.com") != 0 {
		t.Error("missing robots.txt should have no crawl-delay")
	}
}

func TestRobotsFetchErrorAllowsAll(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterError("http://example.com/robots.txt", errors.New("connection refused"))
	cache := newTestRobotsCache(mock)

	if !cache.Allowed("example.com", "/page") {
		t.Error("robots.txt fetch error should allow everything")
	}
}

func TestRobotsServerErrorAllowsAll(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("http://example.com/robots.txt", &MockResponse{
		StatusCode: 500,
		Body:       "Internal Server Error",
	})
	cache := newTestRobotsCache(mock)

	if !cache.Allowed("example.com", "/page") {
		t.Error("non-200 robots.txt should allow everything")
	}
}

func TestRobotsFetchedOncePerDomain(t *testing.T) {
	mock := NewMockTransport()
	cache := newTestRobotsCache(mock)

	// The 404 is cached too: repeated checks never refetch.
	for i := 0; i < 5; i++ {
		cache.Allowed("example.com", "/page")
		cache.CrawlDelay("example.com")
	}
	if n := mock.RequestCount("http://example.com/robots.txt"); n != 1 {
		t.Errorf("robots.txt fetched %d times, expected 1", n)
	}
}

func TestRobotsCrawlDelay(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterRobots("example.com", "User-agent: *\nCrawl-delay: 5\n")
	cache := newTestRobotsCache(mock)

	if got := cache.CrawlDelay("example.com"); got != 5*time.Second {
		t.Errorf("CrawlDelay = %s, expected 5s", got)
	}
}
