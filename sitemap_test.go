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
	"testing"
	"time"
)

func newSitemapFetcher(mock *MockTransport) *Fetcher {
	f := NewFetcher("sandboa-test", time.Second)
	f.Client = mock.Client()
	return f
}

func TestDiscoverSitemapURLs(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("http://example.com/sitemap.xml", &MockResponse{
		StatusCode: 200,
		Body: `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://example.com/page1</loc></url>
  <url><loc>http://example.com/page2?ref=sitemap</loc></url>
</urlset>`,
	})

	urls := DiscoverSitemapURLs(context.Background(), newSitemapFetcher(mock), "http", "example.com")

	expected := []string{"http://example.com/page1", "http://example.com/page2"}
	if len(urls) != len(expected) {
		t.Fatalf("got %d URLs %v, expected %d", len(urls), urls, len(expected))
	}
	for i, want := range expected {
		if urls[i] != want {
			t.Errorf("url %d = %q, expected %q", i, urls[i], want)
		}
	}
}

func TestDiscoverSitemapIndex(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("http://example.com/sitemap_index.xml", &MockResponse{
		StatusCode: 200,
		Body: `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>http://example.com/sitemap_pages.xml</loc></sitemap>
</sitemapindex>`,
	})
	mock.RegisterResponse("http://example.com/sitemap_pages.xml", &MockResponse{
		StatusCode: 200,
		Body: `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://example.com/nested</loc></url>
</urlset>`,
	})

	urls := DiscoverSitemapURLs(context.Background(), newSitemapFetcher(mock), "http", "example.com")

	found := false
	for _, u := range urls {
		if u == "http://example.com/nested" {
			found = true
		}
	}
	if !found {
		t.Errorf("nested sitemap URL not discovered, got %v", urls)
	}
}

func TestDiscoverSitemapMissingIsEmpty(t *testing.T) {
	mock := NewMockTransport()
	urls := DiscoverSitemapURLs(context.Background(), newSitemapFetcher(mock), "http", "example.com")
	if len(urls) != 0 {
		t.Errorf("expected no URLs for missing sitemaps, got %v", urls)
	}
}
