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
	"time"
)

// State is the lifecycle state of a crawl session.
type State string

const (
	// StateIdle is the state before Run is called.
	StateIdle State = "idle"
	// StateRunning is the state while the BFS loop is active.
	StateRunning State = "running"
	// StateCompleted is the state after the frontier drained normally.
	StateCompleted State = "completed"
	// StateAborted is the state after cancellation or a fatal seed error.
	// Results collected before the abort stay readable.
	StateAborted State = "aborted"
)

// PageResult is the record of one fetched page. Results are appended in
// fetch-completion order, which for the sequential engine is BFS order.
type PageResult struct {
	// URL is the canonical URL that was fetched.
	URL string `json:"url"`
	// Domain is the domain the URL belongs to.
	Domain string `json:"domain"`
	// Depth is the BFS depth, 0 for the start page.
	Depth int `json:"depth"`
	// StatusCode is the HTTP status of the final response.
	StatusCode int `json:"status_code"`
	// ContentType is the media type of the response without parameters.
	ContentType string `json:"content_type"`
	// Fields holds the extracted structured data. Nil for non-HTML pages.
	Fields *Fields `json:"fields,omitempty"`
	// ContentHash is the xxHash of the page's visible text, when content
	// hashing is enabled.
	ContentHash string `json:"content_hash,omitempty"`
	// DuplicateContent marks pages whose visible text exactly matches an
	// earlier page's. Duplicates are flagged, never dropped.
	DuplicateContent bool `json:"duplicate_content,omitempty"`
	// FetchedAt is the time the fetch completed.
	FetchedAt time.Time `json:"fetched_at"`
}

// Summary aggregates the counters of a crawl session.
type Summary struct {
	StartURL       string `json:"start_url"`
	PagesScraped   int    `json:"pages_scraped"`
	URLsVisited    int    `json:"urls_visited"`
	FetchErrors    int    `json:"fetch_errors"`
	RobotsDenied   int    `json:"robots_denied"`
	PatternDenied  int    `json:"pattern_denied"`
	ScopeDenied    int    `json:"scope_denied"`
	RateLimited    int    `json:"rate_limited"`
	NonHTMLSkipped int    `json:"non_html_skipped"`
	DuplicatePages int    `json:"duplicate_pages"`
	// DomainsTouched lists every domain a page was fetched from.
	DomainsTouched  []string `json:"domains_touched"`
	ExternalDomains []string `json:"external_domains"`
	// CrawlDelays maps domains to the robots.txt crawl-delay discovered for
	// them during the session.
	CrawlDelays map[string]time.Duration `json:"crawl_delays,omitempty"`
	Duration    time.Duration            `json:"duration"`
}

// CrawlResult is the final output of a crawl session.
type CrawlResult struct {
	Pages   []PageResult `json:"pages"`
	Summary Summary      `json:"summary"`
	State   State        `json:"state"`
}
