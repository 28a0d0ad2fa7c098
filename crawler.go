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

// Package sandboa implements a politeness-aware, breadth-first website
// crawler. A Crawler walks a site level by level from a start URL, passing
// every candidate URL through robots.txt rules, user URL patterns and a
// domain scope budget before fetching it, and spacing requests per domain
// by the larger of a configured delay and the domain's robots crawl-delay.
package sandboa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentberlin/sandboa/debug"
	"github.com/agentberlin/sandboa/internal/metrics"
	"github.com/agentberlin/sandboa/storage"
)

var (
	// ErrSeedBlocked is the fatal error returned when robots.txt disallows
	// the start URL while compliance is enabled.
	ErrSeedBlocked = errors.New("start URL blocked by robots.txt")
	// ErrSeedUnreachable is the fatal error returned when the start URL
	// cannot be fetched or answers with an error status.
	ErrSeedUnreachable = errors.New("start URL unreachable")
	// ErrAlreadyRunning is returned when Run is called on a session that
	// has already started.
	ErrAlreadyRunning = errors.New("crawl session already started")
	// ErrNoPattern is the error type for LimitRules without patterns
	ErrNoPattern = errors.New("no pattern defined in LimitRule")
)

// rateLimitPenaltyFactor scales the extended backoff applied after a 429.
const rateLimitPenaltyFactor = 3

var crawlerCounter uint32

type frontierItem struct {
	url   string
	depth int
}

// Crawler is a single-use crawl session. Create one with NewCrawler, start
// it with Run; Results and Snapshot stay readable after Run returns,
// including after cancellation.
type Crawler struct {
	// ID is the unique identifier of the session
	ID uint32

	cfg      *Config
	logger   *slog.Logger
	debugger debug.Debugger
	fetcher  *Fetcher
	limiter  *RateLimiter
	store    storage.Storage
	metrics  *metrics.Metrics
	filter   *PatternFilter

	// Built in Run once the start URL is known.
	robots   *RobotsCache
	scope    *DomainScope
	pipeline *AdmissionPipeline

	robotsClient *http.Client

	requestCounter uint32

	mu      sync.RWMutex
	state   State
	pages   []PageResult
	domains map[string]bool
	summary Summary
}

// NewCrawler creates a crawl session from the given configuration. Nil and
// zero fields fall back to defaults; SANDBOA_* environment variables
// override the merged configuration.
func NewCrawler(config *Config) (*Crawler, error) {
	cfg := mergeConfig(config)
	cfg.parseSettingsFromEnv()

	filter, err := NewPatternFilter(cfg.ExcludePatterns, cfg.IncludePatterns)
	if err != nil {
		return nil, fmt.Errorf("compiling URL patterns: %w", err)
	}

	fetcher := NewFetcher(cfg.UserAgent, cfg.Timeout)
	fetcher.Headers = cfg.Headers
	fetcher.MaxBodySize = cfg.MaxBodySize
	fetcher.DetectCharset = cfg.DetectCharset

	limiter := NewRateLimiter(cfg.Delay)
	for _, rule := range cfg.LimitRules {
		if err := limiter.AddRule(rule); err != nil {
			return nil, fmt.Errorf("adding limit rule: %w", err)
		}
	}

	store := &storage.InMemoryStorage{}
	if err := store.Init(); err != nil {
		return nil, err
	}

	c := &Crawler{
		ID:      atomic.AddUint32(&crawlerCounter, 1),
		cfg:     cfg,
		logger:  slog.Default(),
		fetcher: fetcher,
		limiter: limiter,
		store:   store,
		metrics: metrics.New(),
		filter:  filter,
		domains: map[string]bool{},
		state:   StateIdle,
	}
	if cfg.Debugger != nil {
		if err := cfg.Debugger.Init(); err != nil {
			return nil, err
		}
		c.debugger = cfg.Debugger
	}
	return c, nil
}

// SetLogger replaces the session's logger. Must be called before Run.
func (c *Crawler) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// SetClient replaces the HTTP client used for page and robots.txt fetches.
// Must be called before Run.
func (c *Crawler) SetClient(client *http.Client) {
	c.fetcher.Client = client
	c.robotsClient = client
}

// Metrics returns the session's Prometheus registry and counters.
func (c *Crawler) Metrics() *metrics.Metrics {
	return c.metrics
}

// State returns the session's lifecycle state.
func (c *Crawler) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Results returns a copy of the page results collected so far. It is safe
// to call while the session runs and after it was cancelled.
func (c *Crawler) Results() []PageResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pages := make([]PageResult, len(c.pages))
	copy(pages, c.pages)
	return pages
}

// Snapshot returns the session's current result, usable mid-run and after
// cancellation.
func (c *Crawler) Snapshot() *CrawlResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pages := make([]PageResult, len(c.pages))
	copy(pages, c.pages)
	summary := c.summary
	if n, err := c.store.VisitedCount(); err == nil {
		summary.URLsVisited = n
	}
	summary.DomainsTouched = make([]string, 0, len(c.domains))
	for d := range c.domains {
		summary.DomainsTouched = append(summary.DomainsTouched, d)
	}
	sort.Strings(summary.DomainsTouched)
	if len(c.summary.CrawlDelays) > 0 {
		summary.CrawlDelays = make(map[string]time.Duration, len(c.summary.CrawlDelays))
		for d, delay := range c.summary.CrawlDelays {
			summary.CrawlDelays[d] = delay
		}
	}
	if c.scope != nil {
		summary.ExternalDomains = c.scope.AdmittedDomains()
	}
	return &CrawlResult{Pages: pages, Summary: summary, State: c.state}
}

func (c *Crawler) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Crawler) event(eventType, url string, values map[string]string) {
	if c.debugger == nil {
		return
	}
	if values == nil {
		values = map[string]string{}
	}
	values["url"] = url
	c.debugger.Event(&debug.Event{
		Type:      eventType,
		RequestID: atomic.AddUint32(&c.requestCounter, 1),
		SessionID: c.ID,
		Values:    values,
	})
}

// Run crawls breadth-first from startURL until the frontier drains, the
// context is cancelled or the page budget is exhausted. The returned
// CrawlResult holds whatever was collected; on cancellation it is partial
// and the error is the context's.
//
// Run is one-shot: a second call returns ErrAlreadyRunning.
func (c *Crawler) Run(ctx context.Context, startURL string) (*CrawlResult, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	c.state = StateRunning
	c.mu.Unlock()

	started := time.Now()
	defer func() {
		c.mu.Lock()
		c.summary.Duration = time.Since(started)
		c.mu.Unlock()
	}()

	seed, err := Canonicalize(startURL, "")
	if err != nil {
		c.setState(StateAborted)
		return c.Snapshot(), fmt.Errorf("start URL %q: %w", startURL, err)
	}
	startDomain := domainOf(seed)
	startScheme := schemeOf(seed)
	if startScheme != "http" && startScheme != "https" {
		c.setState(StateAborted)
		return c.Snapshot(), fmt.Errorf("start URL %q: %w", startURL, ErrInvalidURL)
	}

	c.mu.Lock()
	c.summary.StartURL = seed
	c.mu.Unlock()

	c.scope = NewDomainScope(startDomain, c.cfg.MaxExternalDomains)
	if !c.cfg.IgnoreRobotsTxt {
		c.robots = NewRobotsCache(c.cfg.BotName, startScheme, c.cfg.RobotsTimeout)
		if c.robotsClient != nil {
			c.robots.Client = c.robotsClient
		}
		c.robots.OnFetch = func(domain string, ok bool) {
			c.logger.Debug("robots.txt fetched", "domain", domain, "usable", ok)
		}
		c.limiter.CrawlDelay = func(domain string) time.Duration {
			d := c.robots.CrawlDelay(domain)
			if d > 0 {
				c.recordCrawlDelay(domain, d)
			}
			return d
		}
	}
	c.pipeline = &AdmissionPipeline{
		Robots: c.robots,
		Filter: c.filter,
		Scope:  c.scope,
		OnExternalAdmit: func(domain string) {
			c.metrics.ExternalAdmitted.Inc()
			c.logger.Info("external domain admitted", "domain", domain)
			c.event("external-admitted", domain, nil)
		},
	}

	// The seed being disallowed is fatal; any other URL being disallowed
	// is just skipped.
	if c.robots != nil && !c.robots.Allowed(startDomain, pathOf(seed)) {
		c.setState(StateAborted)
		return c.Snapshot(), fmt.Errorf("%q: %w", seed, ErrSeedBlocked)
	}

	if err := c.probeSeed(ctx, seed); err != nil {
		c.setState(StateAborted)
		return c.Snapshot(), err
	}

	frontier := []frontierItem{{url: seed, depth: 0}}
	if c.cfg.DiscoverSitemaps {
		for _, u := range DiscoverSitemapURLs(ctx, c.fetcher, startScheme, startDomain) {
			frontier = append(frontier, frontierItem{url: u, depth: 1})
		}
		if n := len(frontier) - 1; n > 0 {
			c.logger.Info("sitemap URLs discovered", "count", n)
		}
	}

	c.logger.Info("crawl started",
		"url", seed,
		"max_depth", c.cfg.MaxDepth,
		"max_external_domains", c.cfg.MaxExternalDomains,
		"delay", c.cfg.Delay)

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			c.logger.Info("crawl cancelled", "pages", len(c.pages))
			c.setState(StateAborted)
			return c.Snapshot(), err
		}
		if c.cfg.MaxPages > 0 && c.pageCount() >= c.cfg.MaxPages {
			c.logger.Info("page budget reached", "pages", c.pageCount())
			break
		}

		item := frontier[0]
		frontier = frontier[1:]
		c.metrics.FrontierSize.Set(float64(len(frontier)))

		// Sitemap seeds enter the frontier without a depth check, so the
		// ceiling is enforced here too.
		if item.depth > c.cfg.MaxDepth {
			continue
		}

		links, err := c.visit(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				c.setState(StateAborted)
				return c.Snapshot(), ctx.Err()
			}
			continue
		}

		if item.depth >= c.cfg.MaxDepth {
			continue
		}
		for _, link := range links {
			// Cheap pre-check only. The authoritative visited test
			// happens at dequeue, so a URL queued twice at the same
			// level is still fetched once.
			if visited, _ := c.store.IsVisited(link); visited {
				continue
			}
			frontier = append(frontier, frontierItem{url: link, depth: item.depth + 1})
		}
		c.metrics.FrontierSize.Set(float64(len(frontier)))
	}

	c.setState(StateCompleted)
	result := c.Snapshot()
	c.logger.Info("crawl completed",
		"pages", result.Summary.PagesScraped,
		"errors", result.Summary.FetchErrors,
		"duration", result.Summary.Duration)
	return result, nil
}

// probeSeed verifies the start URL answers before the BFS loop begins.
func (c *Crawler) probeSeed(ctx context.Context, seed string) error {
	status, _, err := c.fetcher.Probe(ctx, seed)
	if err != nil {
		return fmt.Errorf("%q: %w: %v", seed, ErrSeedUnreachable, err)
	}
	if status >= 400 {
		return fmt.Errorf("%q: %w: status %d", seed, ErrSeedUnreachable, status)
	}
	return nil
}

// visit runs one frontier item through admission, rate limiting, fetching
// and extraction. It returns the page's outbound links for enqueueing.
// A nil error with no links means the page was skipped.
func (c *Crawler) visit(ctx context.Context, item frontierItem) ([]string, error) {
	domain := domainOf(item.url)

	// The visited claim comes first so a URL dequeued twice is denied (and
	// counted) at most once.
	visited, err := c.store.VisitIfNotVisited(item.url)
	if err != nil {
		return nil, err
	}
	if visited {
		return nil, nil
	}

	if admitted, reason := c.pipeline.Admit(item.url); !admitted {
		c.recordDenial(reason, item.url)
		return nil, nil
	}

	if err := c.limiter.Wait(ctx, domain); err != nil {
		return nil, err
	}

	c.event("request", item.url, map[string]string{"depth": strconv.Itoa(item.depth)})
	fetchStart := time.Now()
	resp, err := c.fetcher.Get(ctx, item.url)
	c.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		c.metrics.FetchErrors.Inc()
		c.countSummary(func(s *Summary) { s.FetchErrors++ })
		c.logger.Warn("fetch failed", "url", item.url, "error", err)
		c.event("error", item.url, map[string]string{"error": err.Error()})
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	c.event("response", item.url, map[string]string{"status": strconv.Itoa(resp.StatusCode)})

	if resp.StatusCode == 429 {
		penalty := rateLimitPenaltyFactor * c.limiter.EffectiveDelay(domain)
		c.limiter.Penalize(domain, penalty)
		c.metrics.RateLimited.Inc()
		c.countSummary(func(s *Summary) { s.RateLimited++ })
		c.logger.Warn("rate limited", "url", item.url, "backoff", penalty)
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		c.metrics.FetchErrors.Inc()
		c.countSummary(func(s *Summary) { s.FetchErrors++ })
		c.logger.Warn("error status", "url", item.url, "status", resp.StatusCode)
		return nil, nil
	}

	page := PageResult{
		URL:         item.url,
		Domain:      domain,
		Depth:       item.depth,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType(),
		FetchedAt:   time.Now(),
	}

	if !resp.IsHTML() {
		c.countSummary(func(s *Summary) { s.NonHTMLSkipped++ })
		c.appendPage(page)
		c.logger.Debug("non-HTML page recorded", "url", item.url, "content_type", page.ContentType)
		return nil, nil
	}

	fields := ExtractFields(resp.Body, item.url)
	page.Fields = &fields

	if c.cfg.EnableContentHash {
		if hash := ContentHash(resp.Body); hash != "" {
			page.ContentHash = hash
			if seen, _ := c.store.IsContentVisited(hash); seen {
				page.DuplicateContent = true
				c.countSummary(func(s *Summary) { s.DuplicatePages++ })
			} else {
				c.store.VisitedContent(hash)
			}
		}
	}

	c.appendPage(page)
	c.logger.Debug("page scraped", "url", item.url, "depth", item.depth, "links", len(fields.Links))
	return ExtractLinks(resp.Body, item.url), nil
}

func (c *Crawler) recordDenial(reason, url string) {
	switch reason {
	case DeniedByRobots:
		c.metrics.RobotsDenied.Inc()
		c.countSummary(func(s *Summary) { s.RobotsDenied++ })
		c.event("robots-denied", url, nil)
	case DeniedByPattern:
		c.metrics.PatternDenied.Inc()
		c.countSummary(func(s *Summary) { s.PatternDenied++ })
	case DeniedByScope:
		c.metrics.ScopeDenied.Inc()
		c.countSummary(func(s *Summary) { s.ScopeDenied++ })
	}
	c.logger.Debug("URL rejected", "url", url, "reason", reason)
}

func (c *Crawler) appendPage(page PageResult) {
	c.metrics.PagesScraped.Inc()
	c.mu.Lock()
	c.pages = append(c.pages, page)
	c.summary.PagesScraped++
	if page.Domain != "" {
		c.domains[page.Domain] = true
	}
	c.mu.Unlock()
}

func (c *Crawler) recordCrawlDelay(domain string, delay time.Duration) {
	c.mu.Lock()
	if c.summary.CrawlDelays == nil {
		c.summary.CrawlDelays = map[string]time.Duration{}
	}
	c.summary.CrawlDelays[domain] = delay
	c.mu.Unlock()
}

func (c *Crawler) pageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

func (c *Crawler) countSummary(f func(*Summary)) {
	c.mu.Lock()
	f(&c.summary)
	c.mu.Unlock()
}
