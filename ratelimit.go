// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// LimitRule provides a per-domain delay override for the rate limiter.
// Domains are selected either by DomainRegexp or by DomainGlob; a rule with
// neither never matches.
type LimitRule struct {
	// DomainRegexp is a regular expression to match against domains
	DomainRegexp string
	// DomainGlob is a glob pattern to match against domains
	DomainGlob string
	// Delay is the duration to wait before creating a new request to the
	// matching domains. It overrides the limiter's default delay but never
	// undercuts a robots.txt crawl-delay.
	Delay time.Duration
	// RandomDelay is the extra randomized duration to wait added to Delay
	// before creating a new request
	RandomDelay time.Duration

	compiledRegexp *regexp.Regexp
	compiledGlob   glob.Glob
}

// Init initializes the private members of LimitRule.
func (r *LimitRule) Init() error {
	hasPattern := false
	if r.DomainRegexp != "" {
		c, err := regexp.Compile(r.DomainRegexp)
		if err != nil {
			return err
		}
		r.compiledRegexp = c
		hasPattern = true
	}
	if r.DomainGlob != "" {
		c, err := glob.Compile(r.DomainGlob)
		if err != nil {
			return err
		}
		r.compiledGlob = c
		hasPattern = true
	}
	if !hasPattern {
		return ErrNoPattern
	}
	return nil
}

// Match checks whether the domain matches the rule's pattern.
func (r *LimitRule) Match(domain string) bool {
	if r.compiledRegexp != nil && r.compiledRegexp.MatchString(domain) {
		return true
	}
	if r.compiledGlob != nil && r.compiledGlob.Match(domain) {
		return true
	}
	return false
}

// RateLimiter enforces a minimum spacing between the starts of consecutive
// requests to the same domain. Different domains are tracked independently.
// The spacing is the maximum of the limiter's default delay, the domain's
// robots.txt crawl-delay and any matching LimitRule's Delay.
type RateLimiter struct {
	// DefaultDelay is the baseline spacing applied to every domain.
	DefaultDelay time.Duration
	// CrawlDelay, if set, returns the robots.txt crawl-delay of a domain.
	CrawlDelay func(domain string) time.Duration

	mu        sync.Mutex
	lastStart map[string]time.Time
	notBefore map[string]time.Time
	rules     []*LimitRule
}

// NewRateLimiter creates a limiter with the given baseline delay.
func NewRateLimiter(defaultDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		DefaultDelay: defaultDelay,
		lastStart:    map[string]time.Time{},
		notBefore:    map[string]time.Time{},
	}
}

// AddRule registers a per-domain delay override. The rule is initialized
// before being added.
func (l *RateLimiter) AddRule(rule *LimitRule) error {
	if err := rule.Init(); err != nil {
		return err
	}
	l.mu.Lock()
	l.rules = append(l.rules, rule)
	l.mu.Unlock()
	return nil
}

// matchingRule returns the first registered rule matching the domain.
// Callers must hold l.mu.
func (l *RateLimiter) matchingRule(domain string) *LimitRule {
	for _, r := range l.rules {
		if r.Match(domain) {
			return r
		}
	}
	return nil
}

// EffectiveDelay returns the spacing currently enforced for the domain.
func (l *RateLimiter) EffectiveDelay(domain string) time.Duration {
	l.mu.Lock()
	rule := l.matchingRule(domain)
	l.mu.Unlock()

	delay := l.DefaultDelay
	if rule != nil && rule.Delay > delay {
		delay = rule.Delay
	}
	if l.CrawlDelay != nil {
		if cd := l.CrawlDelay(domain); cd > delay {
			delay = cd
		}
	}
	return delay
}

// Wait blocks until a request to the domain may start, then records the new
// start time. The timestamp is reserved before sleeping, so concurrent
// callers queue behind each other instead of all waking at once. Wait
// returns early with the context's error if ctx is cancelled; the
// reservation is kept either way.
func (l *RateLimiter) Wait(ctx context.Context, domain string) error {
	delay := l.EffectiveDelay(domain)

	l.mu.Lock()
	rule := l.matchingRule(domain)
	jitter := time.Duration(0)
	if rule != nil && rule.RandomDelay > 0 {
		jitter = time.Duration(rand.Int63n(int64(rule.RandomDelay)))
	}
	now := time.Now()
	target := now
	if last, ok := l.lastStart[domain]; ok {
		if t := last.Add(delay + jitter); t.After(now) {
			target = t
		}
	}
	// A penalty is an absolute floor on the next start, not an extra
	// spacing on top of the regular delay.
	if floor, ok := l.notBefore[domain]; ok {
		if floor.After(target) {
			target = floor
		}
		delete(l.notBefore, domain)
	}
	l.lastStart[domain] = target
	l.mu.Unlock()

	wait := time.Until(target)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Penalize pushes the domain's next allowed start further into the future,
// used after a 429 response. The next request to the domain starts no
// earlier than penalty from now; the floor replaces the regular spacing for
// that request instead of stacking on top of it.
func (l *RateLimiter) Penalize(domain string, penalty time.Duration) {
	l.mu.Lock()
	floor := time.Now().Add(penalty)
	if floor.After(l.notBefore[domain]) {
		l.notBefore[domain] = floor
	}
	l.mu.Unlock()
}
