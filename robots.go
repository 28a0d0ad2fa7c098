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
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsCache fetches and caches robots.txt policies per domain. Each
// domain's policy is fetched at most once per session, lazily on the first
// Allowed call for that domain. A fetch error or a non-200 status is cached
// as a nil policy, which means "no usable policy, allow everything"; the
// cache never retries a failed fetch.
type RobotsCache struct {
	// BotName is the user-agent token matched against robots.txt groups.
	BotName string
	// Scheme is used to build the robots.txt URL for every domain,
	// normally the start URL's scheme.
	Scheme string
	// Client performs the robots.txt fetches. Its timeout is independent
	// of the page-fetch timeout.
	Client *http.Client
	// OnFetch, if set, is called after each robots.txt fetch attempt with
	// the domain and whether a usable policy was obtained.
	OnFetch func(domain string, ok bool)

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsCache creates a cache fetching policies as botName over scheme
// with the given fetch timeout.
func NewRobotsCache(botName, scheme string, timeout time.Duration) *RobotsCache {
	return &RobotsCache{
		BotName: botName,
		Scheme:  scheme,
		Client:  &http.Client{Timeout: timeout},
		cache:   map[string]*robotstxt.RobotsData{},
	}
}

// Allowed reports whether the bot may fetch the given path on the domain.
// Domains without a usable policy allow everything.
func (r *RobotsCache) Allowed(domain, path string) bool {
	data := r.policy(domain)
	if data == nil {
		return true
	}
	return data.FindGroup(r.BotName).Test(path)
}

// CrawlDelay returns the crawl-delay the domain's policy declares for the
// bot, or zero when the policy is missing or declares none.
func (r *RobotsCache) CrawlDelay(domain string) time.Duration {
	data := r.policy(domain)
	if data == nil {
		return 0
	}
	return data.FindGroup(r.BotName).CrawlDelay
}

func (r *RobotsCache) policy(domain string) *robotstxt.RobotsData {
	r.mu.Lock()
	data, ok := r.cache[domain]
	if ok {
		r.mu.Unlock()
		return data
	}
	// Populate the entry before releasing the lock so concurrent callers
	// for the same domain never trigger a second fetch.
	data = r.fetch(domain)
	r.cache[domain] = data
	r.mu.Unlock()

	if r.OnFetch != nil {
		r.OnFetch(domain, data != nil)
	}
	return data
}

// fetch retrieves and parses robots.txt for a domain. Only a 200 response
// is parsed; anything else, including transport errors and parse failures,
// yields a nil policy.
func (r *RobotsCache) fetch(domain string) *robotstxt.RobotsData {
	resp, err := r.Client.Get(r.Scheme + "://" + domain + "/robots.txt")
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	return data
}
