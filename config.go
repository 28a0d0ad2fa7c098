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
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agentberlin/sandboa/debug"
)

// Config controls a crawl session. Zero values of optional fields fall back
// to the defaults of NewDefaultConfig.
type Config struct {
	// MaxDepth is the BFS depth ceiling. The start page is depth 0; links
	// found on a page at the ceiling are not followed.
	MaxDepth int
	// MaxExternalDomains is the number of distinct domains other than the
	// start domain the session may enter. 0 confines the crawl to the
	// start domain.
	MaxExternalDomains int
	// Delay is the baseline spacing between request starts per domain.
	Delay time.Duration
	// IgnoreRobotsTxt disables robots.txt compliance entirely: no policy
	// fetches, no admission checks, no crawl-delay.
	IgnoreRobotsTxt bool
	// BotName is the user-agent token matched against robots.txt groups.
	BotName string
	// UserAgent is sent on every HTTP request.
	UserAgent string
	// Headers are extra headers added to every request.
	Headers map[string]string
	// ExcludePatterns rejects matching URLs. Glob syntax ('*', '?'),
	// case-insensitive, matched against the whole canonical URL.
	ExcludePatterns []string
	// IncludePatterns, when non-empty, admits only matching URLs.
	IncludePatterns []string
	// Timeout is the page-fetch timeout.
	Timeout time.Duration
	// RobotsTimeout is the robots.txt fetch timeout, independent of the
	// page-fetch timeout.
	RobotsTimeout time.Duration
	// MaxBodySize limits response body reads, in bytes.
	MaxBodySize int
	// MaxPages stops the session after recording this many page results.
	// 0 means unlimited.
	MaxPages int
	// DetectCharset converts non-UTF-8 HTML documents to UTF-8.
	DetectCharset bool
	// EnableContentHash records an xxHash of each page's visible text and
	// flags exact duplicates.
	EnableContentHash bool
	// DiscoverSitemaps seeds the frontier from the start domain's
	// sitemap.xml before crawling.
	DiscoverSitemaps bool
	// LimitRules are per-domain delay overrides for the rate limiter.
	LimitRules []*LimitRule
	// Debugger receives per-request observability events.
	Debugger debug.Debugger
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		MaxDepth:           3,
		MaxExternalDomains: 0,
		Delay:              time.Second,
		IgnoreRobotsTxt:    false,
		BotName:            "sandboa",
		UserAgent:          "sandboa/1.0 (+https://github.com/agentberlin/sandboa)",
		Timeout:            10 * time.Second,
		RobotsTimeout:      5 * time.Second,
		MaxBodySize:        10 * 1024 * 1024,
		MaxPages:           0,
	}
}

// mergeConfig overlays the user's non-zero settings on the defaults.
func mergeConfig(config *Config) *Config {
	merged := NewDefaultConfig()
	if config == nil {
		return merged
	}
	if config.MaxDepth != 0 {
		merged.MaxDepth = config.MaxDepth
	}
	if config.MaxExternalDomains != 0 {
		merged.MaxExternalDomains = config.MaxExternalDomains
	}
	if config.Delay != 0 {
		merged.Delay = config.Delay
	}
	if config.IgnoreRobotsTxt {
		merged.IgnoreRobotsTxt = true
	}
	if config.BotName != "" {
		merged.BotName = config.BotName
	}
	if config.UserAgent != "" {
		merged.UserAgent = config.UserAgent
	}
	if config.Headers != nil {
		merged.Headers = config.Headers
	}
	if config.ExcludePatterns != nil {
		merged.ExcludePatterns = config.ExcludePatterns
	}
	if config.IncludePatterns != nil {
		merged.IncludePatterns = config.IncludePatterns
	}
	if config.Timeout != 0 {
		merged.Timeout = config.Timeout
	}
	if config.RobotsTimeout != 0 {
		merged.RobotsTimeout = config.RobotsTimeout
	}
	if config.MaxBodySize != 0 {
		merged.MaxBodySize = config.MaxBodySize
	}
	if config.MaxPages != 0 {
		merged.MaxPages = config.MaxPages
	}
	if config.DetectCharset {
		merged.DetectCharset = true
	}
	if config.EnableContentHash {
		merged.EnableContentHash = true
	}
	if config.DiscoverSitemaps {
		merged.DiscoverSitemaps = true
	}
	if config.LimitRules != nil {
		merged.LimitRules = config.LimitRules
	}
	if config.Debugger != nil {
		merged.Debugger = config.Debugger
	}
	return merged
}

var envMap = map[string]func(*Config, string){
	"BOT_NAME": func(c *Config, val string) {
		c.BotName = val
	},
	"DELAY": func(c *Config, val string) {
		if d, err := time.ParseDuration(val); err == nil {
			c.Delay = d
		}
	},
	"DETECT_CHARSET": func(c *Config, val string) {
		c.DetectCharset = isYesString(val)
	},
	"IGNORE_ROBOTSTXT": func(c *Config, val string) {
		c.IgnoreRobotsTxt = isYesString(val)
	},
	"MAX_BODY_SIZE": func(c *Config, val string) {
		if size, err := strconv.Atoi(val); err == nil {
			c.MaxBodySize = size
		}
	},
	"MAX_DEPTH": func(c *Config, val string) {
		if depth, err := strconv.Atoi(val); err == nil {
			c.MaxDepth = depth
		}
	},
	"MAX_PAGES": func(c *Config, val string) {
		if pages, err := strconv.Atoi(val); err == nil {
			c.MaxPages = pages
		}
	},
	"USER_AGENT": func(c *Config, val string) {
		c.UserAgent = val
	},
}

func (c *Config) parseSettingsFromEnv() {
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "SANDBOA_") {
			continue
		}
		pair := strings.SplitN(e[8:], "=", 2)
		if f, ok := envMap[pair[0]]; ok {
			f(c, pair[1])
		} else {
			log.Println("Unknown environment variable:", pair[0])
		}
	}
}

func isYesString(s string) bool {
	switch strings.ToLower(s) {
	case "1", "yes", "true", "y":
		return true
	}
	return false
}
