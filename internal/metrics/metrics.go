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

// Package metrics exposes Prometheus counters for a crawl session. Each
// session gets its own Registry so that concurrent sessions do not collide
// on metric registration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters of one crawl session.
type Metrics struct {
	Registry *prometheus.Registry

	PagesScraped     prometheus.Counter
	FetchErrors      prometheus.Counter
	RobotsDenied     prometheus.Counter
	PatternDenied    prometheus.Counter
	ScopeDenied      prometheus.Counter
	RateLimited      prometheus.Counter
	ExternalAdmitted prometheus.Counter
	FrontierSize     prometheus.Gauge
	FetchDuration    prometheus.Histogram
}

// New creates the session metrics on a fresh Registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PagesScraped: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandboa_pages_scraped_total",
			Help: "Total number of pages fetched and recorded.",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandboa_fetch_errors_total",
			Help: "Total number of page fetches that failed.",
		}),
		RobotsDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandboa_robots_denied_total",
			Help: "Total number of URLs rejected by robots.txt.",
		}),
		PatternDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandboa_pattern_denied_total",
			Help: "Total number of URLs rejected by URL patterns.",
		}),
		ScopeDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandboa_scope_denied_total",
			Help: "Total number of URLs rejected by domain scope.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandboa_rate_limited_total",
			Help: "Total number of 429 responses received.",
		}),
		ExternalAdmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandboa_external_domains_admitted_total",
			Help: "Total number of external domains admitted into scope.",
		}),
		FrontierSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sandboa_frontier_size",
			Help: "Current number of URLs waiting in the frontier.",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sandboa_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
