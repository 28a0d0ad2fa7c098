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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	sandboa "github.com/agentberlin/sandboa"
	"github.com/agentberlin/sandboa/internal/export"
	"github.com/agentberlin/sandboa/internal/store"
)

// multiFlag collects repeated string flags.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// crawlFlags holds all the flags for the crawl command
type crawlFlags struct {
	// Scope
	depth              int
	externalLinksDepth int

	// Politeness
	delay    time.Duration
	noRobots bool
	botName  string

	// Filtering
	exclude multiFlag
	include multiFlag

	// HTTP
	userAgent string
	timeout   time.Duration
	maxPages  int

	// Features
	contentHash bool
	sitemaps    bool

	// Output
	output      string
	format      string
	save        bool
	metricsAddr string
	verbose     bool
	quiet       bool
}

func runCrawl(args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)

	var flags crawlFlags

	// Scope
	fs.IntVar(&flags.depth, "depth", 3, "Maximum crawl depth (start page is depth 0)")
	fs.IntVar(&flags.depth, "d", 3, "Maximum crawl depth (shorthand)")
	fs.IntVar(&flags.externalLinksDepth, "external-links-depth", 0, "Number of external domains the crawl may enter (0 = stay on start domain)")

	// Politeness
	fs.DurationVar(&flags.delay, "delay", time.Second, "Minimum delay between requests to the same domain")
	fs.BoolVar(&flags.noRobots, "no-robots", false, "Ignore robots.txt rules and crawl-delays")
	fs.StringVar(&flags.botName, "bot-name", "sandboa", "Bot token matched against robots.txt groups")

	// Filtering
	fs.Var(&flags.exclude, "exclude", "Glob pattern of URLs to skip (repeatable)")
	fs.Var(&flags.include, "include", "Glob pattern of URLs to allow; others are skipped (repeatable)")

	// HTTP
	fs.StringVar(&flags.userAgent, "user-agent", "", "Custom User-Agent string")
	fs.StringVar(&flags.userAgent, "A", "", "Custom User-Agent string (shorthand)")
	fs.DurationVar(&flags.timeout, "timeout", 10*time.Second, "Page fetch timeout")
	fs.IntVar(&flags.maxPages, "max-pages", 0, "Stop after this many pages (0 = unlimited)")

	// Features
	fs.BoolVar(&flags.contentHash, "content-hash", false, "Hash page text and flag exact duplicate pages")
	fs.BoolVar(&flags.sitemaps, "sitemaps", false, "Seed the crawl from the site's sitemap.xml")

	// Output
	fs.StringVar(&flags.output, "output", "", "Output file (default: <domain>_crawl.<format>)")
	fs.StringVar(&flags.output, "o", "", "Output file (shorthand)")
	fs.StringVar(&flags.format, "format", "json", "Output format: json, csv, txt")
	fs.StringVar(&flags.format, "f", "json", "Output format (shorthand)")
	fs.BoolVar(&flags.save, "save", false, "Archive the crawl in the local database")
	fs.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while crawling (e.g. :9090)")
	fs.BoolVar(&flags.verbose, "verbose", false, "Log each page and admission decision")
	fs.BoolVar(&flags.verbose, "v", false, "Verbose logging (shorthand)")
	fs.BoolVar(&flags.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&flags.quiet, "q", false, "Suppress progress output (shorthand)")

	fs.Usage = func() {
		fmt.Println(`Usage: sandboa crawl <url> [flags]

Crawl a website breadth-first and export the scraped pages.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # Basic crawl
  sandboa crawl https://example.com

  # Deeper crawl following up to two external domains
  sandboa crawl https://example.com --depth 4 --external-links-depth 2

  # Polite crawl with exclusions
  sandboa crawl https://example.com \
    --delay 2s \
    --exclude "*/login*" \
    --exclude "*.pdf" \
    --format csv \
    --output ./example.csv`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("URL argument is required")
	}

	urlStr := fs.Arg(0)
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	format, err := export.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	if flags.quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	crawler, err := sandboa.NewCrawler(&sandboa.Config{
		MaxDepth:           flags.depth,
		MaxExternalDomains: flags.externalLinksDepth,
		Delay:              flags.delay,
		IgnoreRobotsTxt:    flags.noRobots,
		BotName:            flags.botName,
		UserAgent:          flags.userAgent,
		ExcludePatterns:    flags.exclude,
		IncludePatterns:    flags.include,
		Timeout:            flags.timeout,
		MaxPages:           flags.maxPages,
		EnableContentHash:  flags.contentHash,
		DiscoverSitemaps:   flags.sitemaps,
	})
	if err != nil {
		return err
	}
	crawler.SetLogger(logger)

	if flags.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(crawler.Metrics().Registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: flags.metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics listener failed", "error", err)
			}
		}()
		defer server.Close()
	}

	// SIGINT cancels the crawl; whatever was collected so far is still
	// exported below.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !flags.quiet {
		fmt.Printf("Starting crawl of %s...\n", urlStr)
	}

	result, err := crawler.Run(ctx, urlStr)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.Canceled) && !flags.quiet {
		fmt.Println("\nCrawl interrupted, saving partial results...")
	}

	outputPath := flags.output
	if outputPath == "" {
		name := strings.TrimPrefix(strings.TrimPrefix(result.Summary.StartURL, "https://"), "http://")
		name = strings.SplitN(name, "/", 2)[0]
		outputPath = export.SanitizeFileName(name+"_crawl") + "." + string(format)
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer file.Close()
	if err := export.Write(file, result, format); err != nil {
		return fmt.Errorf("failed to write results: %v", err)
	}

	if flags.save {
		st, err := store.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		crawl, err := st.SaveCrawl(result)
		if err != nil {
			return err
		}
		if !flags.quiet {
			fmt.Printf("Archived as crawl %d\n", crawl.ID)
		}
	}

	if !flags.quiet {
		s := result.Summary
		fmt.Printf("\nCrawl %s\n", result.State)
		fmt.Printf("  Pages scraped:   %d\n", s.PagesScraped)
		fmt.Printf("  URLs visited:    %d\n", s.URLsVisited)
		fmt.Printf("  Domains touched: %d\n", len(s.DomainsTouched))
		fmt.Printf("  Fetch errors:    %d\n", s.FetchErrors)
		fmt.Printf("  Robots denied:   %d\n", s.RobotsDenied)
		fmt.Printf("  Rate limited:    %d\n", s.RateLimited)
		if len(s.ExternalDomains) > 0 {
			fmt.Printf("  External domains: %s\n", strings.Join(s.ExternalDomains, ", "))
		}
		if len(s.CrawlDelays) > 0 {
			delays := make([]string, 0, len(s.CrawlDelays))
			for domain, d := range s.CrawlDelays {
				delays = append(delays, fmt.Sprintf("%s=%s", domain, d))
			}
			sort.Strings(delays)
			fmt.Printf("  Crawl delays:    %s\n", strings.Join(delays, ", "))
		}
		fmt.Printf("  Duration:        %s\n", s.Duration.Round(time.Millisecond))
		fmt.Printf("  Output:          %s\n", outputPath)
	}
	return nil
}
