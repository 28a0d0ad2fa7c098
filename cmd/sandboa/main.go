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

// Sandboa CLI
//
// Command-line interface for the sandboa web crawler. Crawls a website
// breadth-first while honoring robots.txt and per-domain rate limits, and
// writes the scraped page data to JSON, CSV or plain text.
//
// Usage:
//
//	sandboa <command> [flags]
//
// Commands:
//
//	crawl     Crawl a website and export the results
//	list      List archived crawls from the local database
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/agentberlin/sandboa/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "crawl":
		if err := runCrawl(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "list":
		if err := runList(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Printf("sandboa %s\n", version.CurrentVersion)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`sandboa - polite breadth-first web crawler

Usage:
  sandboa <command> [flags]

Commands:
  crawl     Crawl a website and export the results
  list      List archived crawls from the local database
  version   Show version information
  help      Show this help message

Examples:
  # Crawl a website two levels deep
  sandboa crawl https://example.com --depth 2

  # Allow the crawl to follow links to up to 3 other domains
  sandboa crawl https://example.com --external-links-depth 3

  # Slow down and identify as a custom bot
  sandboa crawl https://example.com --delay 2s --bot-name mybot

  # Skip login and admin pages, export as CSV
  sandboa crawl https://example.com --exclude "*/login*" --exclude "*/admin*" --format csv

  # Archive the crawl in the local database
  sandboa crawl https://example.com --save

Use "sandboa <command> --help" for more information about a command.`)
}
