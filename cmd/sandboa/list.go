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
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/agentberlin/sandboa/internal/store"
)

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of crawls to list")
	fs.Usage = func() {
		fmt.Println(`Usage: sandboa list [flags]

List archived crawls, newest first.

Flags:`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	crawls, err := st.RecentCrawls(*limit)
	if err != nil {
		return err
	}
	if len(crawls) == 0 {
		fmt.Println("No archived crawls. Run \"sandboa crawl <url> --save\" to archive one.")
		return nil
	}

	fmt.Printf("%-5s %-40s %-10s %-7s %-20s\n", "ID", "START URL", "STATE", "PAGES", "DATE")
	for _, c := range crawls {
		url := c.StartURL
		if len(url) > 40 {
			url = url[:37] + "..."
		}
		date := time.Unix(c.CrawlDateTime, 0).Format("2006-01-02 15:04:05")
		fmt.Printf("%-5d %-40s %-10s %-7d %-20s\n", c.ID, url, c.State, c.PagesCrawled, date)
		if domains := c.GetExternalDomainsArray(); len(domains) > 0 {
			fmt.Printf("      external: %s\n", strings.Join(domains, ", "))
		}
	}
	return nil
}
