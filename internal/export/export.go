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

// Package export writes crawl results to JSON, CSV or plain text files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kennygrant/sanitize"

	sandboa "github.com/agentberlin/sandboa"
)

// Format identifies an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text", "plain":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported output format %q (supported: json, csv, txt)", name)
}

// Write renders the result in the given format.
func Write(w io.Writer, result *sandboa.CrawlResult, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		return writeCSV(w, result)
	case FormatText:
		return writeText(w, result)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// SanitizeFileName replaces dangerous characters in a string so the return
// value can be used as a safe file name.
func SanitizeFileName(fileName string) string {
	ext := filepath.Ext(fileName)
	cleanExt := sanitize.BaseName(ext)
	if cleanExt == "" {
		cleanExt = ".unknown"
	}
	return strings.Replace(fmt.Sprintf(
		"%s.%s",
		sanitize.BaseName(fileName[:len(fileName)-len(ext)]),
		cleanExt[1:],
	), "-", "_", -1)
}

func writeJSON(w io.Writer, result *sandboa.CrawlResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// csvHeader lists the flattened columns of the CSV format. List fields are
// joined with " | " so each page stays on one row.
var csvHeader = []string{
	"url", "domain", "depth", "status_code", "content_type",
	"title", "meta_description", "meta_keywords",
	"h1", "h2", "h3", "links", "images",
	"text_length", "content_hash", "duplicate_content",
}

func writeCSV(w io.Writer, result *sandboa.CrawlResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, page := range result.Pages {
		row := []string{
			page.URL,
			page.Domain,
			strconv.Itoa(page.Depth),
			strconv.Itoa(page.StatusCode),
			page.ContentType,
		}
		if page.Fields != nil {
			images := make([]string, 0, len(page.Fields.Images))
			for _, img := range page.Fields.Images {
				images = append(images, img.Src)
			}
			row = append(row,
				page.Fields.Title,
				page.Fields.MetaDescription,
				page.Fields.MetaKeywords,
				strings.Join(page.Fields.H1, " | "),
				strings.Join(page.Fields.H2, " | "),
				strings.Join(page.Fields.H3, " | "),
				strings.Join(page.Fields.Links, " | "),
				strings.Join(images, " | "),
				strconv.Itoa(page.Fields.TextLength),
			)
		} else {
			row = append(row, "", "", "", "", "", "", "", "", "0")
		}
		row = append(row, page.ContentHash, strconv.FormatBool(page.DuplicateContent))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, result *sandboa.CrawlResult) error {
	for _, page := range result.Pages {
		fmt.Fprintf(w, "URL: %s\n", page.URL)
		fmt.Fprintf(w, "Domain: %s  Depth: %d  Status: %d  Content-Type: %s\n",
			page.Domain, page.Depth, page.StatusCode, page.ContentType)
		if page.Fields != nil {
			fmt.Fprintf(w, "Title: %s\n", page.Fields.Title)
			if page.Fields.MetaDescription != "" {
				fmt.Fprintf(w, "Description: %s\n", page.Fields.MetaDescription)
			}
			for _, h := range page.Fields.H1 {
				fmt.Fprintf(w, "H1: %s\n", h)
			}
			fmt.Fprintf(w, "Links: %d  Images: %d  Text length: %d\n",
				len(page.Fields.Links), len(page.Fields.Images), page.Fields.TextLength)
		}
		if page.DuplicateContent {
			fmt.Fprintln(w, "Duplicate content: yes")
		}
		fmt.Fprintln(w, strings.Repeat("-", 60))
	}

	s := result.Summary
	fmt.Fprintf(w, "Crawl of %s: %s\n", s.StartURL, result.State)
	fmt.Fprintf(w, "Pages: %d  Errors: %d  Robots denied: %d  Rate limited: %d\n",
		s.PagesScraped, s.FetchErrors, s.RobotsDenied, s.RateLimited)
	fmt.Fprintf(w, "URLs visited: %d  Domains touched: %d\n",
		s.URLsVisited, len(s.DomainsTouched))
	if len(s.ExternalDomains) > 0 {
		fmt.Fprintf(w, "External domains: %s\n", strings.Join(s.ExternalDomains, ", "))
	}
	if len(s.CrawlDelays) > 0 {
		domains := make([]string, 0, len(s.CrawlDelays))
		for d := range s.CrawlDelays {
			domains = append(domains, d)
		}
		sort.Strings(domains)
		parts := make([]string, 0, len(domains))
		for _, d := range domains {
			parts = append(parts, fmt.Sprintf("%s=%s", d, s.CrawlDelays[d]))
		}
		fmt.Fprintf(w, "Custom crawl delays: %s\n", strings.Join(parts, ", "))
	}
	fmt.Fprintf(w, "Duration: %s\n", s.Duration)
	return nil
}
