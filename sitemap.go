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
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
)

// sitemapMaxNesting bounds sitemap-index recursion.
const sitemapMaxNesting = 3

// DiscoverSitemapURLs fetches the well-known sitemap locations of the start
// domain and returns the page URLs they list, in document order,
// deduplicated. Sitemap index files are followed up to a small nesting
// limit. Missing or unparseable sitemaps yield no URLs and no error;
// sitemap discovery is best effort.
func DiscoverSitemapURLs(ctx context.Context, f *Fetcher, scheme, domain string) []string {
	seen := map[string]bool{}
	var urls []string
	for _, loc := range []string{"/sitemap.xml", "/sitemap_index.xml"} {
		collectSitemap(ctx, f, scheme+"://"+domain+loc, seen, &urls, 0)
	}
	return urls
}

func collectSitemap(ctx context.Context, f *Fetcher, sitemapURL string, seen map[string]bool, urls *[]string, depth int) {
	if depth > sitemapMaxNesting {
		return
	}
	resp, err := f.Get(ctx, sitemapURL)
	if err != nil || resp.StatusCode != http.StatusOK {
		return
	}
	doc, err := xmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return
	}

	root := xmlquery.FindOne(doc, "//*[local-name()='sitemapindex' or local-name()='urlset']")
	if root == nil {
		return
	}
	isIndex := root.Data == "sitemapindex"
	for _, loc := range xmlquery.Find(root, "//*[local-name()='loc']") {
		target := strings.TrimSpace(loc.InnerText())
		if target == "" {
			continue
		}
		if isIndex {
			collectSitemap(ctx, f, target, seen, urls, depth+1)
			continue
		}
		canonical, err := Canonicalize(target, "")
		if err != nil {
			continue
		}
		if !seen[canonical] {
			seen[canonical] = true
			*urls = append(*urls, canonical)
		}
	}
}
