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
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extraction caps keep result payloads bounded on link-farm pages.
const (
	maxHeadingsPerLevel = 5
	maxAnchorLinks      = 50
	maxImages           = 20
)

// Image is an extracted <img> reference.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Fields holds the structured data extracted from one HTML page.
type Fields struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	MetaKeywords    string   `json:"meta_keywords"`
	H1              []string `json:"h1"`
	H2              []string `json:"h2"`
	H3              []string `json:"h3"`
	Links           []string `json:"links"`
	Images          []Image  `json:"images"`
	TextLength      int      `json:"text_length"`
}

// ExtractLinks returns the absolute form of every <a href> in the document,
// resolved against pageURL (or the document's <base href> when present),
// deduplicated in first-seen order. Unparseable and non-http(s) references
// are dropped.
func ExtractLinks(body []byte, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved, err := Canonicalize(href, pageURL); err == nil {
			base = resolved
		}
	}

	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs, err := Canonicalize(href, base)
		if err != nil {
			return
		}
		if scheme := schemeOf(abs); scheme != "http" && scheme != "https" {
			return
		}
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links
}

// ExtractFields parses the page and pulls out the title, meta tags,
// headings, anchor links, images and visible text length. Headings, links
// and images are capped; see the constants above.
func ExtractFields(body []byte, pageURL string) Fields {
	f := Fields{
		H1:     []string{},
		H2:     []string{},
		H3:     []string{},
		Links:  []string{},
		Images: []Image{},
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return f
	}

	f.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if v, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		f.MetaDescription = strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		f.MetaKeywords = strings.TrimSpace(v)
	}

	f.H1 = extractHeadings(doc, "h1")
	f.H2 = extractHeadings(doc, "h2")
	f.H3 = extractHeadings(doc, "h3")

	for _, link := range ExtractLinks(body, pageURL) {
		if len(f.Links) >= maxAnchorLinks {
			break
		}
		f.Links = append(f.Links, link)
	}

	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(f.Images) >= maxImages {
			return false
		}
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return true
		}
		abs, err := Canonicalize(src, pageURL)
		if err != nil {
			return true
		}
		alt, _ := s.Attr("alt")
		f.Images = append(f.Images, Image{Src: abs, Alt: strings.TrimSpace(alt)})
		return true
	})

	f.TextLength = len(extractAllText(body))
	return f
}

func extractHeadings(doc *goquery.Document, tag string) []string {
	headings := []string{}
	doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(headings) >= maxHeadingsPerLevel {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			headings = append(headings, text)
		}
		return true
	})
	return headings
}

// extractAllText extracts all visible text from HTML, removing all tags and
// normalizing whitespace.
func extractAllText(htmlBody []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
