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

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sandboa "github.com/agentberlin/sandboa"
)

func sampleResult() *sandboa.CrawlResult {
	return &sandboa.CrawlResult{
		Pages: []sandboa.PageResult{
			{
				URL:         "http://example.com/",
				Domain:      "example.com",
				Depth:       0,
				StatusCode:  200,
				ContentType: "text/html",
				Fields: &sandboa.Fields{
					Title:           "Home",
					MetaDescription: "The home page",
					H1:              []string{"Welcome"},
					H2:              []string{"One", "Two"},
					H3:              []string{},
					Links:           []string{"http://example.com/a"},
					Images:          []sandboa.Image{{Src: "http://example.com/logo.png", Alt: "Logo"}},
					TextLength:      42,
				},
			},
			{
				URL:         "http://example.com/file.pdf",
				Domain:      "example.com",
				Depth:       1,
				StatusCode:  200,
				ContentType: "application/pdf",
			},
		},
		Summary: sandboa.Summary{
			StartURL:        "http://example.com/",
			PagesScraped:    2,
			URLsVisited:     2,
			DomainsTouched:  []string{"example.com"},
			ExternalDomains: []string{"cdn.example.net"},
			CrawlDelays:     map[string]time.Duration{"example.com": 5 * time.Second},
			Duration:        3 * time.Second,
		},
		State: sandboa.StateCompleted,
	}
}

func TestParseFormat(t *testing.T) {
	for name, expected := range map[string]Format{
		"json": FormatJSON, "CSV": FormatCSV, "txt": FormatText, "text": FormatText,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatJSON))

	var decoded sandboa.CrawlResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Pages, 2)
	assert.Equal(t, "Home", decoded.Pages[0].Fields.Title)
	assert.Nil(t, decoded.Pages[1].Fields)
	assert.Equal(t, sandboa.StateCompleted, decoded.State)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	row := records[1]
	assert.Equal(t, "http://example.com/", row[0])
	assert.Equal(t, "example.com", row[1])
	assert.Equal(t, "Home", row[5])
	assert.Equal(t, "One | Two", row[9])
	// Non-HTML rows keep the column count with empty field cells.
	assert.Len(t, records[2], len(csvHeader))
	assert.Equal(t, "application/pdf", records[2][4])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatText))

	out := buf.String()
	assert.Contains(t, out, "URL: http://example.com/")
	assert.Contains(t, out, "Domain: example.com")
	assert.Contains(t, out, "Title: Home")
	assert.Contains(t, out, "Pages: 2")
	assert.Contains(t, out, "URLs visited: 2")
	assert.Contains(t, out, "Domains touched: 1")
	assert.Contains(t, out, "cdn.example.net")
	assert.Contains(t, out, "Custom crawl delays: example.com=5s")
}

func TestSanitizeFileName(t *testing.T) {
	got := SanitizeFileName("example.com_crawl.json")
	assert.False(t, strings.ContainsAny(got, "/\\ "))
	assert.True(t, strings.HasSuffix(got, ".json"))
}
