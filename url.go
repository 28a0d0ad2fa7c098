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
	"errors"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// ErrInvalidURL is returned when a reference cannot be parsed as a URL.
var ErrInvalidURL = errors.New("invalid URL")

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// Canonicalize resolves ref against base and returns the canonical absolute
// form used for visited-set and frontier membership: the query and fragment
// are stripped, so two references to the same scheme+host+path map to the
// same string. An empty base parses ref as an absolute URL.
//
// Canonicalization is idempotent: Canonicalize(Canonicalize(u)) == Canonicalize(u).
func Canonicalize(ref, base string) (string, error) {
	var (
		u   *whatwgUrl.Url
		err error
	)
	if base == "" {
		u, err = urlParser.Parse(ref)
	} else {
		u, err = urlParser.ParseRef(base, ref)
	}
	if err != nil {
		return "", ErrInvalidURL
	}
	u.SetSearch("")
	return u.Href(true), nil
}

// domainOf extracts the host of a URL for scope, robots and rate-limit
// bookkeeping. The host is lowercased and keeps a non-standard port, so
// example.com:8080 and example.com are tracked as distinct domains.
func domainOf(rawURL string) string {
	u, err := urlParser.Parse(rawURL)
	if err != nil {
		return ""
	}
	hostname := u.Hostname()
	port := u.Port()
	if port != "" && port != "80" && port != "443" {
		return strings.ToLower(hostname + ":" + port)
	}
	return strings.ToLower(hostname)
}

// schemeOf returns the scheme of a URL, or "" if it cannot be parsed.
func schemeOf(rawURL string) string {
	u, err := urlParser.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Protocol(), ":")
}

// pathOf returns the escaped path of a URL for robots.txt rule evaluation.
// The root path is reported as "/" so group rules like "Disallow: /" apply.
func pathOf(rawURL string) string {
	u, err := urlParser.Parse(rawURL)
	if err != nil {
		return "/"
	}
	p := u.Pathname()
	if p == "" {
		return "/"
	}
	return p
}
