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
	"regexp"
	"strings"
)

// PatternFilter applies user-supplied exclude and include URL patterns.
// Exclude patterns take precedence: any match rejects the URL immediately.
// When include patterns are configured the URL must match at least one of
// them (default-deny); with no include patterns every URL passes.
type PatternFilter struct {
	exclude []*regexp.Regexp
	include []*regexp.Regexp
}

// NewPatternFilter compiles glob-style exclude and include patterns.
// Patterns use shell wildcard semantics: '*' matches any run of characters,
// '?' matches a single character. Matching is case-insensitive and anchored
// to the whole URL.
func NewPatternFilter(exclude, include []string) (*PatternFilter, error) {
	f := &PatternFilter{}
	for _, p := range exclude {
		re, err := TranslateGlob(p)
		if err != nil {
			return nil, err
		}
		f.exclude = append(f.exclude, re)
	}
	for _, p := range include {
		re, err := TranslateGlob(p)
		if err != nil {
			return nil, err
		}
		f.include = append(f.include, re)
	}
	return f, nil
}

// Allowed reports whether the URL passes the exclude-then-include tests.
func (f *PatternFilter) Allowed(u string) bool {
	for _, re := range f.exclude {
		if re.MatchString(u) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, re := range f.include {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}

// TranslateGlob converts a glob-style wildcard pattern to an anchored,
// case-insensitive regular expression. '*' becomes '.*', '?' becomes '.',
// every other character is matched literally.
func TranslateGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?is)^`)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}
