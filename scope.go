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
	"sync"
)

// DomainScope decides which domains a crawl session may enter. The start
// domain is always in scope. External domains consume a shared hop budget:
// each previously unseen external domain is admitted while budget remains,
// and once admitted a domain stays in scope for the rest of the session.
// The budget only counts first admissions, so revisiting an admitted domain
// is free.
type DomainScope struct {
	startDomain string
	maxExternal int

	mu       sync.Mutex
	admitted map[string]bool
	used     int
}

// NewDomainScope creates a scope guard for the given start domain.
// maxExternal is the number of distinct external domains the session may
// enter; 0 confines the crawl to the start domain.
func NewDomainScope(startDomain string, maxExternal int) *DomainScope {
	return &DomainScope{
		startDomain: startDomain,
		maxExternal: maxExternal,
		admitted:    map[string]bool{},
	}
}

// Admit reports whether the domain is in scope. The second return value is
// true when this call consumed a unit of the external hop budget to admit a
// previously unseen domain. The check and the budget increment happen under
// one lock so concurrent callers cannot admit more domains than the budget
// allows.
func (s *DomainScope) Admit(domain string) (inScope, newlyAdmitted bool) {
	if domain == s.startDomain {
		return true, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admitted[domain] {
		return true, false
	}
	if s.used >= s.maxExternal {
		return false, false
	}
	s.admitted[domain] = true
	s.used++
	return true, true
}

// Contains reports whether the domain is currently in scope without
// consuming any budget.
func (s *DomainScope) Contains(domain string) bool {
	if domain == s.startDomain {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admitted[domain]
}

// AdmittedDomains returns the external domains admitted so far.
func (s *DomainScope) AdmittedDomains() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	domains := make([]string, 0, len(s.admitted))
	for d := range s.admitted {
		domains = append(domains, d)
	}
	return domains
}
