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

// Admission reasons reported when a URL is rejected.
const (
	DeniedByRobots  = "robots"
	DeniedByPattern = "pattern"
	DeniedByScope   = "scope"
)

// AdmissionPipeline runs the policy checks a URL must pass before it is
// fetched: robots.txt, then the user's URL patterns, then domain scope.
// The checks run in that order and stop at the first rejection, so a
// robots-blocked URL never consumes external-domain budget. The scope
// guard is the only stage with mutable state.
type AdmissionPipeline struct {
	// Robots is consulted first. Nil disables robots.txt compliance.
	Robots *RobotsCache
	// Filter holds the user's exclude and include patterns.
	Filter *PatternFilter
	// Scope decides domain membership and spends external-domain budget.
	Scope *DomainScope
	// OnExternalAdmit, if set, is called when a previously unseen external
	// domain is admitted.
	OnExternalAdmit func(domain string)
}

// Admit reports whether the URL may be fetched. On rejection the second
// return value names the stage that rejected it.
func (p *AdmissionPipeline) Admit(u string) (bool, string) {
	domain := domainOf(u)

	if p.Robots != nil && !p.Robots.Allowed(domain, pathOf(u)) {
		return false, DeniedByRobots
	}
	if p.Filter != nil && !p.Filter.Allowed(u) {
		return false, DeniedByPattern
	}
	inScope, newlyAdmitted := p.Scope.Admit(domain)
	if !inScope {
		return false, DeniedByScope
	}
	if newlyAdmitted && p.OnExternalAdmit != nil {
		p.OnExternalAdmit(domain)
	}
	return true, ""
}
