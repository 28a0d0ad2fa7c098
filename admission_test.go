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

import "testing"

func newTestPipeline(robotsBody string, exclude []string, budget int) *AdmissionPipeline {
	mock := NewMockTransport()
	var robots *RobotsCache
	if robotsBody != "" {
		mock.RegisterRobots("other.com", robotsBody)
		mock.RegisterRobots("example.com", robotsBody)
		robots = newTestRobotsCache(mock)
	}
	filter, _ := NewPatternFilter(exclude, nil)
	return &AdmissionPipeline{
		Robots: robots,
		Filter: filter,
		Scope:  NewDomainScope("example.com", budget),
	}
}

func TestAdmissionOrderRobotsFirst(t *testing.T) {
	p := newTestPipeline("User-agent: *\nDisallow: /\n", nil, 1)

	// A robots-blocked external URL must not consume scope budget.
	admitted, reason := p.Admit("http://other.com/page")
	if admitted || reason != DeniedByRobots {
		t.Fatalf("admitted=%v reason=%q, expected robots denial", admitted, reason)
	}
	if len(p.Scope.AdmittedDomains()) != 0 {
		t.Error("robots denial must not spend external-domain budget")
	}
}

func TestAdmissionPatternBeforeScope(t *testing.T) {
	p := newTestPipeline("", []string{"*blocked*"}, 1)

	admitted, reason := p.Admit("http://other.com/blocked")
	if admitted || reason != DeniedByPattern {
		t.Fatalf("admitted=%v reason=%q, expected pattern denial", admitted, reason)
	}
	if len(p.Scope.AdmittedDomains()) != 0 {
		t.Error("pattern denial must not spend external-domain budget")
	}
}

func TestAdmissionScopeSpendsBudget(t *testing.T) {
	p := newTestPipeline("", nil, 1)

	var admittedDomains []string
	p.OnExternalAdmit = func(domain string) {
		admittedDomains = append(admittedDomains, domain)
	}

	if admitted, _ := p.Admit("http://a.com/"); !admitted {
		t.Fatal("first external domain should be admitted")
	}
	if admitted, reason := p.Admit("http://b.com/"); admitted || reason != DeniedByScope {
		t.Fatal("second external domain should exhaust the budget")
	}
	if admitted, _ := p.Admit("http://a.com/again"); !admitted {
		t.Error("already admitted domain should stay in scope")
	}
	if len(admittedDomains) != 1 || admittedDomains[0] != "a.com" {
		t.Errorf("OnExternalAdmit calls = %v, expected [a.com]", admittedDomains)
	}
}

func TestAdmissionNilRobotsAllowsAll(t *testing.T) {
	p := newTestPipeline("", nil, 0)
	if admitted, _ := p.Admit("http://example.com/anything"); !admitted {
		t.Error("start-domain URL should be admitted without robots")
	}
}
