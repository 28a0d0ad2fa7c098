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

package storage

import (
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryStorageVisited(t *testing.T) {
	s := &InMemoryStorage{}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	if visited, _ := s.IsVisited("http://example.com/"); visited {
		t.Error("fresh storage should have no visited URLs")
	}
	if err := s.Visited("http://example.com/"); err != nil {
		t.Fatal(err)
	}
	if visited, _ := s.IsVisited("http://example.com/"); !visited {
		t.Error("URL should be visited after Visited()")
	}
	if n, _ := s.VisitedCount(); n != 1 {
		t.Errorf("VisitedCount = %d, expected 1", n)
	}
}

func TestVisitIfNotVisited(t *testing.T) {
	s := &InMemoryStorage{}
	s.Init()

	if already, _ := s.VisitIfNotVisited("http://example.com/"); already {
		t.Error("first call should report not yet visited")
	}
	if already, _ := s.VisitIfNotVisited("http://example.com/"); !already {
		t.Error("second call should report already visited")
	}
}

func TestVisitIfNotVisitedConcurrent(t *testing.T) {
	s := &InMemoryStorage{}
	s.Init()

	const workers = 50
	var wg sync.WaitGroup
	winners := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			already, _ := s.VisitIfNotVisited("http://example.com/race")
			if !already {
				winners <- true
			}
		}()
	}
	wg.Wait()
	close(winners)

	if n := len(winners); n != 1 {
		t.Errorf("%d goroutines claimed the first visit, expected exactly 1", n)
	}
}

func TestContentVisited(t *testing.T) {
	s := &InMemoryStorage{}
	s.Init()

	if seen, _ := s.IsContentVisited("hash1"); seen {
		t.Error("fresh storage should have no content hashes")
	}
	s.VisitedContent("hash1")
	if seen, _ := s.IsContentVisited("hash1"); !seen {
		t.Error("hash should be seen after VisitedContent()")
	}
	if seen, _ := s.IsContentVisited("hash2"); seen {
		t.Error("unrelated hash should not be seen")
	}
}

func TestVisitedCountGrows(t *testing.T) {
	s := &InMemoryStorage{}
	s.Init()
	for i := 0; i < 10; i++ {
		s.Visited(fmt.Sprintf("http://example.com/%d", i))
	}
	if n, _ := s.VisitedCount(); n != 10 {
		t.Errorf("VisitedCount = %d, expected 10", n)
	}
}
