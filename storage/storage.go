// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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
	"sync"
)

// Storage is an interface which handles a crawl session's internal data:
// the visited set of canonical URLs and, when content hashing is enabled,
// the set of content hashes seen so far.
// The default Storage of a session is the InMemoryStorage.
type Storage interface {
	// Init initializes the storage
	Init() error
	// Visited marks a canonical URL as visited
	Visited(url string) error
	// IsVisited returns true if the canonical URL has been visited before
	IsVisited(url string) (bool, error)
	// VisitIfNotVisited atomically checks if a canonical URL has been
	// visited, and if not, marks it as visited. Returns true if the URL was
	// already visited. This is the atomic equivalent of IsVisited() +
	// Visited() and prevents two concurrent discoveries of the same URL
	// both passing the "not yet visited" test.
	VisitIfNotVisited(url string) (bool, error)
	// VisitedCount returns the number of canonical URLs visited so far
	VisitedCount() (int, error)
	// IsContentVisited returns true if content with the given hash has been seen
	IsContentVisited(contentHash string) (bool, error)
	// VisitedContent marks content with the given hash as seen
	VisitedContent(contentHash string) error
}

// InMemoryStorage is the default storage backend of sandboa.
// InMemoryStorage keeps visited URLs and content hashes in memory without
// persisting data on the disk; it lives for exactly one crawl session.
type InMemoryStorage struct {
	visitedURLs    map[string]bool
	visitedContent map[string]bool
	lock           *sync.RWMutex
}

// Init initializes InMemoryStorage
func (s *InMemoryStorage) Init() error {
	if s.visitedURLs == nil {
		s.visitedURLs = make(map[string]bool)
	}
	if s.visitedContent == nil {
		s.visitedContent = make(map[string]bool)
	}
	if s.lock == nil {
		s.lock = &sync.RWMutex{}
	}
	return nil
}

// Visited implements Storage.Visited()
func (s *InMemoryStorage) Visited(url string) error {
	s.lock.Lock()
	s.visitedURLs[url] = true
	s.lock.Unlock()
	return nil
}

// IsVisited implements Storage.IsVisited()
func (s *InMemoryStorage) IsVisited(url string) (bool, error) {
	s.lock.RLock()
	visited := s.visitedURLs[url]
	s.lock.RUnlock()
	return visited, nil
}

// VisitIfNotVisited implements Storage.VisitIfNotVisited()
// Returns true if the URL was already visited, false if it was newly marked.
func (s *InMemoryStorage) VisitIfNotVisited(url string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.visitedURLs[url] {
		return true, nil
	}
	s.visitedURLs[url] = true
	return false, nil
}

// VisitedCount implements Storage.VisitedCount()
func (s *InMemoryStorage) VisitedCount() (int, error) {
	s.lock.RLock()
	n := len(s.visitedURLs)
	s.lock.RUnlock()
	return n, nil
}

// IsContentVisited implements Storage.IsContentVisited()
func (s *InMemoryStorage) IsContentVisited(contentHash string) (bool, error) {
	s.lock.RLock()
	visited := s.visitedContent[contentHash]
	s.lock.RUnlock()
	return visited, nil
}

// VisitedContent implements Storage.VisitedContent()
func (s *InMemoryStorage) VisitedContent(contentHash string) error {
	s.lock.Lock()
	s.visitedContent[contentHash] = true
	s.lock.Unlock()
	return nil
}
