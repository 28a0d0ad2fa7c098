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

// Package store archives crawl sessions in a local SQLite database so past
// crawls can be listed and compared.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	sandboa "github.com/agentberlin/sandboa"
)

// Store represents the database store
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by ~/.sandboa/sandboa.db, creating the
// directory if needed.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %v", err)
	}
	dbDir := filepath.Join(homeDir, ".sandboa")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}
	return NewStoreWithPath(filepath.Join(dbDir, "sandboa.db"))
}

// NewStoreWithPath creates a Store with a custom database path.
func NewStoreWithPath(dbPath string) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if _, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist: %s, error: %v", dbDir, err)
	}

	// WAL mode enables concurrent reads and writes; busy_timeout prevents
	// immediate "database is locked" errors.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(&Crawl{}, &Page{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}
	return &Store{db: database}, nil
}

// DB returns the underlying GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// SaveCrawl archives a finished crawl session and its page results.
func (s *Store) SaveCrawl(result *sandboa.CrawlResult) (*Crawl, error) {
	state := CrawlStateCompleted
	if result.State == sandboa.StateAborted {
		state = CrawlStateAborted
	}
	crawl := &Crawl{
		StartURL:      result.Summary.StartURL,
		State:         state,
		CrawlDateTime: time.Now().Unix(),
		CrawlDuration: int64(result.Summary.Duration),
		PagesCrawled:  result.Summary.PagesScraped,
		URLsVisited:   result.Summary.URLsVisited,
		FetchErrors:   result.Summary.FetchErrors,
		RobotsDenied:  result.Summary.RobotsDenied,
		RateLimited:   result.Summary.RateLimited,
	}
	if err := crawl.SetExternalDomainsArray(result.Summary.ExternalDomains); err != nil {
		return nil, err
	}

	for _, p := range result.Pages {
		page := Page{
			URL:              p.URL,
			Domain:           p.Domain,
			Depth:            p.Depth,
			Status:           p.StatusCode,
			ContentType:      p.ContentType,
			ContentHash:      p.ContentHash,
			DuplicateContent: p.DuplicateContent,
		}
		if p.Fields != nil {
			page.Title = p.Fields.Title
			page.MetaDescription = p.Fields.MetaDescription
			page.MetaKeywords = p.Fields.MetaKeywords
			page.TextLength = p.Fields.TextLength
			if headings, err := json.Marshal(map[string][]string{
				"h1": p.Fields.H1,
				"h2": p.Fields.H2,
				"h3": p.Fields.H3,
			}); err == nil {
				page.Headings = string(headings)
			}
			if links, err := json.Marshal(p.Fields.Links); err == nil {
				page.Links = string(links)
			}
			if images, err := json.Marshal(p.Fields.Images); err == nil {
				page.Images = string(images)
			}
		}
		crawl.Pages = append(crawl.Pages, page)
	}

	if err := s.db.Create(crawl).Error; err != nil {
		return nil, fmt.Errorf("failed to save crawl: %v", err)
	}
	return crawl, nil
}

// RecentCrawls returns the latest archived crawls, newest first, without
// their pages.
func (s *Store) RecentCrawls(limit int) ([]Crawl, error) {
	var crawls []Crawl
	err := s.db.Order("crawl_date_time DESC").Limit(limit).Find(&crawls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %v", err)
	}
	return crawls, nil
}

// GetCrawl loads one archived crawl with its pages.
func (s *Store) GetCrawl(id uint) (*Crawl, error) {
	var crawl Crawl
	err := s.db.Preload("Pages").First(&crawl, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl %d: %v", id, err)
	}
	return &crawl, nil
}
