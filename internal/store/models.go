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

package store

import "encoding/json"

// Crawl state constants
const (
	CrawlStateCompleted = "completed"
	CrawlStateAborted   = "aborted"
)

// Crawl represents an archived crawl session
type Crawl struct {
	ID              uint   `gorm:"primaryKey"`
	StartURL        string `gorm:"not null;index"`
	State           string `gorm:"not null;default:'completed'"` // completed, aborted
	CrawlDateTime   int64  `gorm:"not null"`
	CrawlDuration   int64  `gorm:"not null"` // nanoseconds
	PagesCrawled    int    `gorm:"not null"`
	URLsVisited     int    `gorm:"default:0"`
	FetchErrors     int    `gorm:"default:0"`
	RobotsDenied    int    `gorm:"default:0"`
	RateLimited     int    `gorm:"default:0"`
	ExternalDomains string `gorm:"type:text"` // JSON array
	Pages           []Page `gorm:"foreignKey:CrawlID;constraint:OnDelete:CASCADE"`
	CreatedAt       int64  `gorm:"autoCreateTime"`
	UpdatedAt       int64  `gorm:"autoUpdateTime"`
}

// GetExternalDomainsArray deserializes the ExternalDomains JSON to []string
func (c *Crawl) GetExternalDomainsArray() []string {
	if c.ExternalDomains == "" {
		return nil
	}
	var domains []string
	if err := json.Unmarshal([]byte(c.ExternalDomains), &domains); err != nil {
		return nil
	}
	return domains
}

// SetExternalDomainsArray serializes []string to JSON for ExternalDomains
func (c *Crawl) SetExternalDomainsArray(domains []string) error {
	if len(domains) == 0 {
		c.ExternalDomains = ""
		return nil
	}
	data, err := json.Marshal(domains)
	if err != nil {
		return err
	}
	c.ExternalDomains = string(data)
	return nil
}

// Page represents a single page result of an archived crawl
type Page struct {
	ID               uint   `gorm:"primaryKey"`
	CrawlID          uint   `gorm:"not null;index"`
	URL              string `gorm:"not null"`
	Domain           string `gorm:"type:text;index"`
	Depth            int    `gorm:"default:0"` // 0 = start URL
	Status           int    `gorm:"not null"`
	ContentType      string `gorm:"type:text"`
	Title            string `gorm:"type:text"`
	MetaDescription  string `gorm:"type:text"`
	MetaKeywords     string `gorm:"type:text"`
	Headings         string `gorm:"type:text"` // JSON object {"h1":[...],"h2":[...],"h3":[...]}
	Links            string `gorm:"type:text"` // JSON array
	Images           string `gorm:"type:text"` // JSON array of {src,alt}
	TextLength       int    `gorm:"default:0"`
	ContentHash      string `gorm:"type:text;index"`
	DuplicateContent bool   `gorm:"default:false"`
	CreatedAt        int64  `gorm:"autoCreateTime"`
}
