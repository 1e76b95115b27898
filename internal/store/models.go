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

// Site represents one crawled domain together with the robots.txt and
// sitemap content fetched when the domain was first encountered
type Site struct {
	ID             uint    `gorm:"primaryKey"`
	Domain         string  `gorm:"uniqueIndex;not null"`
	RobotsContent  *string `gorm:"type:text"` // raw robots.txt, null when the site has none
	SitemapContent *string `gorm:"type:text"` // concatenated sitemap bodies, null when the site has none
	LastCrawledAt  *int64  // unix seconds of the most recent successful fetch
	CreatedAt      int64   `gorm:"autoCreateTime"`
	UpdatedAt      int64   `gorm:"autoUpdateTime"`
}

// TableName returns the table name for Site
func (Site) TableName() string {
	return "site"
}

// Page represents a single URL. Rows start in the FRONTIER state and
// are rewritten in place once a worker has processed them.
type Page struct {
	ID           uint    `gorm:"primaryKey"`
	SiteID       *uint   `gorm:"index"` // set on completion, frontier rows have none yet
	URL          string  `gorm:"uniqueIndex;not null"`
	PageTypeCode string  `gorm:"not null"` // FRONTIER, HTML, BINARY, IMAGE, DUPLICATE, ERROR, DISALLOWED
	HTMLContent  *string `gorm:"type:text"`
	HashContent  *string `gorm:"type:text;index"` // hex content hash, shared by duplicates
	// ActiveInCrawler marks a frontier row as leased by a worker. It is
	// true while leased and NULL otherwise, never false, so the lease
	// scan can filter on IS NULL.
	ActiveInCrawler *bool
	HTTPStatusCode  *int
	AccessedTime    *int64 // unix seconds
	Site            *Site  `gorm:"foreignKey:SiteID"`
	CreatedAt       int64  `gorm:"autoCreateTime"`
}

// TableName returns the table name for Page
func (Page) TableName() string {
	return "page"
}

// PageData holds the payload of a recognized binary document (PDF,
// DOC, DOCX, PPT, PPTX) belonging to a page
type PageData struct {
	ID           uint   `gorm:"primaryKey"`
	PageID       uint   `gorm:"not null;index"`
	DataTypeCode string `gorm:"not null"`
	Data         []byte `gorm:"not null"`
	Page         *Page  `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
	CreatedAt    int64  `gorm:"autoCreateTime"`
}

// TableName returns the table name for PageData
func (PageData) TableName() string {
	return "page_data"
}

// Image holds a fetched image payload belonging to a page
type Image struct {
	ID           uint   `gorm:"primaryKey"`
	PageID       uint   `gorm:"not null;index"`
	Filename     string `gorm:"not null"`
	ContentType  string `gorm:"type:text"`
	Data         []byte
	AccessedTime *int64 // unix seconds
	Page         *Page  `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
	CreatedAt    int64  `gorm:"autoCreateTime"`
}

// TableName returns the table name for Image
func (Image) TableName() string {
	return "image"
}

// Link is a directed edge between two pages. The composite primary key
// makes duplicate edges impossible.
type Link struct {
	FromPage uint `gorm:"primaryKey;autoIncrement:false"`
	ToPage   uint `gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the table name for Link
func (Link) TableName() string {
	return "link"
}

// Signature summarizes the shingle set of one stored HTML page: how
// many distinct shingles it has and its MinHash sketch. The shingles
// themselves live in shingle_posting.
type Signature struct {
	PageID uint `gorm:"primaryKey;autoIncrement:false"`
	// HashLength is the size of the page's shingle set, the stored
	// half of the Jaccard denominator.
	HashLength int    `gorm:"not null"`
	MinHash    string `gorm:"type:text"` // JSON array
	CreatedAt  int64  `gorm:"autoCreateTime"`
}

// TableName returns the table name for Signature
func (Signature) TableName() string {
	return "content_hash"
}

// SetMinHash serializes the sketch values to JSON for storage
func (s *Signature) SetMinHash(values []uint64) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	s.MinHash = string(data)
	return nil
}

// MinHashValues deserializes the stored sketch, nil when absent or
// malformed
func (s *Signature) MinHashValues() []uint64 {
	if s.MinHash == "" {
		return nil
	}
	var values []uint64
	if err := json.Unmarshal([]byte(s.MinHash), &values); err != nil {
		return nil
	}
	return values
}

// ShinglePosting is one entry of the inverted shingle index: this
// shingle value appears on this page. Shingles are CRC-32 values
// widened to int64 for SQLite. The composite primary key doubles as
// the lookup index, shingle first.
type ShinglePosting struct {
	Shingle int64 `gorm:"primaryKey;autoIncrement:false"`
	PageID  uint  `gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the table name for ShinglePosting
func (ShinglePosting) TableName() string {
	return "shingle_posting"
}
