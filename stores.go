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

package crawler

import (
	"net/url"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"
)

// Page type codes. A page enters the store as FRONTIER and moves to
// exactly one of the other types when a worker completes it; terminal
// types never change again.
const (
	PageTypeFrontier   = "FRONTIER"
	PageTypeHTML       = "HTML"
	PageTypeBinary     = "BINARY"
	PageTypeImage      = "IMAGE"
	PageTypeDuplicate  = "DUPLICATE"
	PageTypeError      = "ERROR"
	PageTypeDisallowed = "DISALLOWED"
)

// Data type codes for stored non-image binaries.
const (
	DataTypePDF  = "PDF"
	DataTypeDOC  = "DOC"
	DataTypeDOCX = "DOCX"
	DataTypePPT  = "PPT"
	DataTypePPTX = "PPTX"
)

// BinaryContentTypes maps the recognized document media types to
// their data type codes. Anything outside this map that is neither
// HTML nor an image is completed as BINARY without a stored payload.
var BinaryContentTypes = map[string]string{
	"application/pdf":    DataTypePDF,
	"application/msword": DataTypeDOC,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DataTypeDOCX,
	"application/vnd.ms-powerpoint": DataTypePPT,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": DataTypePPTX,
}

// ClassifyContentType maps a response media type (lowercased, without
// parameters) to a page type, plus the data type code when the page
// type is BINARY and the payload is worth keeping.
func ClassifyContentType(contentType string) (pageType, dataType string) {
	switch {
	case strings.HasPrefix(contentType, "text/html"):
		return PageTypeHTML, ""
	case strings.HasPrefix(contentType, "image/"):
		return PageTypeImage, ""
	default:
		return PageTypeBinary, BinaryContentTypes[contentType]
	}
}

// ImageFilename derives a storable filename from an image URL: the
// last path segment, made filesystem-safe.
func ImageFilename(rawURL string) string {
	segment := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		segment = u.Path
	}
	if i := strings.LastIndexByte(segment, '/'); i >= 0 {
		segment = segment[i+1:]
	}
	name := sanitize.Name(segment)
	if name == "" || name == "." {
		return "image"
	}
	return name
}

// LeasedPage is a frontier row claimed by one worker.
type LeasedPage struct {
	ID  uint
	URL string
}

// PageResult carries the terminal fields written back when a lease is
// completed. Nil pointers leave the column null.
type PageResult struct {
	SiteID         *uint
	PageType       string
	HTMLContent    *string
	HashContent    *string
	HTTPStatusCode *int
	AccessedTime   time.Time
}

// Site is one crawled domain with its cached politeness artifacts.
type Site struct {
	ID             uint
	Domain         string
	RobotsContent  *string
	SitemapContent *string
	LastCrawledAt  *time.Time
}

// FrontierStore is the durable shared queue of pages to crawl. It is
// the only synchronization point between workers.
type FrontierStore interface {
	// EnqueueSeed inserts a frontier row for the URL. Re-seeding a
	// known URL is a no-op.
	EnqueueSeed(url string) error
	// EnqueueDiscovered admits a URL found on the page fromPageID:
	// it creates a frontier row unless the URL is already known and
	// records the link edge. Oversize URLs and discoveries past the
	// page-table cap are dropped with ErrURLTooLong and
	// ErrFrontierFull.
	EnqueueDiscovered(fromPageID uint, toURL string) error
	// LeaseFrontierPage atomically claims the oldest available
	// frontier row. It returns nil when the frontier is empty.
	LeaseFrontierPage() (*LeasedPage, error)
	// CompletePage writes the terminal fields and releases the
	// lease. Completing a page this worker does not hold returns
	// ErrPageNotLeased.
	CompletePage(pageID uint, result *PageResult) error
	// ResetLeases releases every held lease, recovering pages
	// abandoned by a crashed run. It returns how many it released.
	ResetLeases() (int64, error)
}

// SiteStore persists domains and their robots and sitemap snapshots.
type SiteStore interface {
	// SiteByDomain returns the site record, or nil when the domain
	// has not been seen.
	SiteByDomain(domain string) (*Site, error)
	// CreateSite inserts a site record with its fetched artifacts.
	CreateSite(domain string, robots, sitemap *string) (*Site, error)
	// MarkSiteCrawled moves the site's last crawl time forward.
	MarkSiteCrawled(siteID uint, at time.Time) error
}

// ArtifactStore persists what workers extract from completed pages:
// binary payloads, images and the near-duplicate index.
type ArtifactStore interface {
	// PageIDByHash returns the page holding this exact content
	// hash, or nil when the hash is unseen.
	PageIDByHash(hash string) (*uint, error)
	// MaxJaccard returns the highest Jaccard similarity between the
	// candidate shingle set and any stored signature, with the page
	// that carries it. Zero similarity means no overlap at all.
	MaxJaccard(shingles []uint32) (float64, *uint, error)
	// SaveSignature stores a page's shingle set and MinHash sketch
	// in the near-duplicate index.
	SaveSignature(pageID uint, shingles []uint32, minhash []uint64) error
	// SavePageData stores a document payload, subject to the
	// aggregate binary budget (ErrBinaryBudgetExhausted).
	SavePageData(pageID uint, dataTypeCode string, data []byte) error
	// SaveImage stores an image payload.
	SaveImage(pageID uint, filename, contentType string, data []byte, at time.Time) error
}
