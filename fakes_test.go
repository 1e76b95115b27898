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
	"sync"
	"time"
)

// memPage is one in-memory page row.
type memPage struct {
	id          uint
	siteID      *uint
	url         string
	pageType    string
	htmlContent *string
	hashContent *string
	statusCode  *int
	accessed    *time.Time
	active      bool
}

type memImage struct {
	filename    string
	contentType string
	data        []byte
}

type memData struct {
	dataTypeCode string
	data         []byte
}

// memoryStore implements FrontierStore, SiteStore and ArtifactStore
// in memory, mirroring the durable store's semantics closely enough
// for component tests: FIFO leasing, URL uniqueness, lease guards and
// the discovery caps.
type memoryStore struct {
	mu sync.Mutex

	pages      []*memPage
	pagesByURL map[string]*memPage
	nextPageID uint
	links      map[[2]uint]bool

	sites       map[string]*Site
	nextSiteID  uint
	createCalls int

	signatures map[uint][]uint32
	minhashes  map[uint][]uint64
	pageData   map[uint]memData
	images     map[uint]memImage

	maxURLLen    int
	maxPages     int
	binaryBudget int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		pagesByURL: make(map[string]*memPage),
		links:      make(map[[2]uint]bool),
		sites:      make(map[string]*Site),
		signatures: make(map[uint][]uint32),
		minhashes:  make(map[uint][]uint64),
		pageData:   make(map[uint]memData),
		images:     make(map[uint]memImage),
	}
}

func (s *memoryStore) insertFrontierLocked(url string) *memPage {
	s.nextPageID++
	page := &memPage{
		id:       s.nextPageID,
		url:      url,
		pageType: PageTypeFrontier,
	}
	s.pages = append(s.pages, page)
	s.pagesByURL[url] = page
	return page
}

func (s *memoryStore) EnqueueSeed(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pagesByURL[url]; ok {
		return nil
	}
	s.insertFrontierLocked(url)
	return nil
}

func (s *memoryStore) EnqueueDiscovered(fromPageID uint, toURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxURLLen > 0 && len(toURL) > s.maxURLLen {
		return ErrURLTooLong
	}
	if s.maxPages > 0 && len(s.pages) >= s.maxPages {
		return ErrFrontierFull
	}
	page, ok := s.pagesByURL[toURL]
	if !ok {
		page = s.insertFrontierLocked(toURL)
	}
	s.links[[2]uint{fromPageID, page.id}] = true
	return nil
}

func (s *memoryStore) LeaseFrontierPage() (*LeasedPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, page := range s.pages {
		if page.pageType == PageTypeFrontier && !page.active {
			page.active = true
			return &LeasedPage{ID: page.id, URL: page.url}, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) CompletePage(pageID uint, result *PageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, page := range s.pages {
		if page.id != pageID {
			continue
		}
		if page.pageType != PageTypeFrontier || !page.active {
			return ErrPageNotLeased
		}
		page.siteID = result.SiteID
		page.pageType = result.PageType
		page.htmlContent = result.HTMLContent
		page.hashContent = result.HashContent
		page.statusCode = result.HTTPStatusCode
		accessed := result.AccessedTime
		page.accessed = &accessed
		page.active = false
		return nil
	}
	return ErrPageNotLeased
}

func (s *memoryStore) ResetLeases() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var released int64
	for _, page := range s.pages {
		if page.pageType == PageTypeFrontier && page.active {
			page.active = false
			released++
		}
	}
	return released, nil
}

func (s *memoryStore) SiteByDomain(domain string) (*Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	site, ok := s.sites[domain]
	if !ok {
		return nil, nil
	}
	clone := *site
	return &clone, nil
}

func (s *memoryStore) CreateSite(domain string, robots, sitemap *string) (*Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.nextSiteID++
	site := &Site{
		ID:             s.nextSiteID,
		Domain:         domain,
		RobotsContent:  robots,
		SitemapContent: sitemap,
	}
	s.sites[domain] = site
	clone := *site
	return &clone, nil
}

func (s *memoryStore) MarkSiteCrawled(siteID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, site := range s.sites {
		if site.ID == siteID {
			crawled := at
			site.LastCrawledAt = &crawled
			return nil
		}
	}
	return nil
}

func (s *memoryStore) PageIDByHash(hash string) (*uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, page := range s.pages {
		if page.hashContent != nil && *page.hashContent == hash {
			id := page.id
			return &id, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) MaxJaccard(shingles []uint32) (float64, *uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	query := make(map[uint32]bool, len(shingles))
	for _, v := range shingles {
		query[v] = true
	}
	var best float64
	var bestPage *uint
	for pageID, stored := range s.signatures {
		intersection := 0
		for _, v := range stored {
			if query[v] {
				intersection++
			}
		}
		similarity := JaccardFromCounts(intersection, len(stored), len(shingles))
		if similarity > best {
			best = similarity
			id := pageID
			bestPage = &id
		}
	}
	return best, bestPage, nil
}

func (s *memoryStore) SaveSignature(pageID uint, shingles []uint32, minhash []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signatures[pageID] = append([]uint32(nil), shingles...)
	s.minhashes[pageID] = append([]uint64(nil), minhash...)
	return nil
}

func (s *memoryStore) SavePageData(pageID uint, dataTypeCode string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binaryBudget > 0 {
		var stored int64
		for _, d := range s.pageData {
			stored += int64(len(d.data))
		}
		if stored+int64(len(data)) > s.binaryBudget {
			return ErrBinaryBudgetExhausted
		}
	}
	s.pageData[pageID] = memData{dataTypeCode: dataTypeCode, data: append([]byte(nil), data...)}
	return nil
}

func (s *memoryStore) SaveImage(pageID uint, filename, contentType string, data []byte, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[pageID] = memImage{
		filename:    filename,
		contentType: contentType,
		data:        append([]byte(nil), data...),
	}
	return nil
}

// pageByURL returns the row for a URL, or nil.
func (s *memoryStore) pageByURL(url string) *memPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagesByURL[url]
}

// linkCount returns how many link edges exist.
func (s *memoryStore) linkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// hasLink reports whether the edge exists.
func (s *memoryStore) hasLink(from, to uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links[[2]uint{from, to}]
}

// pagesOfType returns the URLs completed with the type, in insertion
// order.
func (s *memoryStore) pagesOfType(pageType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for _, page := range s.pages {
		if page.pageType == pageType {
			urls = append(urls, page.url)
		}
	}
	return urls
}
