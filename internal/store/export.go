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

import (
	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

// CountPagesByType returns how many pages exist per page type code
func (s *Store) CountPagesByType() (map[string]int64, error) {
	var rows []struct {
		PageTypeCode string
		Total        int64
	}
	err := s.db.Model(&Page{}).
		Select("page_type_code, COUNT(*) AS total").
		Group("page_type_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.PageTypeCode] = row.Total
	}
	return counts, nil
}

// TotalPages returns the page table row count
func (s *Store) TotalPages() (int64, error) {
	var total int64
	err := s.db.Model(&Page{}).Count(&total).Error
	return total, err
}

// FrontierDepth returns how many pages are still waiting to be crawled
func (s *Store) FrontierDepth() (int64, error) {
	var depth int64
	err := s.db.Model(&Page{}).
		Where("page_type_code = ?", crawler.PageTypeFrontier).
		Count(&depth).Error
	return depth, err
}

// CountLinks returns the number of link edges
func (s *Store) CountLinks() (int64, error) {
	var total int64
	err := s.db.Model(&Link{}).Count(&total).Error
	return total, err
}

// CountSites returns the number of known sites
func (s *Store) CountSites() (int64, error) {
	var total int64
	err := s.db.Model(&Site{}).Count(&total).Error
	return total, err
}

// BinaryBytesStored returns the total size of kept document payloads
func (s *Store) BinaryBytesStored() (int64, error) {
	var stored int64
	err := s.db.Model(&PageData{}).
		Select("COALESCE(SUM(LENGTH(data)), 0)").
		Scan(&stored).Error
	return stored, err
}

// ImageBytesStored returns the total size of kept image payloads
func (s *Store) ImageBytesStored() (int64, error) {
	var stored int64
	err := s.db.Model(&Image{}).
		Select("COALESCE(SUM(LENGTH(data)), 0)").
		Scan(&stored).Error
	return stored, err
}

// AllSites lists every site, oldest first
func (s *Store) AllSites() ([]Site, error) {
	var sites []Site
	err := s.db.Order("id ASC").Find(&sites).Error
	return sites, err
}

// PagesForSite lists the completed pages of one site without their
// content columns, oldest first
func (s *Store) PagesForSite(siteID uint) ([]Page, error) {
	var pages []Page
	err := s.db.
		Select("id, site_id, url, page_type_code, http_status_code, accessed_time").
		Where("site_id = ? AND page_type_code <> ?", siteID, crawler.PageTypeFrontier).
		Order("id ASC").
		Find(&pages).Error
	return pages, err
}

// PageURLMap returns page id to URL for every known page, frontier
// rows included, so link edges can be resolved to URLs
func (s *Store) PageURLMap() (map[uint]string, error) {
	var rows []struct {
		ID  uint
		URL string
	}
	err := s.db.Model(&Page{}).Select("id, url").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	urls := make(map[uint]string, len(rows))
	for _, row := range rows {
		urls[row.ID] = row.URL
	}
	return urls, nil
}

// PageCountBySite returns completed page counts grouped by site
func (s *Store) PageCountBySite() (map[uint]int64, error) {
	var rows []struct {
		SiteID *uint
		Total  int64
	}
	err := s.db.Model(&Page{}).
		Select("site_id, COUNT(*) AS total").
		Where("site_id IS NOT NULL").
		Group("site_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		if row.SiteID != nil {
			counts[*row.SiteID] = row.Total
		}
	}
	return counts, nil
}

// AllLinks lists every link edge
func (s *Store) AllLinks() ([]Link, error) {
	var links []Link
	err := s.db.Order("from_page ASC, to_page ASC").Find(&links).Error
	return links, err
}

// LinksForDomain lists the link edges whose source page belongs to the
// domain
func (s *Store) LinksForDomain(domain string) ([]Link, error) {
	var links []Link
	err := s.db.Model(&Link{}).
		Joins("JOIN page ON page.id = link.from_page").
		Joins("JOIN site ON site.id = page.site_id").
		Where("site.domain = ?", domain).
		Order("from_page ASC, to_page ASC").
		Find(&links).Error
	return links, err
}

// AllSignatures lists the stored shingle summaries, used to report
// near-duplicate candidates from their MinHash sketches
func (s *Store) AllSignatures() ([]Signature, error) {
	var signatures []Signature
	err := s.db.Order("page_id ASC").Find(&signatures).Error
	return signatures, err
}
