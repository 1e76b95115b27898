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
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

func (m *Site) toCrawler() *crawler.Site {
	site := &crawler.Site{
		ID:             m.ID,
		Domain:         m.Domain,
		RobotsContent:  m.RobotsContent,
		SitemapContent: m.SitemapContent,
	}
	if m.LastCrawledAt != nil {
		t := time.Unix(*m.LastCrawledAt, 0)
		site.LastCrawledAt = &t
	}
	return site
}

// SiteByDomain fetches the site row for a domain, nil when the domain
// has not been seen yet
func (s *Store) SiteByDomain(domain string) (*crawler.Site, error) {
	var site Site
	err := s.db.Where("domain = ?", domain).First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return site.toCrawler(), nil
}

// CreateSite inserts a site row. When another process created the
// domain first, the existing row wins and is returned.
func (s *Store) CreateSite(domain string, robots, sitemap *string) (*crawler.Site, error) {
	site := Site{
		Domain:         domain,
		RobotsContent:  robots,
		SitemapContent: sitemap,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoNothing: true,
	}).Create(&site).Error; err != nil {
		return nil, err
	}
	if site.ID == 0 {
		return s.SiteByDomain(domain)
	}
	return site.toCrawler(), nil
}

// MarkSiteCrawled records when the site was last fetched from
func (s *Store) MarkSiteCrawled(siteID uint, at time.Time) error {
	return s.db.Model(&Site{}).
		Where("id = ?", siteID).
		Update("last_crawled_at", at.Unix()).Error
}
