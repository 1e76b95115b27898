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

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

// leaseRetries bounds how often a lease attempt restarts after losing
// the claim race to another worker.
const leaseRetries = 10

// EnqueueSeed inserts a URL as a frontier row. A URL that already has
// a row is left untouched.
func (s *Store) EnqueueSeed(url string) error {
	page := Page{URL: url, PageTypeCode: crawler.PageTypeFrontier}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&page).Error
}

// EnqueueDiscovered records that fromPageID linked to toURL: the URL
// gets a frontier row unless it already has one, and the link edge is
// recorded. Oversized URLs and a full page table reject the discovery
// outright, edge included.
func (s *Store) EnqueueDiscovered(fromPageID uint, toURL string) error {
	if len(toURL) > s.opts.MaxURLLength {
		return crawler.ErrURLTooLong
	}

	var total int64
	if err := s.db.Model(&Page{}).Count(&total).Error; err != nil {
		return err
	}
	if total >= int64(s.opts.MaxPages) {
		return crawler.ErrFrontierFull
	}

	var page Page
	err := s.db.Where("url = ?", toURL).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		page = Page{URL: toURL, PageTypeCode: crawler.PageTypeFrontier}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).Create(&page).Error; err != nil {
			return err
		}
		if page.ID == 0 {
			// Lost the insert race, the row exists now
			if err := s.db.Where("url = ?", toURL).First(&page).Error; err != nil {
				return err
			}
		}
	} else if err != nil {
		return err
	}

	link := Link{FromPage: fromPageID, ToPage: page.ID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

// LeaseFrontierPage claims the oldest unleased frontier row for the
// calling worker. The claim is a conditional update checked by rows
// affected, so no two workers can hold the same page. Returns nil
// without error when the frontier is empty.
func (s *Store) LeaseFrontierPage() (*crawler.LeasedPage, error) {
	for attempt := 0; attempt < leaseRetries; attempt++ {
		var page Page
		err := s.db.
			Where("page_type_code = ? AND active_in_crawler IS NULL", crawler.PageTypeFrontier).
			Order("id ASC").
			First(&page).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		result := s.db.Model(&Page{}).
			Where("id = ? AND page_type_code = ? AND active_in_crawler IS NULL", page.ID, crawler.PageTypeFrontier).
			Update("active_in_crawler", true)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			return &crawler.LeasedPage{ID: page.ID, URL: page.URL}, nil
		}
		// Another worker claimed this row between select and update,
		// pick the next candidate
	}
	return nil, nil
}

// CompletePage rewrites a leased frontier row into its terminal state
// and releases the lease. Completing a page that is not currently
// leased fails with ErrPageNotLeased.
func (s *Store) CompletePage(pageID uint, result *crawler.PageResult) error {
	accessed := result.AccessedTime.Unix()
	updates := map[string]interface{}{
		"site_id":           result.SiteID,
		"page_type_code":    result.PageType,
		"html_content":      result.HTMLContent,
		"hash_content":      result.HashContent,
		"http_status_code":  result.HTTPStatusCode,
		"accessed_time":     accessed,
		"active_in_crawler": nil,
	}

	res := s.db.Model(&Page{}).
		Where("id = ? AND page_type_code = ? AND active_in_crawler = ?", pageID, crawler.PageTypeFrontier, true).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return crawler.ErrPageNotLeased
	}
	return nil
}

// ResetLeases releases every lease left behind by a previous run and
// returns how many rows it touched. Called once before workers start.
func (s *Store) ResetLeases() (int64, error) {
	res := s.db.Model(&Page{}).
		Where("page_type_code = ? AND active_in_crawler = ?", crawler.PageTypeFrontier, true).
		Update("active_in_crawler", nil)
	return res.RowsAffected, res.Error
}
