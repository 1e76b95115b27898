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

	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

// PageIDByHash returns the oldest completed page carrying the content
// hash, nil when no page does
func (s *Store) PageIDByHash(hash string) (*uint, error) {
	var page Page
	err := s.db.
		Where("hash_content = ?", hash).
		Order("id ASC").
		First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := page.ID
	return &id, nil
}

// SavePageData stores the payload of a recognized binary document,
// unless doing so would push the stored total past the configured
// budget
func (s *Store) SavePageData(pageID uint, dataTypeCode string, data []byte) error {
	var stored int64
	if err := s.db.Model(&PageData{}).
		Select("COALESCE(SUM(LENGTH(data)), 0)").
		Scan(&stored).Error; err != nil {
		return err
	}
	if stored+int64(len(data)) > s.opts.MaxBinaryBytes {
		return crawler.ErrBinaryBudgetExhausted
	}

	record := PageData{
		PageID:       pageID,
		DataTypeCode: dataTypeCode,
		Data:         data,
	}
	return s.db.Create(&record).Error
}

// SaveImage stores a fetched image payload for a page
func (s *Store) SaveImage(pageID uint, filename, contentType string, data []byte, at time.Time) error {
	accessed := at.Unix()
	record := Image{
		PageID:       pageID,
		Filename:     filename,
		ContentType:  contentType,
		Data:         data,
		AccessedTime: &accessed,
	}
	return s.db.Create(&record).Error
}
