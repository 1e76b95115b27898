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
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

// SQLite has a limit on SQL variables (typically 999), so shingle
// batches stay well under it.
const shingleBatchSize = 100

// SaveSignature stores a page's shingle set in the inverted index
// together with its summary row. Re-saving the same page is a no-op.
func (s *Store) SaveSignature(pageID uint, shingles []uint32, minhash []uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		sig := Signature{PageID: pageID, HashLength: len(shingles)}
		if err := sig.SetMinHash(minhash); err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sig).Error; err != nil {
			return err
		}

		if len(shingles) == 0 {
			return nil
		}
		postings := make([]ShinglePosting, 0, len(shingles))
		for _, shingle := range shingles {
			postings = append(postings, ShinglePosting{Shingle: int64(shingle), PageID: pageID})
		}
		for i := 0; i < len(postings); i += shingleBatchSize {
			end := i + shingleBatchSize
			if end > len(postings) {
				end = len(postings)
			}
			batch := postings[i:end]
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MaxJaccard computes the highest Jaccard similarity between the query
// shingle set and any stored page, via the inverted index: count
// shared shingles per page, then divide by the union size. Returns 0
// and no page when nothing overlaps.
func (s *Store) MaxJaccard(shingles []uint32) (float64, *uint, error) {
	if len(shingles) == 0 {
		return 0, nil, nil
	}

	matches := make(map[uint]int)
	for i := 0; i < len(shingles); i += shingleBatchSize {
		end := i + shingleBatchSize
		if end > len(shingles) {
			end = len(shingles)
		}
		batch := make([]int64, 0, end-i)
		for _, shingle := range shingles[i:end] {
			batch = append(batch, int64(shingle))
		}

		var counts []struct {
			PageID  uint
			Matched int
		}
		err := s.db.Model(&ShinglePosting{}).
			Select("page_id, COUNT(*) AS matched").
			Where("shingle IN ?", batch).
			Group("page_id").
			Scan(&counts).Error
		if err != nil {
			return 0, nil, err
		}
		for _, c := range counts {
			matches[c.PageID] += c.Matched
		}
	}
	if len(matches) == 0 {
		return 0, nil, nil
	}

	candidates := make([]uint, 0, len(matches))
	for pageID := range matches {
		candidates = append(candidates, pageID)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	counts := make(map[uint]int, len(candidates))
	for i := 0; i < len(candidates); i += shingleBatchSize {
		end := i + shingleBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		var rows []Signature
		if err := s.db.Where("page_id IN ?", candidates[i:end]).Find(&rows).Error; err != nil {
			return 0, nil, err
		}
		for _, row := range rows {
			counts[row.PageID] = row.HashLength
		}
	}

	var best float64
	var bestPage *uint
	for _, pageID := range candidates {
		similarity := crawler.JaccardFromCounts(matches[pageID], counts[pageID], len(shingles))
		if similarity > best {
			best = similarity
			id := pageID
			bestPage = &id
		}
	}
	return best, bestPage, nil
}
