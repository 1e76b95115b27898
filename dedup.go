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

// DefaultMaxSimilarity is the Jaccard similarity above which a page
// counts as a near duplicate.
const DefaultMaxSimilarity = 0.95

// DuplicateCheck is the outcome of examining one HTML document. When
// DuplicateOf is set the document duplicates that page; otherwise the
// hash, shingles and MinHash sketch are ready to be persisted with it.
type DuplicateCheck struct {
	Hash       string
	Shingles   []uint32
	MinHash    []uint64
	Similarity float64
	// DuplicateOf is the page this document duplicates, nil when the
	// document is original.
	DuplicateOf *uint
}

// DuplicateDetector decides whether an HTML document repeats content
// the crawl has already stored. Exact repeats are caught by content
// hash; near repeats by Jaccard similarity over shingle sets.
type DuplicateDetector struct {
	store ArtifactStore
	// MaxSimilarity is the Jaccard threshold; strictly above it is a
	// duplicate.
	MaxSimilarity float64
	// ShingleSize is the token window width.
	ShingleSize int
	// HashAlgorithm selects the exact-hash function.
	HashAlgorithm string

	hasher *MinHasher
}

// NewDuplicateDetector returns a detector with the default threshold,
// shingle width and hash algorithm.
func NewDuplicateDetector(store ArtifactStore) *DuplicateDetector {
	return &DuplicateDetector{
		store:         store,
		MaxSimilarity: DefaultMaxSimilarity,
		ShingleSize:   DefaultShingleSize,
		HashAlgorithm: DefaultHashAlgorithm,
		hasher:        NewMinHasher(),
	}
}

// Check examines a document. The exact hash is computed over the raw
// HTML; shingles are built from its extracted text. An exact hash hit
// returns early with similarity 1 and no shingles, since nothing will
// be persisted for a duplicate.
func (d *DuplicateDetector) Check(html string) (*DuplicateCheck, error) {
	hash, err := ComputeContentHash([]byte(html), d.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	if pageID, err := d.store.PageIDByHash(hash); err != nil {
		return nil, err
	} else if pageID != nil {
		return &DuplicateCheck{Hash: hash, Similarity: 1, DuplicateOf: pageID}, nil
	}

	shingles := ShingleSet(extractAllText([]byte(html)), d.ShingleSize)
	similarity, pageID, err := d.store.MaxJaccard(shingles)
	if err != nil {
		return nil, err
	}

	check := &DuplicateCheck{
		Hash:       hash,
		Shingles:   shingles,
		MinHash:    d.hasher.Signature(shingles),
		Similarity: similarity,
	}
	if similarity > d.MaxSimilarity {
		check.DuplicateOf = pageID
	}
	return check, nil
}

// Persist stores the document's signature in the near-duplicate
// index. Only original documents are persisted; duplicates keep just
// their hash on the page row.
func (d *DuplicateDetector) Persist(pageID uint, check *DuplicateCheck) error {
	return d.store.SaveSignature(pageID, check.Shingles, check.MinHash)
}
