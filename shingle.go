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
	"hash/crc32"
	"sort"
	"strings"
)

// DefaultShingleSize is the token-window width used for near-duplicate
// detection.
const DefaultShingleSize = 10

// ShingleSet tokenizes text on whitespace, slides a window of size
// consecutive tokens across it, joins each window with single spaces
// and hashes it with CRC-32. The result is the deduplicated, sorted
// set of window hashes. Texts shorter than one window yield an empty
// set.
func ShingleSet(text string, size int) []uint32 {
	if size < 1 {
		size = DefaultShingleSize
	}
	tokens := strings.Fields(text)
	if len(tokens) < size {
		return nil
	}

	seen := make(map[uint32]struct{}, len(tokens)-size+1)
	for i := 0; i+size <= len(tokens); i++ {
		window := strings.Join(tokens[i:i+size], " ")
		seen[crc32.ChecksumIEEE([]byte(window))] = struct{}{}
	}

	set := make([]uint32, 0, len(seen))
	for h := range seen {
		set = append(set, h)
	}
	// sorted so stored signatures serialize deterministically
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// JaccardFromCounts computes intersection-over-union from the
// intersection size and the two set sizes. Degenerate inputs (empty
// union) score 0.
func JaccardFromCounts(intersection, storedLen, queryLen int) float64 {
	union := storedLen + queryLen - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
