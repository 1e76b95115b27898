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
	"math/bits"
	"math/rand"
)

const (
	// MinHashPermutations is the signature width: one component per
	// permutation of the universal hash family.
	MinHashPermutations = 128

	// minhashPrime is the smallest prime above 2^32; the hash family
	// works modulo this value.
	minhashPrime = 4294967311

	// minhashSeed pins the permutation family. Signatures stored by
	// earlier runs stay comparable only while the family is fixed.
	minhashSeed = 1
)

// MinHasher computes fixed-width MinHash signatures over shingle sets.
// The fraction of equal components between two signatures estimates
// the Jaccard similarity of the underlying sets.
type MinHasher struct {
	a []uint64
	b []uint64
}

// NewMinHasher draws the permutation family (a*x + b) mod p from a
// deterministic source.
func NewMinHasher() *MinHasher {
	rng := rand.New(rand.NewSource(minhashSeed))
	m := &MinHasher{
		a: make([]uint64, MinHashPermutations),
		b: make([]uint64, MinHashPermutations),
	}
	for i := 0; i < MinHashPermutations; i++ {
		m.a[i] = uint64(rng.Int63n(minhashPrime-1)) + 1
		m.b[i] = uint64(rng.Int63n(minhashPrime))
	}
	return m
}

// Signature maps a shingle set to its MinHash signature. An empty set
// has no signature.
func (m *MinHasher) Signature(shingles []uint32) []uint64 {
	if len(shingles) == 0 {
		return nil
	}
	sig := make([]uint64, MinHashPermutations)
	for i := range sig {
		best := uint64(minhashPrime)
		for _, s := range shingles {
			// the modulus exceeds 32 bits, so a*x needs the full
			// 128-bit product before reduction
			hi, lo := bits.Mul64(m.a[i], uint64(s))
			_, rem := bits.Div64(hi, lo, minhashPrime)
			if v := (rem + m.b[i]) % minhashPrime; v < best {
				best = v
			}
		}
		sig[i] = best
	}
	return sig
}

// MinHashEstimate returns the similarity estimate for two signatures:
// the fraction of positions where they agree. Signatures of unequal
// width estimate 0.
func MinHashEstimate(a, b []uint64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	equal := 0
	for i := range a {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(a))
}
