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
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultHashAlgorithm is the digest used for exact-duplicate
// detection. Documents with equal digests are treated as the same
// page.
const DefaultHashAlgorithm = "sha256"

// ComputeContentHash computes a hex digest of content using the
// specified algorithm. An empty algorithm selects
// DefaultHashAlgorithm.
func ComputeContentHash(content []byte, algorithm string) (string, error) {
	switch strings.ToLower(algorithm) {
	case "sha256", "":
		hash := sha256.Sum256(content)
		return hex.EncodeToString(hash[:]), nil

	case "md5":
		hash := md5.Sum(content)
		return hex.EncodeToString(hash[:]), nil

	case "xxhash":
		// xxHash is the fastest but not collision resistant
		hash := xxhash.Sum64(content)
		return fmt.Sprintf("%016x", hash), nil

	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s (supported: sha256, md5, xxhash)", algorithm)
	}
}
