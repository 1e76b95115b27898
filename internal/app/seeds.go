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

package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadSeeds reads starting URLs from a plaintext file, one per line.
// Blank lines and lines containing # are skipped. A leading ~ in the
// path is expanded.
func LoadSeeds(path string) ([]string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding seeds path %q: %w", path, err)
	}
	file, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("opening seeds file: %w", err)
	}
	defer file.Close()

	var seeds []string
	scanner := bufio.NewScanner(file)
	// allow big lines (e.g., very long URLs)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.Contains(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading seeds file: %w", err)
	}
	return seeds, nil
}
