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
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ScopeFilter decides which canonical URLs may enter the frontier. A
// URL passes when its host lies under the allowed domain suffix and it
// matches none of the disallowed patterns.
type ScopeFilter struct {
	suffix     string // lowercased, leading dot stripped
	disallowed []*regexp.Regexp
}

// NewScopeFilter builds a filter for the given domain suffix (with or
// without a leading dot, ".gov.si" and "gov.si" are equivalent) and an
// optional list of regular expressions matched against the full
// canonical URL.
func NewScopeFilter(suffix string, disallowedPatterns []string) (*ScopeFilter, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(suffix)), ".")
	if s == "" {
		return nil, fmt.Errorf("allowed domain suffix must not be empty")
	}
	filter := &ScopeFilter{suffix: s}
	for _, pattern := range disallowedPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("disallowed URL pattern %q: %w", pattern, err)
		}
		filter.disallowed = append(filter.disallowed, re)
	}
	return filter, nil
}

// Suffix returns the normalized domain suffix the filter matches
// against.
func (f *ScopeFilter) Suffix() string {
	return f.suffix
}

// Allow returns nil when the canonical URL may be enqueued,
// ErrOutsideScope when its host falls outside the allowed suffix and
// ErrDisallowedURL when a disallowed pattern matches.
func (f *ScopeFilter) Allow(canonical string) error {
	u, err := url.Parse(canonical)
	if err != nil {
		return err
	}
	host := strings.ToLower(u.Hostname())
	if host != f.suffix && !strings.HasSuffix(host, "."+f.suffix) {
		return ErrOutsideScope
	}
	for _, re := range f.disallowed {
		if re.MatchString(canonical) {
			return ErrDisallowedURL
		}
	}
	return nil
}
