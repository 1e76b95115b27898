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
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

const (
	// maxSitemapDepth bounds recursion through sitemap-index files.
	maxSitemapDepth = 4
	// maxSitemapFetches bounds the number of sitemap documents fetched
	// per site.
	maxSitemapFetches = 50
)

// ParseSitemap extracts page locations and nested sitemap locations
// from one sitemap document. Plain url-sets and sitemap-index files
// are both understood; namespace prefixes are ignored.
func ParseSitemap(body []byte) (pages []string, nested []string, err error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse sitemap: %w", err)
	}
	for _, n := range xmlquery.Find(doc, "//url/loc") {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			pages = append(pages, loc)
		}
	}
	for _, n := range xmlquery.Find(doc, "//sitemap/loc") {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			nested = append(nested, loc)
		}
	}
	return pages, nested, nil
}

// SitemapWalker collects page URLs from a site's sitemaps. Nested
// sitemap-index entries are followed depth-first with caps on both
// nesting depth and total fetches, so a hostile or broken index cannot
// stall a worker.
type SitemapWalker struct {
	// Fetch retrieves one sitemap document; non-2xx responses should
	// surface as errors.
	Fetch func(url string) ([]byte, error)

	MaxDepth   int // 0 selects maxSitemapDepth
	MaxFetches int // 0 selects maxSitemapFetches
}

// Walk fetches the sitemap at root and every nested sitemap within the
// caps. It returns the raw bodies of the fetched documents (persisted
// with the site) and the page locations in document order. A document
// that fails to fetch or parse is skipped; everything collected up to
// that point is still returned.
func (w *SitemapWalker) Walk(root string) (bodies []string, pages []string) {
	maxDepth := w.MaxDepth
	if maxDepth <= 0 {
		maxDepth = maxSitemapDepth
	}
	budget := w.MaxFetches
	if budget <= 0 {
		budget = maxSitemapFetches
	}

	seen := make(map[string]bool)
	var walk func(u string, depth int)
	walk = func(u string, depth int) {
		if depth > maxDepth || budget <= 0 || seen[u] {
			return
		}
		seen[u] = true
		budget--

		body, err := w.Fetch(u)
		if err != nil {
			return
		}
		bodies = append(bodies, string(body))

		locs, nested, err := ParseSitemap(body)
		if err != nil {
			return
		}
		pages = append(pages, locs...)
		for _, next := range nested {
			walk(next, depth+1)
		}
	}
	walk(root, 1)
	return bodies, pages
}
