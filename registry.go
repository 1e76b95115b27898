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
	"context"
	"fmt"
	"strings"
	"sync"
)

// SiteRecord pairs a persisted site with its parsed robots policy and
// the page URLs its sitemaps listed when the site was first seen.
type SiteRecord struct {
	Site   *Site
	Policy *RobotsPolicy

	sitemapLocs []string
	drainOnce   sync.Once
}

// DrainSitemapLocs hands out the sitemap page URLs exactly once. The
// worker that triggered the site's creation enqueues them; every
// later call returns nothing.
func (r *SiteRecord) DrainSitemapLocs() []string {
	var locs []string
	r.drainOnce.Do(func() {
		locs = r.sitemapLocs
		r.sitemapLocs = nil
	})
	return locs
}

type registryEntry struct {
	once   sync.Once
	record *SiteRecord
	err    error
}

// SiteRegistry hands workers the site record for a domain, creating
// it on first encounter: fetch robots.txt, walk the sitemaps it
// lists, persist the pair. Concurrent workers hitting the same new
// domain share one creation, so a site's robots.txt is fetched once.
type SiteRegistry struct {
	store   SiteStore
	fetcher *Fetcher
	agent   string

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewSiteRegistry returns a registry creating sites through store and
// fetching robots and sitemaps through fetcher. The agent is matched
// against robots.txt groups.
func NewSiteRegistry(store SiteStore, fetcher *Fetcher, agent string) *SiteRegistry {
	if agent == "" {
		agent = DefaultUserAgent
	}
	return &SiteRegistry{
		store:   store,
		fetcher: fetcher,
		agent:   agent,
		entries: make(map[string]*registryEntry),
	}
}

// GetOrCreate returns the record for a domain such as
// "https://www.gov.si/". A failed creation is forgotten so the next
// caller retries it.
func (r *SiteRegistry) GetOrCreate(ctx context.Context, domain string) (*SiteRecord, error) {
	r.mu.Lock()
	entry, ok := r.entries[domain]
	if !ok {
		entry = &registryEntry{}
		r.entries[domain] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.record, entry.err = r.load(ctx, domain)
	})
	if entry.err != nil {
		r.mu.Lock()
		if r.entries[domain] == entry {
			delete(r.entries, domain)
		}
		r.mu.Unlock()
		return nil, entry.err
	}
	return entry.record, nil
}

func (r *SiteRegistry) load(ctx context.Context, domain string) (*SiteRecord, error) {
	site, err := r.store.SiteByDomain(domain)
	if err != nil {
		return nil, err
	}
	if site != nil {
		record := &SiteRecord{Site: site}
		if site.RobotsContent != nil {
			record.Policy = ParseRobots(*site.RobotsContent, r.agent)
		}
		return record, nil
	}

	robots := r.fetchRobots(ctx, domain)
	var policy *RobotsPolicy
	if robots != nil {
		policy = ParseRobots(*robots, r.agent)
	}

	var sitemap *string
	var locs []string
	if policy != nil {
		if bodies, pages := r.walkSitemaps(ctx, policy.Sitemaps()); len(bodies) > 0 {
			joined := strings.Join(bodies, "\n")
			sitemap = &joined
			locs = pages
		}
	}

	site, err = r.store.CreateSite(domain, robots, sitemap)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Registered site %s (robots: %v, sitemap pages: %d)", domain, robots != nil, len(locs))
	return &SiteRecord{Site: site, Policy: policy, sitemapLocs: locs}, nil
}

// fetchRobots returns the robots.txt body, or nil when the site has
// no usable one. Only a 200 with a text/plain content type counts;
// anything else leaves the site without a policy.
func (r *SiteRegistry) fetchRobots(ctx context.Context, domain string) *string {
	robotsURL := RobotsURL(domain)
	resp, err := r.fetcher.Get(ctx, robotsURL)
	if err != nil {
		Logger.Debugf("No robots.txt for %s: %v", domain, err)
		return nil
	}
	if resp.StatusCode != 200 || resp.ContentType() != "text/plain" {
		return nil
	}
	Logger.Infof("Found robots.txt: %s", robotsURL)
	body := string(resp.Body)
	return &body
}

// walkSitemaps fetches every sitemap the robots file lists, following
// nested indexes, and returns the raw documents plus the page URLs
// they contain.
func (r *SiteRegistry) walkSitemaps(ctx context.Context, roots []string) (bodies []string, pages []string) {
	if len(roots) == 0 {
		return nil, nil
	}
	walker := &SitemapWalker{
		Fetch: func(u string) ([]byte, error) {
			resp, err := r.fetcher.Get(ctx, u)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != 200 {
				return nil, fmt.Errorf("sitemap fetch: status %d", resp.StatusCode)
			}
			return resp.Body, nil
		},
	}
	for _, root := range roots {
		b, p := walker.Walk(root)
		bodies = append(bodies, b...)
		pages = append(pages, p...)
	}
	return bodies, pages
}
