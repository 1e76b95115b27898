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
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy wraps the parsed robots.txt of one site, scoped to the
// rule group matching the crawler's agent. A nil policy means the site
// published no usable robots.txt: every URL is allowed and no crawl
// delay applies.
type RobotsPolicy struct {
	group    *robotstxt.Group
	sitemaps []string
}

// ParseRobots parses robots.txt content and selects the rule group for
// the given agent (most specific User-agent wins, "*" as fallback).
// Unparseable content yields a nil policy.
func ParseRobots(content, agent string) *RobotsPolicy {
	data, err := robotstxt.FromString(content)
	if err != nil {
		return nil
	}
	return &RobotsPolicy{
		group:    data.FindGroup(agent),
		sitemaps: data.Sitemaps,
	}
}

// Allowed reports whether the policy permits fetching the URL. Both
// path and query take part in rule matching.
func (p *RobotsPolicy) Allowed(u *url.URL) bool {
	if p == nil || p.group == nil {
		return true
	}
	return p.group.Test(u.RequestURI())
}

// Check returns nil when the URL may be fetched and
// ErrDisallowedByRobots otherwise.
func (p *RobotsPolicy) Check(u *url.URL) error {
	if p.Allowed(u) {
		return nil
	}
	return ErrDisallowedByRobots
}

// CrawlDelay returns the delay the site requests between fetches, zero
// when none is declared.
func (p *RobotsPolicy) CrawlDelay() time.Duration {
	if p == nil || p.group == nil {
		return 0
	}
	return p.group.CrawlDelay
}

// Sitemaps lists the Sitemap directives collected from anywhere in the
// file.
func (p *RobotsPolicy) Sitemaps() []string {
	if p == nil {
		return nil
	}
	return p.sitemaps
}
