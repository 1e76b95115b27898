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
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// urlParser normalizes URLs the way browsers do. Stray percent signs
// are encoded rather than rejected so that sloppy hrefs found in the
// wild still resolve.
var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// droppedSchemes are link schemes that never lead to a crawlable page.
var droppedSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// CanonicalizeURL turns a raw href into the canonical absolute form the
// frontier deduplicates on. Relative references are resolved against
// base, the fragment is dropped and the result is serialized in its
// canonical WHATWG encoding. Only http and https URLs survive; anything
// else comes back as one of the sentinel errors.
//
// The function is idempotent: feeding a canonical URL back in returns
// it unchanged.
func CanonicalizeURL(raw string, base *url.URL) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", ErrMissingURL
	}
	lower := strings.ToLower(u)
	for _, scheme := range droppedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", ErrUnsupportedScheme
		}
	}
	if u == "/" || strings.HasPrefix(u, "#") {
		return "", ErrFragmentOnly
	}
	// hrefs like "www.gov.si/en" appear in the wild often enough to
	// deserve rescue
	if strings.HasPrefix(lower, "www.") {
		u = "http://" + u
	}

	var parsed *whatwgUrl.Url
	var err error
	if base != nil {
		parsed, err = urlParser.ParseRef(base.String(), u)
	} else {
		parsed, err = urlParser.Parse(u)
	}
	if err != nil {
		if base == nil && !strings.Contains(u, "://") {
			return "", ErrMissingBase
		}
		return "", err
	}

	href := parsed.Href(true)
	canonical, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if canonical.Scheme != "http" && canonical.Scheme != "https" {
		return "", ErrUnsupportedScheme
	}
	if canonical.Host == "" {
		return "", ErrMissingURL
	}
	return href, nil
}

// CanonicalizeImageURL canonicalizes an image src exactly like a page
// href, except that inline data:image payloads are rejected up front.
func CanonicalizeImageURL(raw string, base *url.URL) (string, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "data:image/") {
		return "", ErrUnsupportedScheme
	}
	return CanonicalizeURL(raw, base)
}

// SiteDomain derives the site key for a page URL: scheme and host with
// a trailing slash, e.g. "https://www.gov.si/".
func SiteDomain(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/"
}

// RobotsURL returns the robots.txt location for a site key produced by
// SiteDomain.
func RobotsURL(domain string) string {
	return domain + "robots.txt"
}
