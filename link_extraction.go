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
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// scriptURLPattern matches absolute URLs assembled inside script
// blocks. The character class is deliberately narrow: quotes, spaces
// and operators end a match, so expressions around the literal do not
// bleed into it.
var scriptURLPattern = regexp.MustCompile(`https?://[a-zA-Z0-9.\-]+(?:/[a-zA-Z0-9:/\-_.~&?=+%]*)?`)

// PageLinks holds the raw URL candidates pulled out of one document,
// exactly as written in the markup. The canonicalizer turns them into
// absolute URLs afterwards.
type PageLinks struct {
	// Base is the document's effective base: <base href> resolved
	// against the page address when present, the page address
	// otherwise.
	Base *url.URL
	// Anchors are a[href] values.
	Anchors []string
	// Images are img[src] values.
	Images []string
	// ScriptURLs are absolute URLs found in script text.
	ScriptURLs []string
}

// ExtractLinks parses an HTML document and collects every URL
// candidate the crawler follows: anchor targets, image sources and
// URLs embedded in scripts.
func ExtractLinks(body []byte, pageURL *url.URL) (*PageLinks, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	links := &PageLinks{Base: pageURL}
	if href, found := doc.Find("base[href]").Attr("href"); found && pageURL != nil {
		u, err := urlParser.ParseRef(pageURL.String(), href)
		if err == nil {
			base, err := url.Parse(u.Href(false))
			if err == nil {
				links.Base = base
			}
		}
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links.Anchors = append(links.Anchors, href)
		}
	})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			links.Images = append(links.Images, src)
		}
	})
	links.ScriptURLs = ScriptURLs(body)

	return links, nil
}

// ScriptURLs returns the absolute URLs embedded in the document's
// script elements. Pages on client-side frameworks often carry their
// navigation targets only there.
func ScriptURLs(body []byte) []string {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var urls []string
	for _, n := range htmlquery.Find(doc, "//script") {
		for _, m := range scriptURLPattern.FindAllString(htmlquery.InnerText(n), -1) {
			urls = append(urls, m)
		}
	}
	return urls
}
