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
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractAllText extracts all visible text from HTML, removing all tags.
// This includes navigation, headers, footers, and all content areas.
// Normalizes whitespace (collapses multiple spaces/newlines).
func extractAllText(htmlBody []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return ""
	}

	// Remove script and style elements as they're not visible text
	doc.Find("script, style").Remove()

	text := doc.Text()

	// Normalize whitespace: collapse multiple spaces/newlines to single space
	text = normalizeWhitespace(text)

	return strings.TrimSpace(text)
}

// normalizeWhitespace collapses multiple consecutive whitespace characters
// (spaces, tabs, newlines) into a single space.
func normalizeWhitespace(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}
