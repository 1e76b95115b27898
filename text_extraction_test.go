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
	"testing"
)

func TestExtractAllText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "simple HTML",
			html:     `<html><body><p>Hello World</p></body></html>`,
			expected: "Hello World",
		},
		{
			name: "HTML with navigation and footer",
			html: `<html>
				<body>
					<nav>Navigation Menu</nav>
					<main>Main Content</main>
					<footer>Footer Text</footer>
				</body>
			</html>`,
			expected: "Navigation Menu Main Content Footer Text",
		},
		{
			name: "HTML with scripts and styles",
			html: `<html>
				<head><style>body { color: red; }</style></head>
				<body>
					<p>Visible Text</p>
					<script>console.log('hidden');</script>
				</body>
			</html>`,
			expected: "Visible Text",
		},
		{
			name: "HTML with excessive whitespace",
			html: `<html>
				<body>
					<p>Text   with    multiple    spaces</p>
					<p>And

					newlines</p>
				</body>
			</html>`,
			expected: "Text with multiple spaces And newlines",
		},
		{
			name:     "empty HTML",
			html:     `<html><body></body></html>`,
			expected: "",
		},
		{
			name:     "invalid HTML",
			html:     `not valid html`,
			expected: "not valid html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractAllText([]byte(tt.html))
			if result != tt.expected {
				t.Errorf("extractAllText() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "multiple spaces",
			input:    "text   with    spaces",
			expected: "text with spaces",
		},
		{
			name:     "tabs and newlines",
			input:    "text\twith\ttabs\nand\nnewlines",
			expected: "text with tabs and newlines",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "   text   ",
			expected: "text",
		},
		{
			name:     "already normalized",
			input:    "already normalized",
			expected: "already normalized",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   \t\n   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeWhitespace(tt.input)
			if result != tt.expected {
				t.Errorf("normalizeWhitespace() = %q, want %q", result, tt.expected)
			}
		})
	}
}
