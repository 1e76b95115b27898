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
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"
)

// MockResponse is one canned HTTP response.
type MockResponse struct {
	// StatusCode is the HTTP status code to return (default: 200)
	StatusCode int
	// Body is the response body content (used if BodyFunc is nil)
	Body string
	// BodyFunc generates the body from the request and takes
	// precedence over Body when set
	BodyFunc func(*http.Request) string
	// Headers are the HTTP headers to include in the response
	Headers http.Header
	// Delay simulates network latency before returning the response
	Delay time.Duration
	// Error simulates a network error
	Error error
}

type mockPattern struct {
	pattern  *regexp.Regexp
	response *MockResponse
}

// MockTransport implements http.RoundTripper for tests. Responses are
// registered against exact URLs or regex patterns, so a test can stand
// up a whole fake web under real domain names without binding sockets.
// Every request that passes through is logged for ordering assertions.
type MockTransport struct {
	responses map[string]*MockResponse
	patterns  []mockPattern
	fallback  http.RoundTripper
	log       []string
	mutex     sync.RWMutex
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string]*MockResponse),
		patterns:  make([]mockPattern, 0),
	}
}

// RegisterResponse registers a mock response for an exact URL match.
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if response.StatusCode == 0 {
		response.StatusCode = 200
	}
	if response.Headers == nil {
		response.Headers = make(http.Header)
	}
	m.responses[url] = response
}

// RegisterHTML registers an HTML page.
func (m *MockTransport) RegisterHTML(url, html string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "text/html; charset=utf-8")

	m.RegisterResponse(url, &MockResponse{
		StatusCode: 200,
		Body:       html,
		Headers:    headers,
	})
}

// RegisterRobots registers a robots.txt body with the text/plain type
// a well-behaved server would use.
func (m *MockTransport) RegisterRobots(url, robots string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "text/plain")

	m.RegisterResponse(url, &MockResponse{
		StatusCode: 200,
		Body:       robots,
		Headers:    headers,
	})
}

// RegisterSitemap registers a sitemap document.
func (m *MockTransport) RegisterSitemap(url, xml string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/xml")

	m.RegisterResponse(url, &MockResponse{
		StatusCode: 200,
		Body:       xml,
		Headers:    headers,
	})
}

// RegisterBinary registers a binary document such as a PDF or an image.
func (m *MockTransport) RegisterBinary(url, contentType string, data []byte) {
	headers := make(http.Header)
	headers.Set("Content-Type", contentType)

	m.RegisterResponse(url, &MockResponse{
		StatusCode: 200,
		Body:       string(data),
		Headers:    headers,
	})
}

// RegisterError registers a mock network failure for a URL.
func (m *MockTransport) RegisterError(url string, err error) {
	m.RegisterResponse(url, &MockResponse{
		Error: err,
	})
}

// RegisterPattern registers a mock response for URLs matching a regex
// pattern. Exact matches win over patterns.
func (m *MockTransport) RegisterPattern(pattern string, response *MockResponse) error {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if response.StatusCode == 0 {
		response.StatusCode = 200
	}
	if response.Headers == nil {
		response.Headers = make(http.Header)
	}
	m.patterns = append(m.patterns, mockPattern{
		pattern:  regex,
		response: response,
	})
	return nil
}

// SetFallback sets a RoundTripper to use when no mock matches, for
// tests that mix mocked and real requests.
func (m *MockTransport) SetFallback(fallback http.RoundTripper) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fallback = fallback
}

// Reset clears all registered responses, patterns and the request log.
func (m *MockTransport) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.responses = make(map[string]*MockResponse)
	m.patterns = make([]mockPattern, 0)
	m.log = nil
}

// Requests returns the URLs requested so far, in order.
func (m *MockTransport) Requests() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]string(nil), m.log...)
}

// RequestCount returns how many times the URL has been requested.
func (m *MockTransport) RequestCount(url string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	n := 0
	for _, u := range m.log {
		if u == url {
			n++
		}
	}
	return n
}

// RoundTrip implements the http.RoundTripper interface.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	m.mutex.Lock()
	m.log = append(m.log, url)
	mockResp, found := m.responses[url]
	if !found {
		for _, p := range m.patterns {
			if p.pattern.MatchString(url) {
				mockResp = p.response
				found = true
				break
			}
		}
	}
	fallback := m.fallback
	m.mutex.Unlock()

	if !found {
		if fallback != nil {
			return fallback.RoundTrip(req)
		}
		return &http.Response{
			StatusCode: 404,
			Body:       io.NopCloser(bytes.NewBufferString("Not Found")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	if mockResp.Delay > 0 {
		time.Sleep(mockResp.Delay)
	}
	if mockResp.Error != nil {
		return nil, mockResp.Error
	}

	bodyContent := mockResp.Body
	if mockResp.BodyFunc != nil {
		bodyContent = mockResp.BodyFunc(req)
	}

	resp := &http.Response{
		StatusCode: mockResp.StatusCode,
		Body:       io.NopCloser(bytes.NewBufferString(bodyContent)),
		Header:     cloneHeaders(mockResp.Headers),
		Request:    req,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
	}
	if resp.Header.Get("Content-Length") == "" {
		resp.ContentLength = int64(len(bodyContent))
	}
	return resp, nil
}

func cloneHeaders(headers http.Header) http.Header {
	clone := make(http.Header)
	for key, values := range headers {
		clone[key] = append([]string{}, values...)
	}
	return clone
}
