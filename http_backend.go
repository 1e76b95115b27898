// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies the crawler when no user agent is
// configured.
const DefaultUserAgent = "iepsbot/1.0 (+https://github.com/npovsic/IEPS-prvi-seminar)"

// defaultMaxBodySize caps downloads when MaxBodySize is unset.
const defaultMaxBodySize = 10 * 1024 * 1024

// Fetcher performs the crawler's outbound HTTP requests: robots,
// sitemaps, pages and binaries all go through it. Redirects are
// followed by the underlying client; the returned response reflects
// the final hop. There are no automatic retries, every transport
// failure surfaces to the caller.
type Fetcher struct {
	// UserAgent is sent with every request.
	UserAgent string
	// MaxBodySize limits how many bytes are read from a response
	// body; zero selects defaultMaxBodySize.
	MaxBodySize int
	// DetectCharset re-encodes text bodies to UTF-8, sniffing the
	// encoding when the Content-Type declares none.
	DetectCharset bool
	// TraceHTTP attaches connect/first-byte timings to responses.
	TraceHTTP bool

	Client     *http.Client
	LimitRules []*LimitRule
	lock       *sync.RWMutex
}

// Response is the outcome of one fetch.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    *http.Header
	Trace      *HTTPTrace
}

// NewFetcher returns a Fetcher with a 10 second client timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		UserAgent:   DefaultUserAgent,
		MaxBodySize: defaultMaxBodySize,
		Client:      &http.Client{Timeout: 10 * time.Second},
		lock:        &sync.RWMutex{},
	}
}

// Get fetches the URL. The matching limit rule's parallelism token is
// held for the duration of the request; delay discipline between
// requests is the politeness gate's job, not the fetcher's.
func (f *Fetcher) Get(ctx context.Context, u string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "*/*")
	return f.do(req)
}

func (f *Fetcher) do(req *http.Request) (*Response, error) {
	if rule := f.GetMatchingRule(req.URL.Host); rule != nil {
		rule.acquire()
		defer rule.release()
	}

	var trace *HTTPTrace
	if f.TraceHTTP {
		trace = &HTTPTrace{}
		req = trace.WithTrace(req)
	}

	res, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	bodySize := f.MaxBodySize
	if bodySize <= 0 {
		bodySize = defaultMaxBodySize
	}
	var bodyReader io.Reader = io.LimitReader(res.Body, int64(bodySize))

	finalURL := req.URL
	if res.Request != nil {
		finalURL = res.Request.URL
	}
	contentEncoding := strings.ToLower(res.Header.Get("Content-Encoding"))
	if !res.Uncompressed && (strings.Contains(contentEncoding, "gzip") || (contentEncoding == "" && strings.Contains(strings.ToLower(res.Header.Get("Content-Type")), "gzip")) || strings.HasSuffix(strings.ToLower(finalURL.Path), ".xml.gz")) {
		gz, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		bodyReader = gz
	}
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, err
	}

	response := &Response{
		StatusCode: res.StatusCode,
		Body:       body,
		Headers:    &res.Header,
		Trace:      trace,
	}
	if f.DetectCharset {
		if err := response.fixCharset(); err != nil {
			return nil, err
		}
	}
	return response, nil
}

// ContentType returns the media type of the response without
// parameters, lowercased: "text/html; charset=utf-8" becomes
// "text/html".
func (r *Response) ContentType() string {
	if r.Headers == nil {
		return ""
	}
	contentType := r.Headers.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// fixCharset re-encodes text bodies to UTF-8. A charset declared in
// the Content-Type header wins; without one the encoding is sniffed
// from the body. Non-text bodies are left untouched.
func (r *Response) fixCharset() error {
	if len(r.Body) == 0 || r.Headers == nil {
		return nil
	}
	contentType := strings.ToLower(r.Headers.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "text/") {
		return nil
	}
	if !strings.Contains(contentType, "charset") {
		d := chardet.NewTextDetector()
		best, err := d.DetectBest(r.Body)
		if err != nil {
			return err
		}
		contentType = "text/plain; charset=" + best.Charset
	}
	if strings.Contains(contentType, "utf-8") || strings.Contains(contentType, "utf8") {
		return nil
	}
	converted, err := encodeBytes(r.Body, contentType)
	if err != nil {
		return err
	}
	r.Body = converted
	return nil
}

func encodeBytes(b []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(b), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}

// GetMatchingRule returns the first limit rule matching the domain.
func (f *Fetcher) GetMatchingRule(domain string) *LimitRule {
	if f.LimitRules == nil {
		return nil
	}
	f.lock.RLock()
	defer f.lock.RUnlock()
	for _, r := range f.LimitRules {
		if r.Match(domain) {
			return r
		}
	}
	return nil
}

// RuleDelay returns the delay the matching limit rule asks for,
// including its random component, or zero without a matching rule.
func (f *Fetcher) RuleDelay(domain string) time.Duration {
	rule := f.GetMatchingRule(domain)
	if rule == nil {
		return 0
	}
	return rule.jitteredDelay()
}

// Limit adds a new limit rule.
func (f *Fetcher) Limit(rule *LimitRule) error {
	f.lock.Lock()
	if f.LimitRules == nil {
		f.LimitRules = make([]*LimitRule, 0, 8)
	}
	f.LimitRules = append(f.LimitRules, rule)
	f.lock.Unlock()
	return rule.Init()
}

// Limits adds new limit rules.
func (f *Fetcher) Limits(rules []*LimitRule) error {
	for _, r := range rules {
		if err := f.Limit(r); err != nil {
			return err
		}
	}
	return nil
}
