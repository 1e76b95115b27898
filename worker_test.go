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
	"errors"
	"testing"
	"time"
)

// newTestWorker wires a worker to the in-memory store and the mocked
// web. One empty lease attempt terminates it, so Run drains the
// frontier and returns.
func newTestWorker(t *testing.T, store *memoryStore, mock *MockTransport) *Worker {
	t.Helper()
	fetcher := newMockedFetcher(mock)
	return NewWorker(1, WorkerConfig{
		Frontier:   store,
		Sites:      store,
		Artifacts:  store,
		Registry:   NewSiteRegistry(store, fetcher, DefaultUserAgent),
		Fetcher:    fetcher,
		Gate:       NewPolitenessGate(),
		Scope:      mustScope(t),
		Detector:   NewDuplicateDetector(store),
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
}

func TestWorkerCrawlsPageAndDiscoversLinks(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://www.gov.si/", `<html><body>
		<a href="/about">O strani</a>
		<a href="https://podatki.gov.si/data">Odprti podatki</a>
		<a href="https://outside.com/x">Zunanja stran</a>
		<img src="/images/logo.png">
	</body></html>`)
	mock.RegisterHTML("https://www.gov.si/about", "<html><body><h1>O nas</h1><p>Predstavitev strani.</p></body></html>")
	mock.RegisterHTML("https://podatki.gov.si/data", "<html><body><h1>Odprti podatki</h1><p>Zbirke javnega sektorja.</p></body></html>")
	mock.RegisterBinary("https://www.gov.si/images/logo.png", "image/png", []byte{0x89, 'P', 'N', 'G'})

	store := newMemoryStore()
	if err := store.EnqueueSeed("https://www.gov.si/"); err != nil {
		t.Fatalf("EnqueueSeed: %v", err)
	}

	newTestWorker(t, store, mock).Run(context.Background())

	seed := store.pageByURL("https://www.gov.si/")
	if seed == nil || seed.pageType != PageTypeHTML {
		t.Fatalf("seed page not completed as HTML: %+v", seed)
	}
	if seed.htmlContent == nil || seed.hashContent == nil {
		t.Error("HTML page should keep both content and hash")
	}
	if seed.statusCode == nil || *seed.statusCode != 200 {
		t.Errorf("status code = %v, want 200", seed.statusCode)
	}
	if seed.siteID == nil || seed.accessed == nil {
		t.Error("completed page should carry site id and access time")
	}

	about := store.pageByURL("https://www.gov.si/about")
	if about == nil || about.pageType != PageTypeHTML {
		t.Fatalf("discovered page not crawled: %+v", about)
	}
	if !store.hasLink(seed.id, about.id) {
		t.Error("missing link edge from seed to /about")
	}

	data := store.pageByURL("https://podatki.gov.si/data")
	if data == nil || data.pageType != PageTypeHTML {
		t.Fatalf("cross-host page not crawled: %+v", data)
	}
	if store.createCalls != 2 {
		t.Errorf("site creations = %d, want one per domain", store.createCalls)
	}
	if mock.RequestCount("https://www.gov.si/robots.txt") != 1 ||
		mock.RequestCount("https://podatki.gov.si/robots.txt") != 1 {
		t.Error("each domain should have its robots.txt fetched exactly once")
	}

	logo := store.pageByURL("https://www.gov.si/images/logo.png")
	if logo == nil || logo.pageType != PageTypeImage {
		t.Fatalf("image page not completed as IMAGE: %+v", logo)
	}
	img, ok := store.images[logo.id]
	if !ok {
		t.Fatal("image payload not stored")
	}
	if img.filename != "logo.png" || img.contentType != "image/png" {
		t.Errorf("stored image = %q %q", img.filename, img.contentType)
	}

	if p := store.pageByURL("https://outside.com/x"); p != nil {
		t.Error("out-of-scope URL must not enter the frontier")
	}
	if mock.RequestCount("https://outside.com/x") != 0 {
		t.Error("out-of-scope URL must never be fetched")
	}

	site, err := store.SiteByDomain("https://www.gov.si/")
	if err != nil || site == nil {
		t.Fatalf("SiteByDomain: %v, %v", site, err)
	}
	if site.LastCrawledAt == nil {
		t.Error("crawled site should have last crawled time set")
	}
}

func TestWorkerRespectsRobots(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterRobots("https://www.gov.si/robots.txt",
		"User-agent: *\nDisallow: /private\nSitemap: https://www.gov.si/sitemap.xml\n")
	mock.RegisterSitemap("https://www.gov.si/sitemap.xml", `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://www.gov.si/assistance</loc></url>
</urlset>`)
	mock.RegisterHTML("https://www.gov.si/assistance", "<html><body><h1>Pomoč</h1></body></html>")

	store := newMemoryStore()
	if err := store.EnqueueSeed("https://www.gov.si/private/doc.html"); err != nil {
		t.Fatalf("EnqueueSeed: %v", err)
	}

	newTestWorker(t, store, mock).Run(context.Background())

	blocked := store.pageByURL("https://www.gov.si/private/doc.html")
	if blocked == nil || blocked.pageType != PageTypeDisallowed {
		t.Fatalf("blocked page = %+v, want DISALLOWED", blocked)
	}
	if blocked.statusCode == nil || *blocked.statusCode != 500 {
		t.Errorf("disallowed status = %v, want 500", blocked.statusCode)
	}
	if blocked.htmlContent != nil {
		t.Error("disallowed page must not store content")
	}
	if mock.RequestCount("https://www.gov.si/private/doc.html") != 0 {
		t.Error("disallowed page must never be fetched")
	}

	// Sitemap URLs surface through the page that created the site,
	// even one that itself was disallowed.
	assist := store.pageByURL("https://www.gov.si/assistance")
	if assist == nil || assist.pageType != PageTypeHTML {
		t.Fatalf("sitemap page not crawled: %+v", assist)
	}
	if !store.hasLink(blocked.id, assist.id) {
		t.Error("missing link edge from sitemap-bearing page")
	}

	site, _ := store.SiteByDomain("https://www.gov.si/")
	if site == nil {
		t.Fatal("site should exist")
	}
}

func TestWorkerStoresDuplicateHashOnly(t *testing.T) {
	page := "<html><body><p>Enaka vsebina na dveh naslovih.</p></body></html>"
	mock := NewMockTransport()
	mock.RegisterHTML("https://www.gov.si/a", page)
	mock.RegisterHTML("https://www.gov.si/b", page)

	store := newMemoryStore()
	store.EnqueueSeed("https://www.gov.si/a")
	store.EnqueueSeed("https://www.gov.si/b")

	newTestWorker(t, store, mock).Run(context.Background())

	first := store.pageByURL("https://www.gov.si/a")
	second := store.pageByURL("https://www.gov.si/b")
	if first == nil || first.pageType != PageTypeHTML {
		t.Fatalf("first copy = %+v, want HTML", first)
	}
	if second == nil || second.pageType != PageTypeDuplicate {
		t.Fatalf("second copy = %+v, want DUPLICATE", second)
	}
	if second.htmlContent != nil {
		t.Error("duplicate must not store HTML content")
	}
	if second.hashContent == nil || first.hashContent == nil || *second.hashContent != *first.hashContent {
		t.Error("duplicate should carry the same content hash as the original")
	}
	if second.statusCode == nil || *second.statusCode != 200 {
		t.Errorf("duplicate status = %v, want the real 200", second.statusCode)
	}
	if _, ok := store.signatures[second.id]; ok {
		t.Error("no shingle signature should be stored for a duplicate")
	}
}

func TestWorkerStoresBinaryPayload(t *testing.T) {
	pdf := []byte("%PDF-1.7 vsebina dokumenta")
	mock := NewMockTransport()
	mock.RegisterBinary("https://www.gov.si/letno-porocilo.pdf", "application/pdf", pdf)
	mock.RegisterBinary("https://www.gov.si/arhiv.zip", "application/zip", []byte{'P', 'K'})

	store := newMemoryStore()
	store.EnqueueSeed("https://www.gov.si/letno-porocilo.pdf")
	store.EnqueueSeed("https://www.gov.si/arhiv.zip")

	newTestWorker(t, store, mock).Run(context.Background())

	report := store.pageByURL("https://www.gov.si/letno-porocilo.pdf")
	if report == nil || report.pageType != PageTypeBinary {
		t.Fatalf("pdf page = %+v, want BINARY", report)
	}
	saved, ok := store.pageData[report.id]
	if !ok {
		t.Fatal("pdf payload not stored")
	}
	if saved.dataTypeCode != DataTypePDF {
		t.Errorf("data type = %q, want %q", saved.dataTypeCode, DataTypePDF)
	}
	if string(saved.data) != string(pdf) {
		t.Error("stored payload differs from response body")
	}

	archive := store.pageByURL("https://www.gov.si/arhiv.zip")
	if archive == nil || archive.pageType != PageTypeBinary {
		t.Fatalf("zip page = %+v, want BINARY", archive)
	}
	if _, ok := store.pageData[archive.id]; ok {
		t.Error("unrecognized binary type must not store a payload")
	}
}

func TestWorkerToleratesBinaryBudget(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterBinary("https://www.gov.si/velika.pdf", "application/pdf", make([]byte, 64))

	store := newMemoryStore()
	store.binaryBudget = 10
	store.EnqueueSeed("https://www.gov.si/velika.pdf")

	newTestWorker(t, store, mock).Run(context.Background())

	page := store.pageByURL("https://www.gov.si/velika.pdf")
	if page == nil || page.pageType != PageTypeBinary {
		t.Fatalf("page = %+v, want BINARY despite exhausted budget", page)
	}
	if _, ok := store.pageData[page.id]; ok {
		t.Error("payload must be skipped once the budget is exhausted")
	}
}

func TestWorkerMarksTransportErrors(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("https://www.gov.si/unreachable", &MockResponse{
		Error: errors.New("connection refused"),
	})

	store := newMemoryStore()
	store.EnqueueSeed("https://www.gov.si/unreachable")

	newTestWorker(t, store, mock).Run(context.Background())

	page := store.pageByURL("https://www.gov.si/unreachable")
	if page == nil || page.pageType != PageTypeError {
		t.Fatalf("page = %+v, want ERROR", page)
	}
	if page.statusCode == nil || *page.statusCode != 500 {
		t.Errorf("error status = %v, want 500", page.statusCode)
	}
	if page.htmlContent != nil || page.hashContent != nil {
		t.Error("failed page must not store content")
	}

	site, _ := store.SiteByDomain("https://www.gov.si/")
	if site == nil {
		t.Fatal("site row should exist even when the page failed")
	}
	if site.LastCrawledAt != nil {
		t.Error("failed fetch must not count as a crawl of the site")
	}
}

func TestWorkerFetchesRobotsBeforePage(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterRobots("https://www.gov.si/robots.txt", "User-agent: *\nAllow: /\n")
	mock.RegisterHTML("https://www.gov.si/", "<html><body>Prva stran</body></html>")

	store := newMemoryStore()
	store.EnqueueSeed("https://www.gov.si/")

	newTestWorker(t, store, mock).Run(context.Background())

	requests := mock.Requests()
	if len(requests) != 2 {
		t.Fatalf("requests = %v, want robots then page", requests)
	}
	if requests[0] != "https://www.gov.si/robots.txt" || requests[1] != "https://www.gov.si/" {
		t.Errorf("request order = %v", requests)
	}
}

func TestWorkerUsesRenderer(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://www.gov.si/spa", "<html><body><div id=app></div></body></html>")
	mock.RegisterHTML("https://www.gov.si/spa/rendered-link", "<html><body>Cilj</body></html>")

	rendered := `<html><body><a href="/spa/rendered-link">Povezava iz skripte</a></body></html>`
	renderer := &fakeRenderer{html: rendered}

	store := newMemoryStore()
	store.EnqueueSeed("https://www.gov.si/spa")

	worker := newTestWorker(t, store, mock)
	worker.renderer = renderer
	worker.Run(context.Background())

	spa := store.pageByURL("https://www.gov.si/spa")
	if spa == nil || spa.pageType != PageTypeHTML {
		t.Fatalf("spa page = %+v, want HTML", spa)
	}
	if spa.htmlContent == nil || *spa.htmlContent != rendered {
		t.Error("rendered HTML should replace the fetched body")
	}

	target := store.pageByURL("https://www.gov.si/spa/rendered-link")
	if target == nil {
		t.Fatal("link from rendered HTML not discovered")
	}
	if !renderer.closed {
		t.Error("renderer should be closed when the worker stops")
	}
}

func TestWorkerRenderFailureMarksError(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://www.gov.si/broken", "<html><body>Statika</body></html>")

	store := newMemoryStore()
	store.EnqueueSeed("https://www.gov.si/broken")

	worker := newTestWorker(t, store, mock)
	worker.renderer = &fakeRenderer{err: errors.New("browser crashed")}
	worker.Run(context.Background())

	page := store.pageByURL("https://www.gov.si/broken")
	if page == nil || page.pageType != PageTypeError {
		t.Fatalf("page = %+v, want ERROR after render failure", page)
	}
	if page.statusCode == nil || *page.statusCode != 500 {
		t.Errorf("status = %v, want 500", page.statusCode)
	}
}

func TestWorkerStopsOnEmptyFrontier(t *testing.T) {
	mock := NewMockTransport()
	store := newMemoryStore()

	fetcher := newMockedFetcher(mock)
	worker := NewWorker(3, WorkerConfig{
		Frontier:   store,
		Sites:      store,
		Artifacts:  store,
		Registry:   NewSiteRegistry(store, fetcher, DefaultUserAgent),
		Fetcher:    fetcher,
		Gate:       NewPolitenessGate(),
		Scope:      mustScope(t),
		Detector:   NewDuplicateDetector(store),
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	})

	start := time.Now()
	worker.Run(context.Background())
	elapsed := time.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("worker gave up after %v, want at least two retry delays", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("worker took %v to stop", elapsed)
	}
	if len(mock.Requests()) != 0 {
		t.Error("no requests expected against an empty frontier")
	}
}

func TestWorkerStopsOnCancelledContext(t *testing.T) {
	mock := NewMockTransport()
	store := newMemoryStore()
	store.EnqueueSeed("https://www.gov.si/")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	newTestWorker(t, store, mock).Run(ctx)

	page := store.pageByURL("https://www.gov.si/")
	if page == nil || page.pageType != PageTypeFrontier {
		t.Fatalf("page = %+v, want untouched FRONTIER row", page)
	}
	if len(mock.Requests()) != 0 {
		t.Error("cancelled worker must not fetch")
	}
}

func mustScope(t *testing.T) *ScopeFilter {
	t.Helper()
	scope, err := NewScopeFilter(".gov.si", nil)
	if err != nil {
		t.Fatalf("NewScopeFilter: %v", err)
	}
	return scope
}

type fakeRenderer struct {
	html   string
	err    error
	calls  int
	closed bool
}

func (r *fakeRenderer) Render(ctx context.Context, url string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.html, nil
}

func (r *fakeRenderer) Close() { r.closed = true }
