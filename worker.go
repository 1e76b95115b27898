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
	"net/url"
	"time"
)

const (
	// DefaultMaxRetries is how many consecutive empty leases a worker
	// tolerates before it stops.
	DefaultMaxRetries = 5
	// DefaultRetryDelay is the pause between empty lease attempts.
	DefaultRetryDelay = 10 * time.Second
)

// WorkerConfig wires one worker to its collaborators.
type WorkerConfig struct {
	Frontier  FrontierStore
	Sites     SiteStore
	Artifacts ArtifactStore
	Registry  *SiteRegistry
	Fetcher   *Fetcher
	Gate      *PolitenessGate
	Scope     *ScopeFilter
	Detector  *DuplicateDetector
	// Renderer is optional; without one the fetched body is the
	// document.
	Renderer RenderAgent

	// MaxRetries and RetryDelay bound the empty-frontier backoff;
	// zero selects the defaults.
	MaxRetries int
	RetryDelay time.Duration
}

// Worker drains the frontier: lease a page, resolve its site, honor
// robots, wait out the crawl delay, fetch, classify, persist, release
// the lease, then enqueue what the page linked to. Workers share
// nothing but the store and the politeness gate.
type Worker struct {
	id        int
	frontier  FrontierStore
	sites     SiteStore
	artifacts ArtifactStore
	registry  *SiteRegistry
	fetcher   *Fetcher
	gate      *PolitenessGate
	scope     *ScopeFilter
	detector  *DuplicateDetector
	renderer  RenderAgent

	maxRetries int
	retryDelay time.Duration
}

// NewWorker returns a worker with the given id, used only in logs.
func NewWorker(id int, cfg WorkerConfig) *Worker {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Worker{
		id:         id,
		frontier:   cfg.Frontier,
		sites:      cfg.Sites,
		artifacts:  cfg.Artifacts,
		registry:   cfg.Registry,
		fetcher:    cfg.Fetcher,
		gate:       cfg.Gate,
		scope:      cfg.Scope,
		detector:   cfg.Detector,
		renderer:   cfg.Renderer,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// Run crawls until the frontier stays empty or the context is
// cancelled. The worker's renderer, when it has one, is closed on the
// way out.
func (w *Worker) Run(ctx context.Context) {
	if w.renderer != nil {
		defer w.renderer.Close()
	}

	empty := 0
	for {
		if ctx.Err() != nil {
			Logger.Infof("Worker %d: stopping, context cancelled", w.id)
			return
		}

		page, err := w.frontier.LeaseFrontierPage()
		if err != nil {
			Logger.Errorf("Worker %d: lease failed: %v", w.id, err)
		}
		if page == nil {
			empty++
			if empty >= w.maxRetries {
				Logger.Infof("Worker %d: frontier stayed empty, stopping", w.id)
				return
			}
			Logger.Debugf("Worker %d: frontier empty, retry %d of %d", w.id, empty, w.maxRetries)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.retryDelay):
			}
			continue
		}

		empty = 0
		w.crawlPage(ctx, page)
	}
}

// discovery is one URL candidate found during an iteration. They are
// enqueued only after the page itself has been completed, so every
// link edge starts at a finished page.
type discovery struct {
	raw   string
	base  *url.URL
	image bool
}

func (w *Worker) crawlPage(ctx context.Context, page *LeasedPage) {
	var siteID *uint
	done := false
	defer func() {
		if r := recover(); r != nil {
			Logger.Errorf("Worker %d: panic while crawling %s: %v", w.id, page.URL, r)
			if !done {
				w.finish(page, errorResult(siteID), nil)
			}
		}
	}()

	Logger.Infof("Worker %d: crawling %s", w.id, page.URL)

	pageURL, err := url.Parse(page.URL)
	if err != nil {
		Logger.Errorf("Worker %d: unparseable frontier URL %q: %v", w.id, page.URL, err)
		done = true
		w.finish(page, errorResult(nil), nil)
		return
	}

	record, err := w.registry.GetOrCreate(ctx, SiteDomain(pageURL))
	if err != nil {
		Logger.Errorf("Worker %d: site lookup for %s failed: %v", w.id, page.URL, err)
		done = true
		w.finish(page, errorResult(nil), nil)
		return
	}
	id := record.Site.ID
	siteID = &id

	// Sitemap URLs surface once, on site creation; whatever happens
	// to this page they are flushed with its discoveries.
	var discoveries []discovery
	for _, loc := range record.DrainSitemapLocs() {
		discoveries = append(discoveries, discovery{raw: loc, base: pageURL})
	}

	if err := record.Policy.Check(pageURL); err != nil {
		Logger.Infof("Worker %d: %s disallowed by robots", w.id, page.URL)
		result := errorResult(siteID)
		result.PageType = PageTypeDisallowed
		done = true
		w.finish(page, result, discoveries)
		return
	}

	delay := record.Policy.CrawlDelay()
	if ruleDelay := w.fetcher.RuleDelay(pageURL.Host); ruleDelay > delay {
		delay = ruleDelay
	}
	if err := w.gate.Wait(ctx, pageURL.Host, delay); err != nil {
		// Shutdown mid-wait: keep the lease untouched, the next run's
		// reset makes the page leaseable again.
		Logger.Infof("Worker %d: wait for %s interrupted: %v", w.id, pageURL.Host, err)
		done = true
		return
	}

	resp, err := w.fetcher.Get(ctx, page.URL)
	if err != nil {
		Logger.Warnf("Worker %d: fetching %s failed: %v", w.id, page.URL, err)
		done = true
		w.finish(page, errorResult(siteID), discoveries)
		return
	}
	status := resp.StatusCode
	now := time.Now()
	pageType, dataType := ClassifyContentType(resp.ContentType())

	switch pageType {
	case PageTypeHTML:
		html := string(resp.Body)
		if w.renderer != nil {
			rendered, err := w.renderer.Render(ctx, page.URL)
			if err != nil {
				Logger.Warnf("Worker %d: rendering %s failed: %v", w.id, page.URL, err)
				done = true
				w.finish(page, errorResult(siteID), discoveries)
				return
			}
			html = rendered
		}

		check, err := w.detector.Check(html)
		if err != nil {
			Logger.Errorf("Worker %d: duplicate check for %s failed: %v", w.id, page.URL, err)
			done = true
			w.finish(page, errorResult(siteID), discoveries)
			return
		}

		if check.DuplicateOf != nil {
			Logger.Infof("Worker %d: %s duplicates page %d (similarity %.3f)",
				w.id, page.URL, *check.DuplicateOf, check.Similarity)
			done = true
			w.finish(page, &PageResult{
				SiteID:         siteID,
				PageType:       PageTypeDuplicate,
				HashContent:    &check.Hash,
				HTTPStatusCode: &status,
				AccessedTime:   now,
			}, discoveries)
			w.markCrawled(id, now)
			return
		}

		links, err := ExtractLinks([]byte(html), pageURL)
		if err != nil {
			Logger.Warnf("Worker %d: parsing %s failed: %v", w.id, page.URL, err)
			links = &PageLinks{Base: pageURL}
		}
		for _, href := range links.Anchors {
			discoveries = append(discoveries, discovery{raw: href, base: links.Base})
		}
		for _, u := range links.ScriptURLs {
			discoveries = append(discoveries, discovery{raw: u, base: links.Base})
		}
		for _, src := range links.Images {
			discoveries = append(discoveries, discovery{raw: src, base: links.Base, image: true})
		}

		done = true
		w.finish(page, &PageResult{
			SiteID:         siteID,
			PageType:       PageTypeHTML,
			HTMLContent:    &html,
			HashContent:    &check.Hash,
			HTTPStatusCode: &status,
			AccessedTime:   now,
		}, discoveries)
		if err := w.detector.Persist(page.ID, check); err != nil {
			Logger.Errorf("Worker %d: storing signature for %s failed: %v", w.id, page.URL, err)
		}
		w.markCrawled(id, now)

	case PageTypeImage:
		done = true
		w.finish(page, &PageResult{
			SiteID:         siteID,
			PageType:       PageTypeImage,
			HTTPStatusCode: &status,
			AccessedTime:   now,
		}, discoveries)
		err := w.artifacts.SaveImage(page.ID, ImageFilename(page.URL), resp.ContentType(), resp.Body, now)
		if err != nil {
			Logger.Errorf("Worker %d: storing image %s failed: %v", w.id, page.URL, err)
		}
		w.markCrawled(id, now)

	default:
		done = true
		w.finish(page, &PageResult{
			SiteID:         siteID,
			PageType:       PageTypeBinary,
			HTTPStatusCode: &status,
			AccessedTime:   now,
		}, discoveries)
		if dataType != "" {
			switch err := w.artifacts.SavePageData(page.ID, dataType, resp.Body); {
			case errors.Is(err, ErrBinaryBudgetExhausted):
				Logger.Warnf("Worker %d: binary budget exhausted, payload of %s not stored", w.id, page.URL)
			case err != nil:
				Logger.Errorf("Worker %d: storing payload of %s failed: %v", w.id, page.URL, err)
			}
		}
		w.markCrawled(id, now)
	}
}

// finish writes the page's terminal state and, when that succeeds,
// enqueues its discoveries.
func (w *Worker) finish(page *LeasedPage, result *PageResult, discoveries []discovery) {
	if err := w.frontier.CompletePage(page.ID, result); err != nil {
		Logger.Errorf("Worker %d: completing %s as %s failed: %v", w.id, page.URL, result.PageType, err)
		return
	}
	Logger.Debugf("Worker %d: completed %s as %s", w.id, page.URL, result.PageType)
	for _, d := range discoveries {
		w.tryEnqueue(page.ID, d)
	}
}

// tryEnqueue pushes one candidate through canonicalization and the
// scope filter into the frontier. Rejections are routine and only
// logged for debugging.
func (w *Worker) tryEnqueue(fromPageID uint, d discovery) {
	var canonical string
	var err error
	if d.image {
		canonical, err = CanonicalizeImageURL(d.raw, d.base)
	} else {
		canonical, err = CanonicalizeURL(d.raw, d.base)
	}
	if err != nil {
		Logger.Debugf("Worker %d: skipping %q: %v", w.id, d.raw, err)
		return
	}
	if err := w.scope.Allow(canonical); err != nil {
		Logger.Debugf("Worker %d: skipping %s: %v", w.id, canonical, err)
		return
	}
	switch err := w.frontier.EnqueueDiscovered(fromPageID, canonical); {
	case errors.Is(err, ErrURLTooLong), errors.Is(err, ErrFrontierFull):
		Logger.Debugf("Worker %d: dropping %s: %v", w.id, canonical, err)
	case err != nil:
		Logger.Errorf("Worker %d: enqueueing %s failed: %v", w.id, canonical, err)
	}
}

func (w *Worker) markCrawled(siteID uint, at time.Time) {
	if err := w.sites.MarkSiteCrawled(siteID, at); err != nil {
		Logger.Errorf("Worker %d: updating site %d crawl time failed: %v", w.id, siteID, err)
	}
}

func errorResult(siteID *uint) *PageResult {
	status := 500
	return &PageResult{
		SiteID:         siteID,
		PageType:       PageTypeError,
		HTTPStatusCode: &status,
		AccessedTime:   time.Now(),
	}
}
