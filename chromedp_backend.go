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
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// RenderAgent turns a URL into the HTML a browser would see after
// scripts have run. A render failure fails the whole page, so
// implementations should return errors rather than partial documents.
type RenderAgent interface {
	Render(ctx context.Context, url string) (string, error)
	Close()
}

// RenderSettings controls how long a rendered page is given to settle.
// Sites built on client-side frameworks inject their links well after
// the document loads, which is what the waits are for.
type RenderSettings struct {
	// InitialWaitMs is the pause after the body becomes ready, giving
	// scripts time to hydrate the page.
	InitialWaitMs int
	// ScrollWaitMs is the pause after scrolling to the bottom, giving
	// lazy-loaded content time to appear.
	ScrollWaitMs int
	// FinalWaitMs is the pause after scrolling back up, before the
	// document is captured.
	FinalWaitMs int
	// TimeoutSecs bounds the whole render of one page.
	TimeoutSecs int
}

// DefaultRenderSettings returns the waits used when the configuration
// does not override them.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		InitialWaitMs: 1500,
		ScrollWaitMs:  2000,
		FinalWaitMs:   1000,
		TimeoutSecs:   30,
	}
}

// ChromeRenderer renders pages with a headless Chrome instance. Each
// worker owns one renderer; every Render call opens a fresh browser
// tab so pages cannot leak state into each other.
//
// NOTE: a renderer has no rate limiting of its own. The politeness
// gate spaces out page loads the same way it does plain fetches. Each
// browser consumes on the order of 100-200MB RAM, so keep the worker
// count in mind when rendering is on.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	userAgent   string
	settings    RenderSettings
	timeout     time.Duration
}

// NewChromeRenderer starts a browser allocator with the given waits.
// Zero fields in settings fall back to their defaults.
func NewChromeRenderer(userAgent string, settings RenderSettings) *ChromeRenderer {
	defaults := DefaultRenderSettings()
	if settings.InitialWaitMs <= 0 {
		settings.InitialWaitMs = defaults.InitialWaitMs
	}
	if settings.ScrollWaitMs <= 0 {
		settings.ScrollWaitMs = defaults.ScrollWaitMs
	}
	if settings.FinalWaitMs <= 0 {
		settings.FinalWaitMs = defaults.FinalWaitMs
	}
	if settings.TimeoutSecs <= 0 {
		settings.TimeoutSecs = defaults.TimeoutSecs
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	r := &ChromeRenderer{
		userAgent: userAgent,
		settings:  settings,
		timeout:   time.Duration(settings.TimeoutSecs) * time.Second,
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Close shuts the browser down. The renderer cannot be used afterwards.
func (r *ChromeRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

// Render loads the URL in a new tab, waits out the configured settle
// times and returns the document's outer HTML. Cancelling ctx aborts
// the render.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, r.timeout)
	defer cancelRun()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelRun()
		case <-done:
		}
	}()

	var htmlContent string
	err := chromedp.Run(runCtx,
		emulation.SetUserAgentOverride(r.userAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Let scripts hydrate the page before looking at it.
		chromedp.Sleep(time.Duration(r.settings.InitialWaitMs)*time.Millisecond),
		// Scroll to the bottom to trigger lazy-loaded content.
		chromedp.Evaluate(`window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})`, nil),
		chromedp.Sleep(time.Duration(r.settings.ScrollWaitMs)*time.Millisecond),
		chromedp.Evaluate(`window.scrollTo({top: 0, behavior: 'smooth'})`, nil),
		chromedp.Sleep(time.Duration(r.settings.FinalWaitMs)*time.Millisecond),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("page rendering failed: %w", err)
	}
	return htmlContent, nil
}
