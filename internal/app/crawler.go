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

package app

import (
	"context"
	"fmt"
	"time"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

// progressInterval is how often the running crawl logs its counters.
const progressInterval = 10 * time.Second

// Crawl runs the configured crawl until the frontier drains or the
// context is cancelled. A cancelled crawl leaves its leases behind;
// the next run recovers them on startup.
func (a *App) Crawl(ctx context.Context) error {
	seeds, err := a.collectSeeds()
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seeds configured: set crawl.seeds or crawl.seeds_file")
	}

	for _, warning := range a.cfg.Warnings() {
		crawler.Logger.Warnf("%s", warning)
	}

	fetcher, err := a.buildFetcher()
	if err != nil {
		return fmt.Errorf("configuring fetcher: %w", err)
	}
	scope, err := crawler.NewScopeFilter(a.cfg.Crawl.AllowedDomainSuffix, a.cfg.Crawl.DisallowedPatterns)
	if err != nil {
		return fmt.Errorf("configuring scope filter: %w", err)
	}

	supervisor := crawler.NewSupervisor(crawler.SupervisorConfig{
		Frontier:      a.store,
		Sites:         a.store,
		Artifacts:     a.store,
		Fetcher:       fetcher,
		Scope:         scope,
		Seeds:         seeds,
		Workers:       a.cfg.Crawl.Workers,
		NewRenderer:   a.rendererFactory(),
		MaxRetries:    a.cfg.Crawl.MaxRetries,
		RetryDelay:    time.Duration(a.cfg.Crawl.RetryDelaySecs) * time.Second,
		MaxSimilarity: a.cfg.Dedup.MaxSimilarity,
		ShingleSize:   a.cfg.Dedup.ShingleSize,
		HashAlgorithm: a.cfg.Dedup.HashAlgorithm,
	})

	done := make(chan struct{})
	go a.reportProgress(ctx, done)

	runErr := supervisor.Run(ctx)
	close(done)

	a.logSummary()
	return runErr
}

// collectSeeds merges the inline seed list with the seeds file.
func (a *App) collectSeeds() ([]string, error) {
	seeds := append([]string(nil), a.cfg.Crawl.Seeds...)
	if a.cfg.Crawl.SeedsFile != "" {
		fromFile, err := LoadSeeds(a.cfg.Crawl.SeedsFile)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, fromFile...)
	}
	return seeds, nil
}

// buildFetcher translates the fetch and politeness configuration into
// a Fetcher with one catch-all limit rule.
func (a *App) buildFetcher() (*crawler.Fetcher, error) {
	fetcher := crawler.NewFetcher()
	if a.cfg.Fetch.UserAgent != "" {
		fetcher.UserAgent = a.cfg.Fetch.UserAgent
	}
	if a.cfg.Fetch.MaxBodyBytes > 0 {
		fetcher.MaxBodySize = a.cfg.Fetch.MaxBodyBytes
	}
	if a.cfg.Fetch.TimeoutSecs > 0 {
		fetcher.Client.Timeout = time.Duration(a.cfg.Fetch.TimeoutSecs) * time.Second
	}
	fetcher.DetectCharset = a.cfg.Fetch.DetectCharset
	fetcher.TraceHTTP = a.cfg.Fetch.TraceHTTP

	p := a.cfg.Politeness
	if p.DelaySecs > 0 || p.RandomDelaySecs > 0 || p.Parallelism > 0 {
		rule := &crawler.LimitRule{
			DomainGlob:  "*",
			Delay:       time.Duration(p.DelaySecs) * time.Second,
			RandomDelay: time.Duration(p.RandomDelaySecs) * time.Second,
			Parallelism: p.Parallelism,
		}
		if err := fetcher.Limit(rule); err != nil {
			return nil, err
		}
	}
	return fetcher, nil
}

// rendererFactory returns the per-worker browser constructor, or nil
// when rendering is disabled.
func (a *App) rendererFactory() func() crawler.RenderAgent {
	if !a.cfg.Render.Enabled {
		return nil
	}
	userAgent := a.cfg.Fetch.UserAgent
	settings := crawler.RenderSettings{
		InitialWaitMs: a.cfg.Render.InitialWaitMs,
		ScrollWaitMs:  a.cfg.Render.ScrollWaitMs,
		FinalWaitMs:   a.cfg.Render.FinalWaitMs,
		TimeoutSecs:   a.cfg.Render.TimeoutSecs,
	}
	return func() crawler.RenderAgent {
		return crawler.NewChromeRenderer(userAgent, settings)
	}
}

// reportProgress logs the crawl counters every progressInterval until
// the run finishes.
func (a *App) reportProgress(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := a.Stats()
			if err != nil {
				crawler.Logger.Debugf("Progress probe failed: %v", err)
				continue
			}
			crawler.Logger.Infof("Progress: %d/%d pages processed, %d waiting | HTML %d, duplicates %d, images %d, binaries %d",
				stats.TotalPages-stats.Frontier, stats.TotalPages, stats.Frontier,
				stats.PagesByType[crawler.PageTypeHTML],
				stats.PagesByType[crawler.PageTypeDuplicate],
				stats.PagesByType[crawler.PageTypeImage],
				stats.PagesByType[crawler.PageTypeBinary])
		}
	}
}

// logSummary prints the final counters after a run.
func (a *App) logSummary() {
	stats, err := a.Stats()
	if err != nil {
		crawler.Logger.Errorf("Reading final crawl stats failed: %v", err)
		return
	}
	crawler.Logger.Infof("Crawl state: %d pages over %d sites, %d links | HTML %d, duplicates %d, images %d, binaries %d, errors %d, disallowed %d, frontier %d",
		stats.TotalPages, stats.Sites, stats.Links,
		stats.PagesByType[crawler.PageTypeHTML],
		stats.PagesByType[crawler.PageTypeDuplicate],
		stats.PagesByType[crawler.PageTypeImage],
		stats.PagesByType[crawler.PageTypeBinary],
		stats.PagesByType[crawler.PageTypeError],
		stats.PagesByType[crawler.PageTypeDisallowed],
		stats.Frontier)
}
