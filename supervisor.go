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
	"sync"
	"time"
)

// DefaultWorkerCount is how many workers a supervisor starts when the
// configuration does not say otherwise.
const DefaultWorkerCount = 8

// SupervisorConfig assembles a crawl run. Frontier, Sites, Artifacts,
// Fetcher and Scope are required; the rest has workable defaults.
type SupervisorConfig struct {
	Frontier  FrontierStore
	Sites     SiteStore
	Artifacts ArtifactStore
	Fetcher   *Fetcher
	Scope     *ScopeFilter

	// Seeds are enqueued before the workers start. Unparseable and
	// out-of-scope entries are skipped with a log line.
	Seeds []string

	// Workers is the number of concurrent workers, DefaultWorkerCount
	// when zero.
	Workers int

	// NewRenderer, when set, is called once per worker to give each
	// its own browser. Nil disables rendering and workers crawl the
	// fetched bodies.
	NewRenderer func() RenderAgent

	// MaxRetries and RetryDelay are handed to every worker.
	MaxRetries int
	RetryDelay time.Duration

	// MaxSimilarity, ShingleSize and HashAlgorithm tune the shared
	// duplicate detector. Zero values keep the detector's defaults.
	MaxSimilarity float64
	ShingleSize   int
	HashAlgorithm string
}

// Supervisor owns one crawl: it recovers stale leases, seeds the
// frontier and runs the workers until they all stop. Workers share the
// site registry, the politeness gate and the duplicate detector, so
// robots.txt is fetched once per domain and crawl delays hold across
// the whole pool.
type Supervisor struct {
	cfg      SupervisorConfig
	registry *SiteRegistry
	gate     *PolitenessGate
	detector *DuplicateDetector
}

// NewSupervisor prepares a crawl from the configuration.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkerCount
	}
	detector := NewDuplicateDetector(cfg.Artifacts)
	if cfg.MaxSimilarity > 0 {
		detector.MaxSimilarity = cfg.MaxSimilarity
	}
	if cfg.ShingleSize > 0 {
		detector.ShingleSize = cfg.ShingleSize
	}
	if cfg.HashAlgorithm != "" {
		detector.HashAlgorithm = cfg.HashAlgorithm
	}
	return &Supervisor{
		cfg:      cfg,
		registry: NewSiteRegistry(cfg.Sites, cfg.Fetcher, cfg.Fetcher.UserAgent),
		gate:     NewPolitenessGate(),
		detector: detector,
	}
}

// Run executes the crawl and blocks until every worker has stopped,
// either because the frontier stayed empty or because the context was
// cancelled. A cancelled run leaves its leases in place; the next run
// resets them before starting.
func (s *Supervisor) Run(ctx context.Context) error {
	released, err := s.cfg.Frontier.ResetLeases()
	if err != nil {
		return fmt.Errorf("resetting stale leases: %w", err)
	}
	if released > 0 {
		Logger.Infof("Released %d stale leases from an interrupted run", released)
	}

	seeded := 0
	for _, raw := range s.cfg.Seeds {
		canonical, err := CanonicalizeURL(raw, nil)
		if err != nil {
			Logger.Warnf("Skipping seed %q: %v", raw, err)
			continue
		}
		if err := s.cfg.Scope.Allow(canonical); err != nil {
			Logger.Warnf("Skipping seed %s: %v", canonical, err)
			continue
		}
		if err := s.cfg.Frontier.EnqueueSeed(canonical); err != nil {
			return fmt.Errorf("seeding frontier with %s: %w", canonical, err)
		}
		seeded++
	}

	Logger.Infof("Starting %d workers (%d seeds enqueued)", s.cfg.Workers, seeded)

	var wg sync.WaitGroup
	for i := 1; i <= s.cfg.Workers; i++ {
		worker := NewWorker(i, WorkerConfig{
			Frontier:   s.cfg.Frontier,
			Sites:      s.cfg.Sites,
			Artifacts:  s.cfg.Artifacts,
			Registry:   s.registry,
			Fetcher:    s.cfg.Fetcher,
			Gate:       s.gate,
			Scope:      s.cfg.Scope,
			Detector:   s.detector,
			Renderer:   s.newRenderer(),
			MaxRetries: s.cfg.MaxRetries,
			RetryDelay: s.cfg.RetryDelay,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}
	wg.Wait()

	Logger.Infof("All workers stopped")
	return nil
}

func (s *Supervisor) newRenderer() RenderAgent {
	if s.cfg.NewRenderer == nil {
		return nil
	}
	return s.cfg.NewRenderer()
}
