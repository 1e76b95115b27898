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
	"fmt"

	"github.com/sirupsen/logrus"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
	"github.com/npovsic/IEPS-prvi-seminar/internal/store"
)

// App owns the resources of one crawler process: the configuration
// and the open store. Commands build an App, run what they need and
// Close it.
type App struct {
	cfg   *Config
	store *store.Store
}

// NewApp opens the store described by the configuration and applies
// the configured log level.
func NewApp(cfg *Config) (*App, error) {
	applyLogLevel(cfg)

	dbPath, err := expandPath(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding database path %q: %w", cfg.Database.Path, err)
	}
	st, err := store.NewStore(dbPath, store.Options{
		MaxURLLength:   cfg.Limits.MaxURLLen,
		MaxPages:       cfg.Limits.MaxPages,
		MaxBinaryBytes: cfg.Limits.MaxBinaryBytes,
	})
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, store: st}, nil
}

// Store exposes the open store to the command layer, which queries it
// directly for exports.
func (a *App) Store() *store.Store {
	return a.store
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// applyLogLevel sets the process-wide log level: verbose selects
// debug, quiet drops everything below errors, verbose wins when both
// are set.
func applyLogLevel(cfg *Config) {
	switch {
	case cfg.Log.Verbose:
		crawler.Logger.SetLevel(logrus.DebugLevel)
	case cfg.Log.Quiet:
		crawler.Logger.SetLevel(logrus.ErrorLevel)
	default:
		crawler.Logger.SetLevel(logrus.InfoLevel)
	}
}

// Stats summarizes the state of the stored crawl.
type Stats struct {
	PagesByType map[string]int64
	TotalPages  int64
	Frontier    int64
	Sites       int64
	Links       int64
	BinaryBytes int64
	ImageBytes  int64
}

// Stats reads the summary counters from the store.
func (a *App) Stats() (*Stats, error) {
	byType, err := a.store.CountPagesByType()
	if err != nil {
		return nil, fmt.Errorf("counting pages by type: %w", err)
	}
	total, err := a.store.TotalPages()
	if err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	frontier, err := a.store.FrontierDepth()
	if err != nil {
		return nil, fmt.Errorf("measuring frontier depth: %w", err)
	}
	sites, err := a.store.CountSites()
	if err != nil {
		return nil, fmt.Errorf("counting sites: %w", err)
	}
	links, err := a.store.CountLinks()
	if err != nil {
		return nil, fmt.Errorf("counting links: %w", err)
	}
	binaryBytes, err := a.store.BinaryBytesStored()
	if err != nil {
		return nil, fmt.Errorf("summing binary payloads: %w", err)
	}
	imageBytes, err := a.store.ImageBytesStored()
	if err != nil {
		return nil, fmt.Errorf("summing image payloads: %w", err)
	}

	return &Stats{
		PagesByType: byType,
		TotalPages:  total,
		Frontier:    frontier,
		Sites:       sites,
		Links:       links,
		BinaryBytes: binaryBytes,
		ImageBytes:  imageBytes,
	}, nil
}
