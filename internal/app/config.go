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

// Package app assembles a crawl run from its configuration: it loads
// seeds, opens the store, wires the fetcher, scope filter and
// supervisor together and reports progress while the workers run.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/net/publicsuffix"
	"gopkg.in/yaml.v3"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

// Config is the crawl configuration, usually loaded from a YAML file.
// Zero values fall back to the defaults of DefaultConfig, so a config
// file only needs the fields it wants to change.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Crawl      CrawlConfig      `yaml:"crawl"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Politeness PolitenessConfig `yaml:"politeness"`
	Render     RenderConfig     `yaml:"render"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Limits     LimitsConfig     `yaml:"limits"`
	Log        LogConfig        `yaml:"log"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	// Path is the database file, created on first use. A leading ~ is
	// expanded to the user's home directory.
	Path string `yaml:"path"`
}

// CrawlConfig bounds the crawl itself.
type CrawlConfig struct {
	// Workers is the number of concurrent crawl workers.
	Workers int `yaml:"workers"`
	// AllowedDomainSuffix keeps the crawl inside one domain, e.g.
	// ".gov.si". Required.
	AllowedDomainSuffix string `yaml:"allowed_domain_suffix"`
	// DisallowedPatterns are regular expressions matched against
	// canonical URLs; matching URLs never enter the frontier.
	DisallowedPatterns []string `yaml:"disallowed_patterns"`
	// Seeds are starting URLs given inline.
	Seeds []string `yaml:"seeds"`
	// SeedsFile is a plaintext file of starting URLs, one per line.
	SeedsFile string `yaml:"seeds_file"`
	// MaxRetries is how many consecutive empty frontier polls a worker
	// tolerates before it stops.
	MaxRetries int `yaml:"max_retries"`
	// RetryDelaySecs is the pause between empty frontier polls.
	RetryDelaySecs int `yaml:"retry_delay_secs"`
}

// FetchConfig tunes the HTTP client.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int `yaml:"max_body_bytes"`
	// DetectCharset re-encodes text bodies to UTF-8 when the server
	// declares another or no charset.
	DetectCharset bool `yaml:"detect_charset"`
	// TraceHTTP logs connect and first-byte timings per request.
	TraceHTTP bool `yaml:"trace_http"`
}

// PolitenessConfig is the host-level request discipline applied on top
// of robots.txt: the effective delay between fetches to a host is the
// larger of the robots crawl-delay and DelaySecs.
type PolitenessConfig struct {
	DelaySecs       int `yaml:"delay_secs"`
	RandomDelaySecs int `yaml:"random_delay_secs"`
	// Parallelism caps concurrent in-flight requests across all hosts.
	Parallelism int `yaml:"parallelism"`
}

// RenderConfig controls headless browser rendering. When disabled,
// workers parse the fetched body directly.
type RenderConfig struct {
	Enabled       bool `yaml:"enabled"`
	InitialWaitMs int  `yaml:"initial_wait_ms"`
	ScrollWaitMs  int  `yaml:"scroll_wait_ms"`
	FinalWaitMs   int  `yaml:"final_wait_ms"`
	TimeoutSecs   int  `yaml:"timeout_secs"`
}

// DedupConfig tunes duplicate detection.
type DedupConfig struct {
	// MaxSimilarity is the Jaccard threshold; documents strictly above
	// it count as near duplicates.
	MaxSimilarity float64 `yaml:"max_similarity"`
	// ShingleSize is the word window width of the shingle sets.
	ShingleSize int `yaml:"shingle_size"`
	// HashAlgorithm selects the exact-duplicate digest: sha256, md5 or
	// xxhash.
	HashAlgorithm string `yaml:"hash_algorithm"`
}

// LimitsConfig caps what the store accepts.
type LimitsConfig struct {
	MaxURLLen      int   `yaml:"max_url_len"`
	MaxPages       int   `yaml:"max_pages"`
	MaxBinaryBytes int64 `yaml:"max_binary_bytes"`
}

// LogConfig selects the log level: Verbose wins over Quiet.
type LogConfig struct {
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
	// Quiet drops everything below errors.
	Quiet bool `yaml:"quiet"`
}

// DefaultConfig returns the configuration used when no file overrides
// it. The allowed domain suffix has no default and must be set.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "~/.iepsbot/crawler.db",
		},
		Crawl: CrawlConfig{
			Workers:        4,
			MaxRetries:     5,
			RetryDelaySecs: 10,
		},
		Fetch: FetchConfig{
			UserAgent:     crawler.DefaultUserAgent,
			TimeoutSecs:   10,
			MaxBodyBytes:  10 * 1024 * 1024,
			DetectCharset: true,
		},
		Politeness: PolitenessConfig{
			DelaySecs:   1,
			Parallelism: 5,
		},
		Render: RenderConfig{
			Enabled:       false,
			InitialWaitMs: 1500,
			ScrollWaitMs:  2000,
			FinalWaitMs:   1000,
			TimeoutSecs:   30,
		},
		Dedup: DedupConfig{
			MaxSimilarity: crawler.DefaultMaxSimilarity,
			ShingleSize:   crawler.DefaultShingleSize,
			HashAlgorithm: crawler.DefaultHashAlgorithm,
		},
		Limits: LimitsConfig{
			MaxURLLen:      2000,
			MaxPages:       100000,
			MaxBinaryBytes: 1 << 30,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. A leading ~
// in the path is expanded. The returned config is validated.
func LoadConfig(path string) (*Config, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the crawler cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Crawl.AllowedDomainSuffix) == "" {
		return fmt.Errorf("crawl.allowed_domain_suffix is required")
	}
	if c.Crawl.Workers < 1 {
		return fmt.Errorf("crawl.workers must be at least 1, got %d", c.Crawl.Workers)
	}
	if c.Crawl.MaxRetries < 1 {
		return fmt.Errorf("crawl.max_retries must be at least 1, got %d", c.Crawl.MaxRetries)
	}
	if c.Dedup.MaxSimilarity <= 0 || c.Dedup.MaxSimilarity > 1 {
		return fmt.Errorf("dedup.max_similarity must be in (0, 1], got %g", c.Dedup.MaxSimilarity)
	}
	if c.Dedup.ShingleSize < 1 {
		return fmt.Errorf("dedup.shingle_size must be at least 1, got %d", c.Dedup.ShingleSize)
	}
	if _, err := crawler.ComputeContentHash(nil, c.Dedup.HashAlgorithm); err != nil {
		return fmt.Errorf("dedup.hash_algorithm: %w", err)
	}
	if c.Render.Enabled && c.Render.TimeoutSecs < 1 {
		return fmt.Errorf("render.timeout_secs must be at least 1, got %d", c.Render.TimeoutSecs)
	}
	return nil
}

// Warnings returns advisory findings that do not block a run. The only
// one today flags a scope as broad as a whole public suffix, e.g.
// ".com", which would admit every domain registered under it.
func (c *Config) Warnings() []string {
	var warnings []string
	suffix := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Crawl.AllowedDomainSuffix)), ".")
	if suffix != "" {
		if ps, _ := publicsuffix.PublicSuffix(suffix); ps == suffix {
			warnings = append(warnings, fmt.Sprintf(
				"allowed_domain_suffix %q is a public suffix; the crawl scope covers every domain registered under it", suffix))
		}
	}
	return warnings
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		return homedir.Expand(path)
	}
	return path, nil
}
