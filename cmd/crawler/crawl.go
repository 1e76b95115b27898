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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/npovsic/IEPS-prvi-seminar/internal/app"
)

// crawlFlags holds all the flags for the crawl command
type crawlFlags struct {
	config    string
	database  string
	suffix    string
	workers   int
	seedsFile string
	userAgent string
	render    bool
	maxPages  int
	verbose   bool
	quiet     bool
}

func runCrawl(args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)

	var flags crawlFlags

	fs.StringVar(&flags.config, "config", "", "Path to a YAML config file")
	fs.StringVar(&flags.config, "c", "", "Path to a YAML config file (shorthand)")
	fs.StringVar(&flags.database, "db", "", "SQLite database path")
	fs.StringVar(&flags.suffix, "suffix", "", "Allowed domain suffix, e.g. .gov.si")
	fs.StringVar(&flags.suffix, "s", "", "Allowed domain suffix (shorthand)")
	fs.IntVar(&flags.workers, "workers", 0, "Number of concurrent crawl workers")
	fs.IntVar(&flags.workers, "w", 0, "Number of concurrent crawl workers (shorthand)")
	fs.StringVar(&flags.seedsFile, "seeds-file", "", "File with one seed URL per line")
	fs.StringVar(&flags.userAgent, "user-agent", "", "Custom User-Agent string")
	fs.StringVar(&flags.userAgent, "A", "", "Custom User-Agent string (shorthand)")
	fs.BoolVar(&flags.render, "render", false, "Render pages in headless Chrome before parsing")
	fs.BoolVar(&flags.render, "j", false, "Render pages in headless Chrome (shorthand)")
	fs.IntVar(&flags.maxPages, "max-pages", 0, "Stop discovering new pages at this many rows")
	fs.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&flags.verbose, "v", false, "Enable debug logging (shorthand)")
	fs.BoolVar(&flags.quiet, "quiet", false, "Log errors only")
	fs.BoolVar(&flags.quiet, "q", false, "Log errors only (shorthand)")

	fs.Usage = func() {
		fmt.Println(`Usage: crawler crawl [flags] [seed-url ...]

Start a crawl. Seeds come from the config file, the seeds file and the
positional arguments, combined. Rerunning against the same database
resumes where the previous run stopped.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # Crawl from a config file
  crawler crawl --config crawler.yaml

  # Crawl gov.si with 8 workers
  crawler crawl --suffix .gov.si -w 8 https://www.gov.si/

  # Crawl with JavaScript rendering
  crawler crawl --config crawler.yaml --render

  # Seeds from a file, custom database location
  crawler crawl --suffix .gov.si --seeds-file seeds.txt --db ./crawl.db`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := app.DefaultConfig()
	if flags.config != "" {
		loaded, err := app.LoadConfig(flags.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Only flags given on the command line override the file values.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["db"] {
		cfg.Database.Path = flags.database
	}
	if set["suffix"] || set["s"] {
		cfg.Crawl.AllowedDomainSuffix = flags.suffix
	}
	if set["workers"] || set["w"] {
		cfg.Crawl.Workers = flags.workers
	}
	if set["seeds-file"] {
		cfg.Crawl.SeedsFile = flags.seedsFile
	}
	if set["user-agent"] || set["A"] {
		cfg.Fetch.UserAgent = flags.userAgent
	}
	if set["render"] || set["j"] {
		cfg.Render.Enabled = flags.render
	}
	if set["max-pages"] {
		cfg.Limits.MaxPages = flags.maxPages
	}
	if set["verbose"] || set["v"] {
		cfg.Log.Verbose = flags.verbose
	}
	if set["quiet"] || set["q"] {
		cfg.Log.Quiet = flags.quiet
	}
	cfg.Crawl.Seeds = append(cfg.Crawl.Seeds, fs.Args()...)

	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Stop cleanly on Ctrl-C: cancel the crawl context, workers release
	// and the next run resumes from the frontier.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		fmt.Fprintf(os.Stderr, "\nReceived %v, stopping crawl...\n", sig)
		cancel()
	}()

	return a.Crawl(ctx)
}
