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
	"flag"
	"fmt"
	"time"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
	"github.com/npovsic/IEPS-prvi-seminar/internal/app"
)

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "SQLite database path")

	fs.Usage = func() {
		fmt.Println(`Usage: crawler stats [flags]

Show the counters of the stored crawl: pages per outcome, frontier
depth, sites, links and stored payload sizes.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := app.DefaultConfig()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	cfg.Log.Quiet = true

	a, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer a.Close()

	stats, err := a.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Pages:  %d total, %d waiting in the frontier\n", stats.TotalPages, stats.Frontier)
	fmt.Printf("Sites:  %d\n", stats.Sites)
	fmt.Printf("Links:  %d\n", stats.Links)
	fmt.Println()

	fmt.Printf("%-12s %s\n", "Type", "Count")
	fmt.Println("------------------")
	for _, pageType := range []string{
		crawler.PageTypeHTML,
		crawler.PageTypeDuplicate,
		crawler.PageTypeImage,
		crawler.PageTypeBinary,
		crawler.PageTypeError,
		crawler.PageTypeDisallowed,
		crawler.PageTypeFrontier,
	} {
		fmt.Printf("%-12s %d\n", pageType, stats.PagesByType[pageType])
	}
	fmt.Println()
	fmt.Printf("Stored payloads: %s of documents, %s of images\n",
		formatBytes(stats.BinaryBytes), formatBytes(stats.ImageBytes))

	sites, err := a.Store().AllSites()
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		return nil
	}
	pageCounts, err := a.Store().PageCountBySite()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%-6s %-50s %-20s %s\n", "ID", "Domain", "Last crawled", "Pages")
	fmt.Println("---------------------------------------------------------------------------------------")
	for _, s := range sites {
		lastCrawled := "Never"
		if s.LastCrawledAt != nil {
			lastCrawled = time.Unix(*s.LastCrawledAt, 0).Format("2006-01-02 15:04")
		}
		fmt.Printf("%-6d %-50s %-20s %d\n", s.ID, truncate(s.Domain, 50), lastCrawled, pageCounts[s.ID])
	}

	return nil
}

// truncate truncates a string to the specified length
func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

// formatBytes formats a byte count to a human-readable string
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
