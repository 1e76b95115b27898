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

// Crawler CLI
//
// Command-line interface for the gov.si web crawler. Starts and
// resumes crawls, reports what is stored and exports the page and
// link data for visualization.
//
// Usage:
//
//	crawler <command> [flags]
//
// Commands:
//
//	crawl     Start a crawl, or resume one against an existing database
//	export    Export stored pages, links and near-duplicates as JSON
//	stats     Show the stored crawl counters
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/npovsic/IEPS-prvi-seminar/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "crawl":
		if err := runCrawl(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if err := runExport(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "stats":
		if err := runStats(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Printf("crawler %s\n", version.CurrentVersion)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`crawler - polite web crawler for the gov.si domain

Usage:
  crawler <command> [flags]

Commands:
  crawl     Start a crawl, or resume one against an existing database
  export    Export stored pages, links and near-duplicates as JSON
  stats     Show the stored crawl counters
  version   Show version information
  help      Show this help message

Examples:
  # Crawl from a config file
  crawler crawl --config crawler.yaml

  # Crawl with inline settings and seed URLs
  crawler crawl --suffix .gov.si --workers 8 https://www.gov.si/ https://evem.gov.si/

  # Resume an interrupted crawl: rerun against the same database
  crawler crawl --config crawler.yaml

  # Export the stored graph for visualization
  crawler export --output ./export

  # Report near-duplicate candidates
  crawler export --similar --output ./export

  # Show what is in the database
  crawler stats

Use "crawler <command> --help" for more information about a command.`)
}
