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
	"net/url"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
	"github.com/npovsic/IEPS-prvi-seminar/internal/app"
	"github.com/npovsic/IEPS-prvi-seminar/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// pageNodeSize is the fixed leaf size the D3 visualization expects.
const pageNodeSize = 5

// defaultSimilarThreshold is the MinHash estimate above which a page
// pair appears in the near-duplicate report. It sits below the crawl's
// duplicate threshold, so the report surfaces pages that were kept but
// are still close.
const defaultSimilarThreshold = 0.8

// Exporter writes the stored crawl as JSON files for visualization
type Exporter struct {
	store       *store.Store
	outputDir   string
	linksDomain string
	similar     bool
	threshold   float64
}

// Export writes pages.json, links.json and, when requested, the
// similar.json near-duplicate report
func (e *Exporter) Export() error {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	urls, err := e.store.PageURLMap()
	if err != nil {
		return fmt.Errorf("failed to load page URLs: %v", err)
	}

	if err := e.exportPages(); err != nil {
		return fmt.Errorf("failed to export pages: %v", err)
	}
	if err := e.exportLinks(urls); err != nil {
		return fmt.Errorf("failed to export links: %v", err)
	}
	if e.similar {
		if err := e.exportSimilar(urls); err != nil {
			return fmt.Errorf("failed to export near-duplicates: %v", err)
		}
	}
	return nil
}

// pageNode is one element of the site hierarchy in pages.json: the
// root node holds the sites, each site holds its pages.
type pageNode struct {
	Name     string     `json:"name"`
	Type     string     `json:"type,omitempty"`
	Size     int        `json:"size,omitempty"`
	Children []pageNode `json:"children"`
}

func (e *Exporter) exportPages() error {
	sites, err := e.store.AllSites()
	if err != nil {
		return err
	}

	root := pageNode{Name: "Sites", Children: make([]pageNode, 0, len(sites))}
	for _, site := range sites {
		pages, err := e.store.PagesForSite(site.ID)
		if err != nil {
			return err
		}
		node := pageNode{Name: site.Domain, Children: make([]pageNode, 0, len(pages))}
		for _, p := range pages {
			node.Children = append(node.Children, pageNode{
				Name:     p.URL,
				Type:     p.PageTypeCode,
				Size:     pageNodeSize,
				Children: make([]pageNode, 0),
			})
		}
		root.Children = append(root.Children, node)
	}

	return e.writeJSON("pages.json", root)
}

// linkEdge is one edge of the exported link graph
type linkEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
	Type   string `json:"type"`
}

func (e *Exporter) exportLinks(urls map[uint]string) error {
	var links []store.Link
	var err error
	if e.linksDomain != "" {
		links, err = e.domainLinks()
	} else {
		links, err = e.store.AllLinks()
	}
	if err != nil {
		return err
	}

	edges := make([]linkEdge, 0, len(links))
	for _, l := range links {
		source, ok := urls[l.FromPage]
		if !ok {
			continue
		}
		target, ok := urls[l.ToPage]
		if !ok {
			continue
		}
		edges = append(edges, linkEdge{Source: source, Target: target, Weight: 1})
	}

	output := struct {
		Links []linkEdge `json:"links"`
	}{Links: edges}
	return e.writeJSON("links.json", output)
}

// domainLinks resolves the --links-domain filter against the stored
// site keys. An exact site key or a bare hostname both match; a host
// crawled over both schemes contributes both sites.
func (e *Exporter) domainLinks() ([]store.Link, error) {
	sites, err := e.store.AllSites()
	if err != nil {
		return nil, err
	}

	var links []store.Link
	matched := false
	for _, site := range sites {
		if site.Domain != e.linksDomain && !hostMatches(site.Domain, e.linksDomain) {
			continue
		}
		matched = true
		part, err := e.store.LinksForDomain(site.Domain)
		if err != nil {
			return nil, err
		}
		links = append(links, part...)
	}
	if !matched {
		return nil, fmt.Errorf("no stored site matches domain %q", e.linksDomain)
	}
	return links, nil
}

func hostMatches(siteKey, domain string) bool {
	u, err := url.Parse(siteKey)
	if err != nil {
		return false
	}
	return u.Hostname() == domain
}

// similarPair is one reported near-duplicate candidate
type similarPair struct {
	PageA      string  `json:"page_a"`
	PageB      string  `json:"page_b"`
	Similarity float64 `json:"similarity"`
}

// exportSimilar estimates pairwise similarity from the stored MinHash
// sketches and reports the pairs above the threshold. Exact duplicates
// never show up here; they were never stored as pages of their own.
func (e *Exporter) exportSimilar(urls map[uint]string) error {
	signatures, err := e.store.AllSignatures()
	if err != nil {
		return err
	}

	sketches := make([][]uint64, len(signatures))
	for i := range signatures {
		sketches[i] = signatures[i].MinHashValues()
	}

	pairs := make([]similarPair, 0)
	for i := range signatures {
		if sketches[i] == nil {
			continue
		}
		for j := i + 1; j < len(signatures); j++ {
			estimate := crawler.MinHashEstimate(sketches[i], sketches[j])
			if estimate < e.threshold {
				continue
			}
			pairs = append(pairs, similarPair{
				PageA:      urls[signatures[i].PageID],
				PageB:      urls[signatures[j].PageID],
				Similarity: estimate,
			})
		}
	}

	output := struct {
		Threshold float64       `json:"threshold"`
		Pairs     []similarPair `json:"pairs"`
	}{Threshold: e.threshold, Pairs: pairs}
	return e.writeJSON("similar.json", output)
}

func (e *Exporter) writeJSON(filename string, payload any) error {
	f, err := os.Create(filepath.Join(e.outputDir, filename))
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// runExport handles the export command
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	var dbPath string
	var output string
	var linksDomain string
	var similar bool
	var threshold float64

	fs.StringVar(&dbPath, "db", app.DefaultConfig().Database.Path, "SQLite database path")
	fs.StringVar(&output, "output", ".", "Output directory")
	fs.StringVar(&output, "o", ".", "Output directory (shorthand)")
	fs.StringVar(&linksDomain, "links-domain", "", "Only export links whose source page belongs to this domain")
	fs.BoolVar(&similar, "similar", false, "Also report near-duplicate page pairs from their MinHash sketches")
	fs.Float64Var(&threshold, "similar-threshold", defaultSimilarThreshold, "Similarity estimate cutoff for the near-duplicate report")

	fs.Usage = func() {
		fmt.Println(`Usage: crawler export [flags]

Export the stored crawl as JSON: pages.json holds the site/page
hierarchy, links.json the link graph, and similar.json (with
--similar) the near-duplicate candidates.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # Export everything as JSON
  crawler export -o ./export

  # Only the link graph of one site
  crawler export --links-domain www.gov.si -o ./export

  # Include the near-duplicate report
  crawler export --similar --similar-threshold 0.9 -o ./export`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	expanded, err := homedir.Expand(dbPath)
	if err != nil {
		return fmt.Errorf("expanding database path: %v", err)
	}
	st, err := store.NewStore(expanded, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer st.Close()

	exporter := &Exporter{
		store:       st,
		outputDir:   output,
		linksDomain: linksDomain,
		similar:     similar,
		threshold:   threshold,
	}

	fmt.Printf("Exporting %s to %s...\n", expanded, output)

	if err := exporter.Export(); err != nil {
		return err
	}

	fmt.Println("Export complete!")
	return nil
}
