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

package store

import (
	"testing"
	"time"

	crawler "github.com/npovsic/IEPS-prvi-seminar"
)

// buildExportCorpus crawls a tiny fixed corpus through the store API:
// one HTML page that discovered three URLs, of which one failed, one
// became a stored PDF on a second site and one is still pending.
func buildExportCorpus(t *testing.T, s *Store) (siteA, siteB *crawler.Site) {
	t.Helper()

	siteA, err := s.CreateSite("www.gov.si", nil, nil)
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}
	siteB, err = s.CreateSite("podatki.gov.si", nil, nil)
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}

	s.EnqueueSeed("https://www.gov.si/")
	root, _ := s.LeaseFrontierPage()
	html := "<html><body>Prva stran</body></html>"
	hash := "feed0"
	status := 200
	err = s.CompletePage(root.ID, &crawler.PageResult{
		SiteID:         &siteA.ID,
		PageType:       crawler.PageTypeHTML,
		HTMLContent:    &html,
		HashContent:    &hash,
		HTTPStatusCode: &status,
		AccessedTime:   time.Unix(1700000000, 0),
	})
	if err != nil {
		t.Fatalf("CompletePage: %v", err)
	}

	for _, u := range []string{
		"https://www.gov.si/pokvarjena",
		"https://podatki.gov.si/porocilo.pdf",
		"https://www.gov.si/v-vrsti",
	} {
		if err := s.EnqueueDiscovered(root.ID, u); err != nil {
			t.Fatalf("EnqueueDiscovered(%s): %v", u, err)
		}
	}

	broken, _ := s.LeaseFrontierPage()
	if err := s.CompletePage(broken.ID, completedResult(&siteA.ID, crawler.PageTypeError)); err != nil {
		t.Fatalf("CompletePage: %v", err)
	}

	pdf, _ := s.LeaseFrontierPage()
	if err := s.CompletePage(pdf.ID, completedResult(&siteB.ID, crawler.PageTypeBinary)); err != nil {
		t.Fatalf("CompletePage: %v", err)
	}
	if err := s.SavePageData(pdf.ID, "PDF", []byte("%PDF!")); err != nil {
		t.Fatalf("SavePageData: %v", err)
	}

	return siteA, siteB
}

func TestExportCounts(t *testing.T) {
	s := newTestStore(t, DefaultOptions())
	buildExportCorpus(t, s)

	counts, err := s.CountPagesByType()
	if err != nil {
		t.Fatalf("CountPagesByType: %v", err)
	}
	want := map[string]int64{
		crawler.PageTypeHTML:     1,
		crawler.PageTypeError:    1,
		crawler.PageTypeBinary:   1,
		crawler.PageTypeFrontier: 1,
	}
	for pageType, n := range want {
		if counts[pageType] != n {
			t.Errorf("%s = %d, want %d", pageType, counts[pageType], n)
		}
	}

	if total, _ := s.TotalPages(); total != 4 {
		t.Errorf("total pages = %d", total)
	}
	if depth, _ := s.FrontierDepth(); depth != 1 {
		t.Errorf("frontier depth = %d", depth)
	}
	if links, _ := s.CountLinks(); links != 3 {
		t.Errorf("links = %d", links)
	}
	if sites, _ := s.CountSites(); sites != 2 {
		t.Errorf("sites = %d", sites)
	}
	if stored, _ := s.BinaryBytesStored(); stored != 5 {
		t.Errorf("binary bytes = %d", stored)
	}
	if stored, _ := s.ImageBytesStored(); stored != 0 {
		t.Errorf("image bytes = %d", stored)
	}
}

func TestExportPagesAndLinks(t *testing.T) {
	s := newTestStore(t, DefaultOptions())
	siteA, siteB := buildExportCorpus(t, s)

	sites, err := s.AllSites()
	if err != nil {
		t.Fatalf("AllSites: %v", err)
	}
	if len(sites) != 2 || sites[0].Domain != "www.gov.si" || sites[1].Domain != "podatki.gov.si" {
		t.Fatalf("sites = %+v", sites)
	}

	pagesA, err := s.PagesForSite(siteA.ID)
	if err != nil {
		t.Fatalf("PagesForSite: %v", err)
	}
	if len(pagesA) != 2 {
		t.Fatalf("site A pages = %d, want completed pages only", len(pagesA))
	}
	if pagesA[0].URL != "https://www.gov.si/" || pagesA[0].PageTypeCode != crawler.PageTypeHTML {
		t.Errorf("first page = %+v", pagesA[0])
	}
	if pagesA[0].HTMLContent != nil {
		t.Error("export listing should not load page content")
	}

	pagesB, err := s.PagesForSite(siteB.ID)
	if err != nil || len(pagesB) != 1 {
		t.Fatalf("site B pages = %v, %v", pagesB, err)
	}

	links, err := s.AllLinks()
	if err != nil {
		t.Fatalf("AllLinks: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("links = %d", len(links))
	}
	for _, link := range links {
		if link.FromPage != 1 {
			t.Errorf("edge %+v should start at the root page", link)
		}
	}

	fromA, err := s.LinksForDomain("www.gov.si")
	if err != nil || len(fromA) != 3 {
		t.Errorf("links from www.gov.si = %v, %v", fromA, err)
	}
	fromB, err := s.LinksForDomain("podatki.gov.si")
	if err != nil || len(fromB) != 0 {
		t.Errorf("links from podatki.gov.si = %v, %v", fromB, err)
	}
}

func TestExportSignatures(t *testing.T) {
	s := newTestStore(t, DefaultOptions())
	buildExportCorpus(t, s)

	shingles := crawler.ShingleSet(wordsText(60, nil), crawler.DefaultShingleSize)
	saveTestSignature(t, s, 1, shingles)

	signatures, err := s.AllSignatures()
	if err != nil {
		t.Fatalf("AllSignatures: %v", err)
	}
	if len(signatures) != 1 || signatures[0].PageID != 1 {
		t.Fatalf("signatures = %+v", signatures)
	}
	if signatures[0].HashLength != len(shingles) {
		t.Errorf("stored set size = %d, want %d", signatures[0].HashLength, len(shingles))
	}
}
