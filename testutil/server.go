// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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

// Package testutil hosts the fixture site that crawl tests run against:
// a small government-portal lookalike with a robots.txt, a sitemap,
// duplicate pages, an image, a binary document and a broken endpoint.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
)

// Fixture payloads shared across tests
var (
	IndexPage = []byte(`<!DOCTYPE html>
<html>
<head><title>Portal</title></head>
<body>
<h1>Osrednje spletno mesto drzavne uprave</h1>
<p>Portal zdruzuje informacije o storitvah, obvestilih in organih drzavne uprave na enem mestu.</p>
<nav>
<a href="/storitve">Storitve</a>
<a href="/zasebno/skrito">Interno</a>
<a href="/prekinjena">Obremenjena stran</a>
<a href="/porocilo.pdf">Letno porocilo</a>
<a href="https://example.com/zunanja">Zunanja povezava</a>
<a href="#vrh">Na vrh</a>
<a href="mailto:info@gov.si">Pisite nam</a>
</nav>
<img src="/slika.png" alt="Grb">
</body>
</html>
`)

	ServicesPage = []byte(`<!DOCTYPE html>
<html>
<head><title>Storitve</title></head>
<body>
<h1>Seznam storitev za drzavljane</h1>
<p>Vloge, obrazci in elektronske storitve za urejanje dokumentov, davkov in socialnih pravic so zbrani na tej strani.</p>
<a href="/">Nazaj na portal</a>
<a href="/podvojena">Arhiv storitev</a>
</body>
</html>
`)

	NewsPage = []byte(`<!DOCTYPE html>
<html>
<head><title>Novice</title></head>
<body>
<h1>Najnovejse novice in obvestila</h1>
<p>Ta stran je navedena samo v sitemapu in nanjo ne kaze nobena povezava s portala.</p>
<a href="/">Portal</a>
</body>
</html>
`)

	HiddenPage = []byte(`<!DOCTYPE html>
<html>
<head><title>Interno</title></head>
<body>
<h1>Interna navodila</h1>
<p>Ta vsebina je v robots.txt oznacena kot prepovedana in je vljuden pajek nikoli ne prenese.</p>
</body>
</html>
`)

	PNGData = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 1, 0, 0, 0, 2}
	PDFData = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
)

// NewUnstartedTestServer creates an unstarted HTTP test server hosting the
// fixture site:
//
//	/                 links everything together
//	/storitve         a normal page
//	/podvojena        byte-identical to /storitve, which links to it;
//	                  discovering it through its original keeps the
//	                  duplicate verdict stable however many workers run
//	/iz-sitemapa      reachable only through the sitemap
//	/zasebno/skrito   disallowed by robots.txt
//	/slika.png        an image
//	/porocilo.pdf     a binary document
//	/prekinjena       drops the connection mid-request
//
// robots.txt and the sitemap reference the server's own address, so they
// work on whatever port the test server ends up listening on.
func NewUnstartedTestServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "User-agent: *\nDisallow: /zasebno\nSitemap: http://%s/sitemap.xml\n", r.Host)
	})

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://%s/iz-sitemapa</loc></url>
</urlset>
`, r.Host)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(IndexPage)
	})

	servicesPage := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(ServicesPage)
	}
	mux.HandleFunc("/storitve", servicesPage)
	mux.HandleFunc("/podvojena", servicesPage)

	mux.HandleFunc("/iz-sitemapa", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(NewsPage)
	})

	mux.HandleFunc("/zasebno/skrito", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(HiddenPage)
	})

	mux.HandleFunc("/slika.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(PNGData)
	})

	mux.HandleFunc("/porocilo.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(PDFData)
	})

	mux.HandleFunc("/prekinjena", func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "hijacking not supported", http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		conn.Close()
	})

	return httptest.NewUnstartedServer(mux)
}

// NewTestServer creates and starts the fixture site server
func NewTestServer() *httptest.Server {
	srv := NewUnstartedTestServer()
	srv.Start()
	return srv
}
