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
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMockTransport_RegisterHTML(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/"
	html := `<html><head><title>Test Page</title></head><body>Content</body></html>`

	mock.RegisterHTML(url, html)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		t.Errorf("Expected Content-Type to contain 'text/html', got '%s'", contentType)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != html {
		t.Errorf("Expected body '%s', got '%s'", html, string(body))
	}
}

func TestMockTransport_RegisterRobots(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/robots.txt"
	robots := "User-agent: *\nDisallow: /private"

	mock.RegisterRobots(url, robots)

	req, _ := http.NewRequest("GET", url, nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/plain" {
		t.Errorf("Expected Content-Type 'text/plain', got '%s'", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != robots {
		t.Errorf("Expected robots body back, got '%s'", string(body))
	}
}

func TestMockTransport_RegisterSitemap(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/sitemap.xml"
	sitemap := `<urlset><url><loc>https://www.gov.si/assistance</loc></url></urlset>`

	mock.RegisterSitemap(url, sitemap)

	req, _ := http.NewRequest("GET", url, nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "application/xml" {
		t.Errorf("Expected Content-Type 'application/xml', got '%s'", got)
	}
}

func TestMockTransport_RegisterBinary(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/doc.pdf"
	data := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF}

	mock.RegisterBinary(url, "application/pdf", data)

	req, _ := http.NewRequest("GET", url, nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Expected Content-Type 'application/pdf', got '%s'", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, data) {
		t.Errorf("Binary body was altered: %v", body)
	}
}

func TestMockTransport_RegisterError(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/error"
	expectedErr := errors.New("network timeout")

	mock.RegisterError(url, expectedErr)

	req, _ := http.NewRequest("GET", url, nil)
	_, err := mock.RoundTrip(req)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if err.Error() != expectedErr.Error() {
		t.Errorf("Expected error '%s', got '%s'", expectedErr.Error(), err.Error())
	}
}

func TestMockTransport_RegisterPattern(t *testing.T) {
	mock := NewMockTransport()

	err := mock.RegisterPattern(`^https://www\.gov\.si/news/.*$`, &MockResponse{
		StatusCode: 200,
		Body:       "<html>news</html>",
		Headers:    http.Header{"Content-Type": []string{"text/html"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, url := range []string{
		"https://www.gov.si/news/2024",
		"https://www.gov.si/news/2024/elections",
	} {
		req, _ := http.NewRequest("GET", url, nil)
		resp, err := mock.RoundTrip(req)
		if err != nil {
			t.Fatalf("Error for URL %s: %v", url, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("URL %s: Expected status 200, got %d", url, resp.StatusCode)
		}
	}

	// Unregistered URLs come back as 404.
	req, _ := http.NewRequest("GET", "https://www.gov.si/other", nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 for non-matching URL, got %d", resp.StatusCode)
	}
}

func TestMockTransport_Delay(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/slow"

	mock.RegisterResponse(url, &MockResponse{
		StatusCode: 200,
		Body:       "Slow response",
		Delay:      100 * time.Millisecond,
	})

	req, _ := http.NewRequest("GET", url, nil)
	start := time.Now()
	resp, err := mock.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if elapsed < 100*time.Millisecond {
		t.Errorf("Expected delay of at least 100ms, got %v", elapsed)
	}
}

func TestMockTransport_RequestLog(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://www.gov.si/", "<html>home</html>")

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("GET", "https://www.gov.si/", nil)
		resp, err := mock.RoundTrip(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	req, _ := http.NewRequest("GET", "https://www.gov.si/missing", nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := mock.RequestCount("https://www.gov.si/"); got != 2 {
		t.Errorf("Expected 2 requests to the home page, got %d", got)
	}
	requests := mock.Requests()
	if len(requests) != 3 {
		t.Fatalf("Expected 3 logged requests, got %d", len(requests))
	}
	if requests[2] != "https://www.gov.si/missing" {
		t.Errorf("Expected the 404 request to be logged last, got %v", requests)
	}
}

func TestMockTransport_Fallback(t *testing.T) {
	mock := NewMockTransport()
	fallbackMock := NewMockTransport()

	fallbackMock.RegisterHTML("https://podatki.gov.si/", "<html>Fallback</html>")
	mock.SetFallback(fallbackMock)
	mock.RegisterHTML("https://www.gov.si/", "<html>Main</html>")

	req, _ := http.NewRequest("GET", "https://www.gov.si/", nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "<html>Main</html>" {
		t.Errorf("Expected main mock response, got '%s'", string(body))
	}

	req, _ = http.NewRequest("GET", "https://podatki.gov.si/", nil)
	resp, err = mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "<html>Fallback</html>" {
		t.Errorf("Expected fallback response, got '%s'", string(body))
	}
}

func TestMockTransport_Reset(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/"

	mock.RegisterHTML(url, "<html>Test</html>")
	req, _ := http.NewRequest("GET", url, nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	mock.Reset()

	req, _ = http.NewRequest("GET", url, nil)
	resp, err = mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 after reset, got %d", resp.StatusCode)
	}
	if len(mock.Requests()) != 1 {
		t.Errorf("Expected the request log to restart after reset, got %v", mock.Requests())
	}
}

func TestMockTransport_WithFetcher(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://www.gov.si/", "<html><body>dom</body></html>")

	f := NewFetcher()
	f.Client.Transport = mock

	resp, err := f.Get(context.Background(), "https://www.gov.si/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.ContentType() != "text/html" {
		t.Errorf("Expected content type text/html, got %q", resp.ContentType())
	}
	if !strings.Contains(string(resp.Body), "dom") {
		t.Errorf("Unexpected body %q", resp.Body)
	}
}

func TestMockTransport_InvalidPattern(t *testing.T) {
	mock := NewMockTransport()

	err := mock.RegisterPattern(`[invalid(regex`, &MockResponse{
		StatusCode: 200,
		Body:       "test",
	})
	if err == nil {
		t.Error("Expected error for invalid regex pattern, got nil")
	}
}

func TestMockTransport_DefaultStatusCode(t *testing.T) {
	mock := NewMockTransport()
	url := "https://www.gov.si/"

	mock.RegisterResponse(url, &MockResponse{Body: "test"})

	req, _ := http.NewRequest("GET", url, nil)
	resp, err := mock.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("Expected default status code 200, got %d", resp.StatusCode)
	}
}
