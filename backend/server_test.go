// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/c2FmZQ/storage"
)

type listResponse struct {
	Data []Site `json:"data"`
	Meta struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"meta"`
}

func newTestHandler(t *testing.T, fixture string) (*SiteStore, http.Handler) {
	t.Helper()
	dir := t.TempDir()
	sites, handler, err := NewServerHandler(Options{
		DataDir: dir,
		Storage: storage.New(dir, nil),
		Fixture: fixture,
	})
	if err != nil {
		t.Fatalf("NewServerHandler: %v", err)
	}
	return sites, handler
}

func TestHTTPHandlers(t *testing.T) {
	sites, handler := newTestHandler(t, "ManySites")

	makeRequest := func(method, url, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, url, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("ListSites", func(t *testing.T) {
		w := makeRequest("GET", "/api/sites", "")
		if w.Code != http.StatusOK {
			t.Fatalf("list failed: %d - %s", w.Code, w.Body.String())
		}
		var resp listResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if resp.Meta.Total != ManySiteCount || resp.Meta.Limit != defaultPageSize || len(resp.Data) != defaultPageSize {
			t.Errorf("meta = %+v, len = %d", resp.Meta, len(resp.Data))
		}
		if resp.Data[0].Name != "Demo Site" {
			t.Errorf("first site = %q", resp.Data[0].Name)
		}
		if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-cache") {
			t.Errorf("Cache-Control = %q", got)
		}
	})

	t.Run("ListSitesSearchAndPaging", func(t *testing.T) {
		w := makeRequest("GET", "/api/sites?q=SiteTes&offset=5&limit=5", "")
		var resp listResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Meta.Total != ManySiteCount-1 || resp.Meta.Offset != 5 {
			t.Errorf("meta = %+v", resp.Meta)
		}
		if len(resp.Data) != 5 || resp.Data[0].Name != "SiteTest7" {
			t.Errorf("data = %+v", resp.Data)
		}

		w = makeRequest("GET", "/api/sites?q=RanDoMSearChTerm", "")
		resp = listResponse{}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Meta.Total != 0 || len(resp.Data) != 0 {
			t.Errorf("no-result search = %+v", resp)
		}
		if !strings.Contains(w.Body.String(), `"data":[]`) {
			t.Errorf("empty page must encode as []: %s", w.Body.String())
		}
	})

	t.Run("GetSite", func(t *testing.T) {
		w := makeRequest("GET", "/api/sites/23", "")
		if w.Code != http.StatusOK {
			t.Fatalf("get failed: %d", w.Code)
		}
		var site Site
		json.Unmarshal(w.Body.Bytes(), &site)
		if site.ID != 23 || site.Name != "SiteTest23" {
			t.Errorf("site = %+v", site)
		}

		if w := makeRequest("GET", "/api/sites/999", ""); w.Code != http.StatusNotFound {
			t.Errorf("missing site: %d", w.Code)
		}
		if w := makeRequest("GET", "/api/sites/abc", ""); w.Code != http.StatusBadRequest {
			t.Errorf("bad id: %d", w.Code)
		}
	})

	t.Run("CreateAndUpdateSite", func(t *testing.T) {
		w := makeRequest("POST", "/api/sites", `{"id":5,"name":"Shop","urls":["https://shop.example.com"],"ecommerce":true}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("create failed: %d - %s", w.Code, w.Body.String())
		}
		var created Site
		json.Unmarshal(w.Body.Bytes(), &created)
		if created.ID != ManySiteCount+1 {
			t.Errorf("created ID = %d, client IDs must be ignored", created.ID)
		}

		w = makeRequest("POST", "/api/sites/23", `{"name":"Renamed","urls":["http://site23.example.com"],"timezone":"Europe/Paris"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("update failed: %d - %s", w.Code, w.Body.String())
		}
		got, _ := sites.Get(23)
		if got.Name != "Renamed" || got.Timezone != "Europe/Paris" {
			t.Errorf("stored = %+v", got)
		}

		if w := makeRequest("POST", "/api/sites/23", `{"name":"","urls":[]}`); w.Code != http.StatusBadRequest {
			t.Errorf("invalid update: %d", w.Code)
		}
		if w := makeRequest("POST", "/api/sites/999", `{"name":"X","urls":["http://x.example.com"]}`); w.Code != http.StatusNotFound {
			t.Errorf("update of missing site: %d", w.Code)
		}
		if w := makeRequest("POST", "/api/sites", `{not json`); w.Code != http.StatusBadRequest {
			t.Errorf("bad json: %d", w.Code)
		}
		if w := makeRequest("DELETE", "/api/sites/23", ""); w.Code != http.StatusMethodNotAllowed {
			t.Errorf("DELETE: %d", w.Code)
		}
	})

	t.Run("GlobalSettings", func(t *testing.T) {
		w := makeRequest("GET", "/api/global-settings", "")
		var gs GlobalSettings
		json.Unmarshal(w.Body.Bytes(), &gs)
		if gs.ExclusionType != ExclusionCommonSession {
			t.Errorf("default exclusion = %q", gs.ExclusionType)
		}

		w = makeRequest("POST", "/api/global-settings", `{"exclusionType":"custom","customParameters":["foo","bar",""]}`)
		if w.Code != http.StatusOK {
			t.Fatalf("save failed: %d - %s", w.Code, w.Body.String())
		}
		saved := sites.GlobalSettings()
		if saved.ExclusionType != ExclusionCustom || len(saved.CustomParameters) != 2 {
			t.Errorf("saved = %+v", saved)
		}
		var resp struct {
			ExclusionType      string   `json:"exclusionType"`
			ExcludedParameters []string `json:"excludedParameters"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.ExclusionType != ExclusionCustom {
			t.Errorf("response exclusionType = %q", resp.ExclusionType)
		}
		if n := len(resp.ExcludedParameters); n != len(CommonSessionParameters)+2 || resp.ExcludedParameters[n-1] != "bar" {
			t.Errorf("excludedParameters = %q", resp.ExcludedParameters)
		}

		if w := makeRequest("POST", "/api/global-settings", `{"defaultTimezone":"Nowhere/Land"}`); w.Code != http.StatusBadRequest {
			t.Errorf("bad timezone: %d", w.Code)
		}

		if w := makeRequest("POST", "/api/global-settings", `{"exclusionType":"nope"}`); w.Code != http.StatusBadRequest {
			t.Errorf("bad exclusion type: %d", w.Code)
		}
	})

	t.Run("RecommendedParameters", func(t *testing.T) {
		w := makeRequest("GET", "/api/recommended-parameters", "")
		if w.Code != http.StatusOK {
			t.Fatalf("failed: %d", w.Code)
		}
		var resp struct {
			Common      []string `json:"common"`
			Recommended []string `json:"recommended"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if len(resp.Common) != len(CommonSessionParameters) || len(resp.Recommended) != len(RecommendedParameters) {
			t.Errorf("got %d common, %d recommended", len(resp.Common), len(resp.Recommended))
		}

		etag := w.Header().Get("ETag")
		req := httptest.NewRequest("GET", "/api/recommended-parameters", nil)
		req.Header.Set("If-None-Match", etag)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusNotModified {
			t.Errorf("conditional GET: %d", w.Code)
		}
	})

	t.Run("Pages", func(t *testing.T) {
		w := makeRequest("GET", "/?module=SitesManager&action=index&idSite=1&period=day&date=yesterday&showaddsite=false", "")
		if w.Code != http.StatusOK {
			t.Fatalf("index page: %d", w.Code)
		}
		body := w.Body.String()
		for _, want := range []string{`class="SitesManager"`, `data-action="index"`, "/static/sitesmanager.js"} {
			if !strings.Contains(body, want) {
				t.Errorf("index page missing %q", want)
			}
		}
		if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'self'") {
			t.Errorf("CSP = %q", csp)
		}
		if w.Header().Get("X-Frame-Options") != "DENY" {
			t.Errorf("Missing X-Frame-Options header")
		}

		w = makeRequest("GET", "/index.php?module=SitesManager&action=globalSettings", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `data-action="globalSettings"`) {
			t.Errorf("global settings page: %d", w.Code)
		}

		for _, path := range []string{"/?module=Other", "/?module=SitesManager&action=nope", "/missing"} {
			if w := makeRequest("GET", path, ""); w.Code != http.StatusNotFound {
				t.Errorf("%s: %d, want 404", path, w.Code)
			}
		}
	})

	t.Run("StaticAssets", func(t *testing.T) {
		w := makeRequest("GET", "/static/sitesmanager.js", "")
		if w.Code != http.StatusOK {
			t.Fatalf("js: %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/javascript" {
			t.Errorf("Content-Type = %q", ct)
		}
		w = makeRequest("GET", "/static/sitesmanager.css", "")
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
			t.Errorf("Content-Type = %q", ct)
		}
	})
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query         string
		limit, offset int
		q             string
	}{
		{"", defaultPageSize, 0, ""},
		{"limit=10&offset=20&q=foo", 10, 20, "foo"},
		{"limit=0", defaultPageSize, 0, ""},
		{"limit=-4&offset=-1", defaultPageSize, 0, ""},
		{"limit=5000", maxPageSize, 0, ""},
		{"limit=abc&offset=xyz", defaultPageSize, 0, ""},
	}
	for _, tc := range tests {
		req := httptest.NewRequest("GET", "/api/sites?"+tc.query, nil)
		limit, offset, q := parsePagination(req)
		if limit != tc.limit || offset != tc.offset || q != tc.q {
			t.Errorf("parsePagination(%q) = %d, %d, %q", tc.query, limit, offset, q)
		}
	}
}

func TestUnknownFixture(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := NewServerHandler(Options{DataDir: dir, Fixture: "Nope"}); err == nil {
		t.Error("expected error for unknown fixture")
	}
}

func TestStartServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	dir := t.TempDir()
	srv, err := StartServer(Options{
		DataDir:  dir,
		Storage:  storage.New(dir, nil),
		Listener: ln,
		Fixture:  "ManySites",
	})
	if err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	}()
	if srv.Sites().Len() != ManySiteCount {
		t.Errorf("Len = %d", srv.Sites().Len())
	}

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/sites?limit=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Demo Site") {
		t.Errorf("GET /api/sites: %d %s", resp.StatusCode, body)
	}
}
