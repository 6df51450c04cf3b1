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
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strconv"
)

//go:embed templates/page.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Module actions served by the page handler.
const (
	ModuleSitesManager   = "SitesManager"
	ActionIndex          = "index"
	ActionGlobalSettings = "globalSettings"
)

type pageData struct {
	Title             string
	Action            string
	IDSite            int
	Period            string
	Date              string
	ShowAddSite       bool
	IndexURL          string
	GlobalSettingsURL string
}

func staticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("static assets: %v", err)
	}
	return http.FS(sub)
}

// pageHandler serves the HTML shell for ?module=SitesManager&action=...
func pageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" && r.URL.Path != "/index.php" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	module := q.Get("module")
	if module == "" {
		module = ModuleSitesManager
	}
	action := q.Get("action")
	if action == "" {
		action = ActionIndex
	}
	if module != ModuleSitesManager {
		http.Error(w, "Unknown module", http.StatusNotFound)
		return
	}

	data := pageData{
		Action: action,
		IDSite: 1,
		Period: "day",
		Date:   "yesterday",
	}
	switch action {
	case ActionIndex:
		data.Title = "Manage Measurables"
	case ActionGlobalSettings:
		data.Title = "Global websites settings"
	default:
		http.Error(w, "Unknown action", http.StatusNotFound)
		return
	}
	if v, err := strconv.Atoi(q.Get("idSite")); err == nil && v > 0 {
		data.IDSite = v
	}
	if v := q.Get("period"); v != "" {
		data.Period = v
	}
	if v := q.Get("date"); v != "" {
		data.Date = v
	}
	data.ShowAddSite, _ = strconv.ParseBool(q.Get("showaddsite"))
	data.IndexURL = pageURL(ActionIndex, data)
	data.GlobalSettingsURL = pageURL(ActionGlobalSettings, data)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("pageTemplate.Execute: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func pageURL(action string, d pageData) string {
	v := url.Values{}
	v.Set("module", ModuleSitesManager)
	v.Set("action", action)
	v.Set("idSite", strconv.Itoa(d.IDSite))
	v.Set("period", d.Period)
	v.Set("date", d.Date)
	return "/?" + v.Encode()
}
