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
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/c2FmZQ/storage"
	"github.com/ttbt-io/sitesmanager-ui/backend/search"
)

func generateETag(data []byte) string {
	return fmt.Sprintf("\"%x\"", sha256.Sum256(data))
}

func parsePagination(r *http.Request) (int, int, string) {
	limit := defaultPageSize
	offset := 0
	query := r.URL.Query().Get("q")

	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil {
			offset = val
		}
	}

	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset, query
}

// Options represent server options.
type Options struct {
	Addr      string
	Cert      *tls.Certificate
	DataDir   string
	Debug     bool
	Storage   *storage.Storage
	SiteStore *SiteStore
	Listener  net.Listener
	// Fixture, when set, is applied before the server starts.
	Fixture string
}

// Server represents the running server instance.
type Server struct {
	httpServer *http.Server
	sites      *SiteStore
}

// Sites returns the server's site store.
func (s *Server) Sites() *SiteStore {
	return s.sites
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// StartServer starts the web server and registers the API handlers.
func StartServer(opts Options) (*Server, error) {
	sites, handler, err := NewServerHandler(opts)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}
	if opts.Cert != nil {
		httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*opts.Cert},
		}
	}

	listener := opts.Listener
	if listener == nil {
		if listener, err = net.Listen("tcp", opts.Addr); err != nil {
			return nil, fmt.Errorf("listen %s: %w", opts.Addr, err)
		}
	}

	go func() {
		var err error
		if httpServer.TLSConfig != nil {
			log.Printf("Starting HTTPS server on %s...", listener.Addr())
			err = httpServer.ServeTLS(listener, "", "")
		} else {
			log.Printf("Starting HTTP server on %s...", listener.Addr())
			err = httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, net.ErrClosed) && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return &Server{
		httpServer: httpServer,
		sites:      sites,
	}, nil
}

// NewServerHandler creates the site store and the HTTP handler for the server.
func NewServerHandler(opts Options) (*SiteStore, http.Handler, error) {
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.Storage == nil {
		opts.Storage = storage.New(opts.DataDir, nil)
	}

	sites := opts.SiteStore
	if sites == nil {
		var err error
		if sites, err = NewSiteStore(opts.Storage); err != nil {
			return nil, nil, err
		}
	}
	if opts.Fixture != "" {
		if err := ApplyFixture(sites, opts.Fixture); err != nil {
			return nil, nil, err
		}
	}

	debugf := func(string, ...any) {}
	if opts.Debug {
		debugf = func(f string, a ...any) {
			log.Printf("[DEBUG BACKEND] "+f, a...)
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/sites", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			limit, offset, query := parsePagination(r)
			page, total, offset := sites.List(search.Parse(query), offset, limit)
			debugf("list sites q=%q offset=%d limit=%d total=%d", query, offset, limit, total)

			var resp struct {
				Data []Site `json:"data"`
				Meta struct {
					Total  int `json:"total"`
					Offset int `json:"offset"`
					Limit  int `json:"limit"`
				} `json:"meta"`
			}
			resp.Data = page
			resp.Meta.Total = total
			resp.Meta.Offset = offset
			resp.Meta.Limit = limit
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var site Site
			if !decodeJSON(w, r, &site) {
				return
			}
			site.ID = 0
			saved, err := sites.Save(site)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, saved)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/sites/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/sites/"))
		if err != nil || id <= 0 {
			http.Error(w, "Invalid site id", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			site, err := sites.Get(id)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, site)
		case http.MethodPost:
			if _, err := sites.Get(id); err != nil {
				writeStoreError(w, err)
				return
			}
			var site Site
			if !decodeJSON(w, r, &site) {
				return
			}
			site.ID = id
			saved, err := sites.Save(site)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			debugf("updated site %d", id)
			writeJSON(w, http.StatusOK, newSettingsResponse(saved))
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/global-settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, newSettingsResponse(sites.GlobalSettings()))
		case http.MethodPost:
			var gs GlobalSettings
			if !decodeJSON(w, r, &gs) {
				return
			}
			saved, err := sites.SaveGlobalSettings(gs)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			debugf("updated global settings: %s", saved.ExclusionType)
			writeJSON(w, http.StatusOK, newSettingsResponse(saved))
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	recommended, err := json.Marshal(map[string][]string{
		"common":      CommonSessionParameters,
		"recommended": RecommendedParameters,
	})
	if err != nil {
		return nil, nil, err
	}
	recommendedETag := generateETag(recommended)
	mux.HandleFunc("/api/recommended-parameters", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("ETag", recommendedETag)
		if r.Header.Get("If-None-Match") == recommendedETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(recommended)
	})

	mux.Handle("/static/", contentTypeMiddleware(http.StripPrefix("/static/", http.FileServer(staticFiles()))))
	mux.HandleFunc("/", pageHandler)

	handler := http.Handler(mux)
	handler = loggingMiddleware(handler)
	handler = securityMiddleware(handler)
	handler = cacheControlMiddleware(handler)

	return sites, handler, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// settingsResponse is GlobalSettings plus the parameters they exclude.
type settingsResponse struct {
	GlobalSettings
	ExcludedParameters []string `json:"excludedParameters"`
}

func newSettingsResponse(gs GlobalSettings) settingsResponse {
	return settingsResponse{GlobalSettings: gs, ExcludedParameters: gs.ExcludedParameters()}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSiteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidSite), errors.Is(err, ErrInvalidSettings),
		errors.Is(err, ErrInvalidExclusion), errors.Is(err, ErrInvalidCustomParams):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("store error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// cacheControlMiddleware keeps API responses out of caches.
func cacheControlMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "private, no-cache, no-transform")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=300, proxy-revalidate, no-transform")
		}
		next.ServeHTTP(w, r)
	})
}

// securityMiddleware adds HTTP security headers to responses.
func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: blob:")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// contentTypeMiddleware ensures that files are served with the correct MIME type.
func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch filepath.Ext(r.URL.Path) {
		case ".js":
			w.Header().Set("Content-Type", "application/javascript")
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		case ".png":
			w.Header().Set("Content-Type", "image/png")
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs the method and URL path of every incoming HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
