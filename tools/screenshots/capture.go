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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/ttbt-io/sitesmanager-ui/backend"
	"github.com/ttbt-io/sitesmanager-ui/tools/e2ehelpers"
	"github.com/ttbt-io/sitesmanager-ui/visual"
	"github.com/ttbt-io/sitesmanager-ui/visual/baseline"
	"github.com/ttbt-io/sitesmanager-ui/visual/scenario"
)

// runCapture runs the Sites Manager pipeline in a remote Chrome and writes
// the report to out.
func runCapture(ctx context.Context, out io.Writer, cfg Config) (scenario.Report, error) {
	runID := uuid.NewString()
	log.Printf("Capture run %s", runID)

	baseURL := cfg.BaseURL
	if cfg.Serve {
		srv, err := startServer(cfg.ServeHost)
		if err != nil {
			return scenario.Report{}, err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Close(sctx); err != nil {
				log.Printf("Fixture server shutdown: %v", err)
			}
		}()
		baseURL = srv.URL
		log.Printf("Server started at %s", baseURL)
	}

	ctx, cancel := chromedp.NewRemoteAllocator(ctx, cfg.ChromeURL)
	defer cancel()
	ctx, cancel = chromedp.NewContext(ctx, chromedp.WithErrorf(log.Printf))
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := chromedp.Run(ctx,
		e2ehelpers.DisableCSSAnimations(),
		emulation.SetDeviceMetricsOverride(cfg.Width, cfg.Height, 1, false),
	); err != nil {
		return scenario.Report{}, fmt.Errorf("prepare browser: %w", err)
	}

	store := baseline.New(cfg.Dir, e2ehelpers.BaselinePrefix)
	if cfg.Update {
		store.Update = true
	}
	opts := cfg.Harness
	opts.DebugDir = filepath.Join(cfg.Dir, "debug", runID)
	h, err := visual.New(ctx, store, opts)
	if err != nil {
		return scenario.Report{}, err
	}

	pipeline := e2ehelpers.SitesManagerSuite(baseURL)
	log.Printf("Starting %d screenshot checks against %s (update=%v)...", len(pipeline.Scenarios), baseURL, store.Update)
	report, err := pipeline.Run(h)
	if err != nil {
		return report, err
	}
	fmt.Fprint(out, report.Summary())
	if report.Failed() {
		log.Printf("Debug screenshots in %s", opts.DebugDir)
	}
	return report, nil
}

// fixtureServer is the in-process app started by --serve.
type fixtureServer struct {
	URL     string
	dataDir string
	srv     *backend.Server
}

// startServer serves the ManySites fixture from a temporary data directory
// on a free port.
func startServer(host string) (*fixtureServer, error) {
	dataDir, err := os.MkdirTemp("", "sitesmanager-screenshots-")
	if err != nil {
		return nil, err
	}
	l, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		os.RemoveAll(dataDir)
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	srv, err := backend.StartServer(backend.Options{
		Listener: l,
		DataDir:  dataDir,
		Storage:  storage.New(dataDir, nil),
		Fixture:  "ManySites",
	})
	if err != nil {
		l.Close()
		os.RemoveAll(dataDir)
		return nil, err
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	return &fixtureServer{
		URL:     fmt.Sprintf("http://%s", net.JoinHostPort(host, port)),
		dataDir: dataDir,
		srv:     srv,
	}, nil
}

// Close stops the server and deletes its data directory.
func (s *fixtureServer) Close(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if rmErr := os.RemoveAll(s.dataDir); err == nil {
		err = rmErr
	}
	return err
}
