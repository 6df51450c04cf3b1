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

// screenshots runs the Sites Manager visual checks outside of go test.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/c2FmZQ/storage"
	"github.com/spf13/cobra"

	"github.com/ttbt-io/sitesmanager-ui/backend"
	"github.com/ttbt-io/sitesmanager-ui/backend/search"
	"github.com/ttbt-io/sitesmanager-ui/tools/e2ehelpers"
	"github.com/ttbt-io/sitesmanager-ui/visual/baseline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Printf("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "screenshots",
		Short:         "Sites Manager screenshot checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCaptureCommand(), newListCommand(), newBaselinesCommand(), newFixtureCommand())
	return root
}

func newCaptureCommand() *cobra.Command {
	var (
		configPath string
		flags      = defaultConfig()
	)
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture every screenshot and compare it with its baseline",
		Long: `Capture drives a remote Chrome through the Sites Manager screens and
compares each screenshot with the approved baseline under --dir.

With --update (or UPDATE_GOLDENS=true) the baselines are overwritten instead.

Example:
  screenshots capture --chrome-url ws://127.0.0.1:9222 --serve --dir ./testdata
  screenshots capture --config screenshots.yaml --update`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.override(flags, cmd.Flags().Changed)
			if err := cfg.validate(); err != nil {
				return err
			}
			report, err := runCapture(cmd.Context(), cmd.OutOrStdout(), cfg)
			if err != nil {
				return err
			}
			return report.Err()
		},
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML configuration file")
	f.StringVar(&flags.ChromeURL, "chrome-url", "", "The url of the remote debugging port")
	f.StringVar(&flags.BaseURL, "base-url", "", "Base URL of the Sites Manager app")
	f.StringVar(&flags.Dir, "dir", flags.Dir, "Baseline directory")
	f.BoolVar(&flags.Update, "update", false, "Overwrite baselines instead of comparing")
	f.BoolVar(&flags.Serve, "serve", false, "Start the fixture app in-process")
	f.StringVar(&flags.ServeHost, "serve-host", flags.ServeHost, "Host name Chrome uses to reach the in-process app")
	f.Int64Var(&flags.Width, "width", flags.Width, "Viewport width")
	f.Int64Var(&flags.Height, "height", flags.Height, "Viewport height")
	f.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Overall timeout")
	f.Float64Var(&flags.Harness.MaxDiffRatio, "max-diff-ratio", 0, "Fraction of pixels allowed to differ")
	f.StringVar(&flags.Harness.Ready, "ready", "", `Default readiness selector, e.g. "h2:contains(Websites)"`)
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the screenshot pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), e2ehelpers.SitesManagerSuite("").Describe())
			return err
		},
	}
}

func newBaselinesCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "baselines",
		Short: "Compare the stored baselines with the ones the pipeline needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := baseline.New(dir, e2ehelpers.BaselinePrefix).Names()
			if err != nil {
				return err
			}
			wanted := e2ehelpers.SitesManagerSuite("").Baselines()
			out := cmd.OutOrStdout()
			missing := 0
			for _, name := range wanted {
				status := "ok"
				if !slices.Contains(stored, name) {
					status = "missing"
					missing++
				}
				fmt.Fprintf(out, "%-8s %s\n", status, name)
			}
			for _, name := range stored {
				if !slices.Contains(wanted, name) {
					fmt.Fprintf(out, "%-8s %s\n", "unused", name)
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d baselines missing under %s", missing, dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "screenshots", "Baseline directory")
	return cmd
}

func newFixtureCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "fixture <name>",
		Short:     "Print the sites and global settings a fixture seeds, as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: backend.FixtureNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.MkdirTemp("", "sitesmanager-fixture-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)
			ss, err := backend.NewSiteStore(storage.New(dir, nil))
			if err != nil {
				return err
			}
			if err := backend.ApplyFixture(ss, args[0]); err != nil {
				return err
			}
			sites, _, _ := ss.List(search.Query{}, 0, max(ss.Len(), 1))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Sites          []backend.Site         `json:"sites"`
				GlobalSettings backend.GlobalSettings `json:"globalSettings"`
			}{sites, ss.GlobalSettings()})
		},
	}
}
