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
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ttbt-io/sitesmanager-ui/visual"
)

// Config controls a capture run. It can be loaded from YAML and is then
// overridden by any flag set on the command line.
type Config struct {
	ChromeURL string `yaml:"chrome_url"`
	BaseURL   string `yaml:"base_url"`
	Dir       string `yaml:"dir"`
	Update    bool   `yaml:"update"`

	// Serve starts the fixture app in-process instead of using BaseURL.
	Serve     bool   `yaml:"serve"`
	ServeHost string `yaml:"serve_host"`

	Width   int64         `yaml:"width"`
	Height  int64         `yaml:"height"`
	Timeout time.Duration `yaml:"timeout"`

	Harness visual.Options `yaml:"harness"`
}

var (
	errNoChrome  = errors.New("--chrome-url must be set")
	errNoBaseURL = errors.New("one of --base-url or --serve must be set")
)

func defaultConfig() Config {
	return Config{
		Dir:       "screenshots",
		ServeHost: "localhost",
		Width:     1280,
		Height:    1024,
		Timeout:   5 * time.Minute,
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// override copies the fields of flags whose flag was changed into cfg.
func (cfg *Config) override(flags Config, changed func(name string) bool) {
	if changed("chrome-url") {
		cfg.ChromeURL = flags.ChromeURL
	}
	if changed("base-url") {
		cfg.BaseURL = flags.BaseURL
	}
	if changed("dir") {
		cfg.Dir = flags.Dir
	}
	if changed("update") {
		cfg.Update = flags.Update
	}
	if changed("serve") {
		cfg.Serve = flags.Serve
	}
	if changed("serve-host") {
		cfg.ServeHost = flags.ServeHost
	}
	if changed("width") {
		cfg.Width = flags.Width
	}
	if changed("height") {
		cfg.Height = flags.Height
	}
	if changed("timeout") {
		cfg.Timeout = flags.Timeout
	}
	if changed("max-diff-ratio") {
		cfg.Harness.MaxDiffRatio = flags.Harness.MaxDiffRatio
	}
	if changed("ready") {
		cfg.Harness.Ready = flags.Harness.Ready
	}
}

func (cfg Config) validate() error {
	if cfg.ChromeURL == "" {
		return errNoChrome
	}
	if cfg.BaseURL == "" && !cfg.Serve {
		return errNoBaseURL
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Harness.Ready != "" {
		if _, err := visual.ParseSelector(cfg.Harness.Ready); err != nil {
			return fmt.Errorf("harness.ready: %w", err)
		}
	}
	return nil
}
