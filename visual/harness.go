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

// Package visual asserts that rendered page regions match stored baseline
// images.
//
// A check runs a setup action, waits for the network to go quiet and for a
// readiness selector to match, screenshots a region of the page and compares
// it with a named baseline. Every wait is bounded.
package visual

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/sitesmanager-ui/visual/baseline"
	"github.com/ttbt-io/sitesmanager-ui/visual/imagediff"
)

// Logger allows passing *testing.T or a log.Printf adapter.
type Logger interface {
	Logf(format string, args ...any)
}

type stdLogger struct{}

func (stdLogger) Logf(format string, args ...any) { log.Printf(format, args...) }

// Options configure a Harness. Zero values select the defaults.
type Options struct {
	// Region is the element captured by Check.
	Region string `yaml:"region"`
	// Ready is the readiness selector used when a check names none, in
	// "css:contains(text)" notation. Empty selects DefaultReady.
	Ready string `yaml:"ready"`
	// ReadyTimeout bounds the wait for the readiness selector.
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	// IdleTime is how long the network must stay quiet.
	IdleTime    time.Duration `yaml:"idle_time"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// Threshold is the per-pixel colour distance (0..1).
	Threshold float64 `yaml:"threshold"`
	// MaxDiffRatio is the fraction of pixels allowed to differ.
	MaxDiffRatio float64 `yaml:"max_diff_ratio"`
	// DebugDir receives full-page screenshots of failed checks.
	DebugDir string `yaml:"debug_dir"`

	Logger Logger `yaml:"-"`
}

const (
	DefaultRegion       = "#content"
	DefaultReadyTimeout = 30 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultIdleTime     = 500 * time.Millisecond
	DefaultIdleTimeout  = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Region == "" {
		o.Region = DefaultRegion
	}
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = DefaultReadyTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.IdleTime <= 0 {
		o.IdleTime = DefaultIdleTime
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.Threshold <= 0 {
		o.Threshold = imagediff.DefaultThreshold
	}
	if o.Logger == nil {
		o.Logger = stdLogger{}
	}
	return o
}

// readySelector parses Ready.
func (o Options) readySelector() (Selector, error) {
	if o.Ready == "" {
		return DefaultReady, nil
	}
	sel, err := ParseSelector(o.Ready)
	if err != nil {
		return Selector{}, fmt.Errorf("ready: %w", err)
	}
	return sel, nil
}

// Harness runs screenshot checks against one browser tab.
type Harness struct {
	ctx   context.Context
	store *baseline.Store
	opts  Options
	ready Selector
	idle  *NetworkIdle
}

// New enables network events on the chromedp context and returns a harness
// that compares against store.
func New(ctx context.Context, store *baseline.Store, opts Options) (*Harness, error) {
	ready, err := opts.readySelector()
	if err != nil {
		return nil, err
	}
	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		return nil, fmt.Errorf("enable network events: %w", err)
	}
	h := &Harness{
		ctx:   ctx,
		store: store,
		opts:  opts.withDefaults(),
		ready: ready,
		idle:  NewNetworkIdle(),
	}
	chromedp.ListenTarget(ctx, h.idle.Observe)
	return h, nil
}

// AssertScreenshotEquals runs action, waits for the page to settle and fails
// the test unless the region matches the baseline called name. ready
// defaults to Options.Ready, then DefaultReady.
func (h *Harness) AssertScreenshotEquals(t testing.TB, name string, action chromedp.Action, ready ...Selector) {
	t.Helper()
	var sel Selector
	if len(ready) > 0 {
		sel = ready[0]
	}
	if err := h.Check(name, action, sel); err != nil {
		t.Fatalf("Screenshot %s: %v", name, err)
	}
}

// AssertElementScreenshot runs action and fails the test unless the element
// matched by selector looks like the baseline called name.
func (h *Harness) AssertElementScreenshot(t testing.TB, name, selector string, action chromedp.Action) {
	t.Helper()
	if err := h.CheckElement(name, selector, action); err != nil {
		t.Fatalf("Screenshot %s: %v", name, err)
	}
}

// Check is the error-returning form of AssertScreenshotEquals.
func (h *Harness) Check(name string, action chromedp.Action, ready Selector) error {
	if name == "" {
		return ErrEmptyName
	}
	if ready.IsZero() {
		ready = h.ready
	}
	if ready.IsZero() {
		ready = DefaultReady
	}
	if err := h.run(name, action); err != nil {
		return err
	}
	if err := h.waitIdle(name); err != nil {
		return err
	}
	if err := h.waitReady(name, ready); err != nil {
		return err
	}
	return h.capture(name, h.opts.Region)
}

// CheckElement runs action, waits for the network to go quiet and compares
// the element matched by selector with the baseline called name. It does not
// wait for a readiness selector.
func (h *Harness) CheckElement(name, selector string, action chromedp.Action) error {
	if name == "" {
		return ErrEmptyName
	}
	if err := h.run(name, action); err != nil {
		return err
	}
	if err := h.waitIdle(name); err != nil {
		return err
	}
	return h.capture(name, selector)
}

func (h *Harness) run(name string, action chromedp.Action) error {
	if action == nil {
		return nil
	}
	h.opts.Logger.Logf("CHECK %s: running action", name)
	if err := chromedp.Run(h.ctx, action); err != nil {
		h.debugFailure(name + "-action")
		return &ActionError{Name: name, Err: err}
	}
	return nil
}

func (h *Harness) waitIdle(name string) error {
	if err := h.idle.Wait(h.ctx, h.opts.IdleTime, h.opts.IdleTimeout); err != nil {
		h.debugFailure(name + "-idle")
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (h *Harness) waitReady(name string, ready Selector) error {
	err := chromedp.Run(h.ctx, chromedp.Poll(ready.Expression(), nil,
		chromedp.WithPollingInterval(h.opts.PollInterval),
		chromedp.WithPollingTimeout(h.opts.ReadyTimeout),
	))
	if err == nil {
		return nil
	}
	h.debugFailure(name + "-ready")
	if errors.Is(err, chromedp.ErrPollingTimeout) {
		return fmt.Errorf("%s: %w", name, &ReadinessTimeoutError{Selector: ready, Timeout: h.opts.ReadyTimeout})
	}
	return fmt.Errorf("%s: waiting for %q: %w", name, ready, err)
}

func (h *Harness) capture(name, selector string) error {
	var buf []byte
	if err := chromedp.Run(h.ctx, chromedp.Screenshot(selector, &buf, chromedp.ByQuery)); err != nil {
		h.debugFailure(name + "-screenshot")
		return fmt.Errorf("%s: screenshot %s: %w", name, selector, err)
	}
	return h.Match(name, buf)
}

// Match compares png with the baseline called name. In update mode it
// replaces the baseline instead. A missing baseline is an error.
func (h *Harness) Match(name string, png []byte) error {
	if h.store.Update {
		if err := h.store.Save(name, png); err != nil {
			return fmt.Errorf("%s: update baseline: %w", name, err)
		}
		h.opts.Logger.Logf("Updated baseline: %s", h.store.ExpectedPath(name))
		return nil
	}

	expected, err := h.store.Load(name)
	if errors.Is(err, baseline.ErrNotFound) {
		processed, perr := h.store.SaveProcessed(name, png)
		if perr != nil {
			h.opts.Logger.Logf("Failed to save processed screenshot for %s: %v", name, perr)
		}
		return &MissingBaselineError{Name: name, ExpectedPath: h.store.ExpectedPath(name), ProcessedPath: processed}
	}
	if err != nil {
		return err
	}

	want, err := imagediff.Decode(expected)
	if err != nil {
		return fmt.Errorf("%s: baseline: %w", name, err)
	}
	got, err := imagediff.Decode(png)
	if err != nil {
		return fmt.Errorf("%s: capture: %w", name, err)
	}

	res := imagediff.Compare(want, got, imagediff.Options{Threshold: h.opts.Threshold})
	if res.Match(h.opts.MaxDiffRatio) {
		return nil
	}

	mismatch := &MismatchError{
		Name:         name,
		DiffPixels:   res.DiffPixels,
		TotalPixels:  res.TotalPixels,
		SizeMismatch: res.SizeMismatch,
		Verdict:      imagediff.Verdict(res.Ratio() * 100),
	}
	if mismatch.ProcessedPath, err = h.store.SaveProcessed(name, png); err != nil {
		h.opts.Logger.Logf("Failed to save processed screenshot for %s: %v", name, err)
	}
	if diff, err := imagediff.Encode(res.Diff); err == nil {
		if mismatch.DiffPath, err = h.store.SaveDiff(name, diff); err != nil {
			h.opts.Logger.Logf("Failed to save diff for %s: %v", name, err)
		}
	}
	return mismatch
}

// debugFailure saves a full-page screenshot when DebugDir is set.
func (h *Harness) debugFailure(name string) {
	if h.opts.DebugDir == "" {
		return
	}
	var buf []byte
	if err := chromedp.Run(h.ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		h.opts.Logger.Logf("DEBUG: failed to capture screenshot for %s: %v", name, err)
		return
	}
	if err := os.MkdirAll(h.opts.DebugDir, 0755); err != nil {
		h.opts.Logger.Logf("DEBUG: %v", err)
		return
	}
	fn := filepath.Join(h.opts.DebugDir, fmt.Sprintf("debug-%s.png", name))
	if err := os.WriteFile(fn, buf, 0644); err != nil {
		h.opts.Logger.Logf("DEBUG: %v", err)
		return
	}
	h.opts.Logger.Logf("DEBUG: saved screenshot to %s", fn)
}
