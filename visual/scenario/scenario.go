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

// Package scenario runs ordered screenshot checks whose page state flows
// from one step to the next.
//
// Each Scenario names the UI state it expects (From) and the state it leaves
// the page in (To). A Pipeline validates that the chain is unbroken before
// running, and stops checking as soon as one step fails: later steps would
// otherwise run against a page in an unknown state.
package scenario

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/sitesmanager-ui/visual"
)

// State names a UI state, e.g. "list_page_1".
type State string

const (
	// Any matches every state. Scenarios that navigate to a URL start from Any.
	Any     State = "*"
	Initial State = "initial"
)

var (
	ErrPreviousFailed = errors.New("skipped: a previous scenario failed")
	ErrEmptyName      = errors.New("scenario name is empty")
	ErrDuplicateName  = errors.New("duplicate scenario name")
	ErrBrokenChain    = errors.New("scenario does not start where the previous one ended")
)

// Scenario is one interaction followed by a screenshot check.
type Scenario struct {
	Name string
	// Baseline overrides the baseline name. It defaults to Name.
	Baseline    string
	Description string
	From, To    State
	Action      chromedp.Action
	// Ready is the readiness selector. The zero value selects the
	// harness default.
	Ready visual.Selector
	// Element, when set, captures that element instead of the page region
	// and skips the readiness wait.
	Element string
}

// BaselineName returns the name of the baseline this scenario compares with.
func (s Scenario) BaselineName() string {
	if s.Baseline != "" {
		return s.Baseline
	}
	return s.Name
}

// Checker runs screenshot checks. *visual.Harness implements it.
type Checker interface {
	Check(name string, action chromedp.Action, ready visual.Selector) error
	CheckElement(name, selector string, action chromedp.Action) error
}

var _ Checker = (*visual.Harness)(nil)

func (s Scenario) run(c Checker) error {
	if s.Element != "" {
		return c.CheckElement(s.BaselineName(), s.Element, s.Action)
	}
	return c.Check(s.BaselineName(), s.Action, s.Ready)
}

// Pipeline is an ordered list of scenarios.
type Pipeline struct {
	Name      string
	Start     State
	Scenarios []Scenario
}

func (p Pipeline) start() State {
	if p.Start == "" {
		return Initial
	}
	return p.Start
}

// Validate checks that scenario names are unique and that every scenario
// starts in the state the previous one produced.
func (p Pipeline) Validate() error {
	seen := make(map[string]bool, len(p.Scenarios))
	cur := p.start()
	for i, s := range p.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenario #%d: %w", i+1, ErrEmptyName)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, s.Name)
		}
		seen[s.Name] = true
		if s.From != Any && s.From != cur {
			return fmt.Errorf("%s: %w: want %q, have %q", s.Name, ErrBrokenChain, s.From, cur)
		}
		if s.To == "" || s.To == Any {
			return fmt.Errorf("%s: invalid target state %q", s.Name, s.To)
		}
		cur = s.To
	}
	return nil
}

// Baselines returns the distinct baseline names in order of first use.
func (p Pipeline) Baselines() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range p.Scenarios {
		n := s.BaselineName()
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Status is the result of one scenario.
type Status int

const (
	Passed Status = iota
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "PASS"
	case Failed:
		return "FAIL"
	case Skipped:
		return "SKIP"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome records how one scenario went.
type Outcome struct {
	Scenario string
	Baseline string
	Status   Status
	Err      error
	Duration time.Duration
}

// Report is the result of a pipeline run.
type Report struct {
	Pipeline string
	Outcomes []Outcome
}

// Failed reports whether any scenario failed.
func (r Report) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Status == Failed {
			return true
		}
	}
	return false
}

// Err returns the first failure, or nil.
func (r Report) Err() error {
	for _, o := range r.Outcomes {
		if o.Status == Failed {
			return fmt.Errorf("%s: %w", o.Scenario, o.Err)
		}
	}
	return nil
}

// Summary renders one line per scenario followed by the totals.
func (r Report) Summary() string {
	var sb strings.Builder
	counts := map[Status]int{}
	for _, o := range r.Outcomes {
		counts[o.Status]++
		fmt.Fprintf(&sb, "%s %s", o.Status, o.Scenario)
		if o.Status != Skipped {
			fmt.Fprintf(&sb, " (%s)", o.Duration.Round(time.Millisecond))
		}
		if o.Status == Failed {
			fmt.Fprintf(&sb, ": %v", o.Err)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%d passed, %d failed, %d skipped\n", counts[Passed], counts[Failed], counts[Skipped])
	return sb.String()
}

// Run validates the pipeline and runs every scenario in order. Once a
// scenario fails, the remaining ones are skipped with ErrPreviousFailed.
func (p Pipeline) Run(c Checker) (Report, error) {
	r := Report{Pipeline: p.Name}
	if err := p.Validate(); err != nil {
		return r, err
	}
	failed := false
	for _, s := range p.Scenarios {
		o := Outcome{Scenario: s.Name, Baseline: s.BaselineName()}
		if failed {
			o.Status = Skipped
			o.Err = ErrPreviousFailed
			r.Outcomes = append(r.Outcomes, o)
			continue
		}
		start := time.Now()
		if err := s.run(c); err != nil {
			o.Status = Failed
			o.Err = err
			failed = true
		}
		o.Duration = time.Since(start)
		r.Outcomes = append(r.Outcomes, o)
	}
	return r, nil
}

// RunTests runs each scenario as a subtest of t.
func (p Pipeline) RunTests(t *testing.T, c Checker) {
	t.Helper()
	if err := p.Validate(); err != nil {
		t.Fatalf("Invalid pipeline %s: %v", p.Name, err)
	}
	failed := ""
	for _, s := range p.Scenarios {
		t.Run(s.Name, func(t *testing.T) {
			if failed != "" {
				t.Skipf("%v (%s)", ErrPreviousFailed, failed)
			}
			if s.Description != "" {
				t.Logf("STEP: %s", s.Description)
			}
			if err := s.run(c); err != nil {
				failed = s.Name
				t.Fatalf("%s: %v", s.Name, err)
			}
		})
	}
}

// Describe renders the pipeline's state graph as text.
func (p Pipeline) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pipeline %s (start: %s)\n", p.Name, p.start())
	for i, s := range p.Scenarios {
		fmt.Fprintf(&sb, "%2d. %s: %s -> %s", i+1, s.Name, s.From, s.To)
		switch {
		case s.Element != "":
			fmt.Fprintf(&sb, " [element %s]", s.Element)
		case s.Ready.IsZero():
			sb.WriteString(" [ready default]")
		default:
			fmt.Fprintf(&sb, " [ready %s]", s.Ready)
		}
		if s.Baseline != "" && s.Baseline != s.Name {
			fmt.Fprintf(&sb, " (baseline %s)", s.Baseline)
		}
		sb.WriteByte('\n')
		if s.Description != "" {
			fmt.Fprintf(&sb, "    %s\n", s.Description)
		}
	}
	return sb.String()
}
