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

package visual

import (
	"errors"
	"fmt"
	"time"
)

var ErrEmptyName = errors.New("screenshot name is empty")

// ActionError is returned when the setup action of a check fails. No
// screenshot is taken in that case.
type ActionError struct {
	Name string
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: action failed: %v", e.Name, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// ReadinessTimeoutError is returned when the readiness selector did not
// match within the configured timeout.
type ReadinessTimeoutError struct {
	Selector Selector
	Timeout  time.Duration
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s waiting for %q", e.Timeout, e.Selector)
}

// IdleTimeoutError is returned when the network did not go quiet in time.
type IdleTimeoutError struct {
	Timeout time.Duration
	Pending int
}

func (e *IdleTimeoutError) Error() string {
	return fmt.Sprintf("network not idle after %s (%d requests pending)", e.Timeout, e.Pending)
}

// MissingBaselineError is returned when a screenshot has no approved
// baseline. The capture is saved to ProcessedPath for review.
type MissingBaselineError struct {
	Name          string
	ExpectedPath  string
	ProcessedPath string
}

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("no baseline for %q at %s (capture saved to %s; run with UPDATE_GOLDENS=true to accept it)", e.Name, e.ExpectedPath, e.ProcessedPath)
}

// MismatchError is returned when a screenshot differs from its baseline.
type MismatchError struct {
	Name          string
	DiffPixels    int
	TotalPixels   int
	SizeMismatch  bool
	Verdict       string
	ProcessedPath string
	DiffPath      string
}

func (e *MismatchError) Error() string {
	if e.SizeMismatch {
		return fmt.Sprintf("screenshot %q has a different size than its baseline (processed: %s, diff: %s)", e.Name, e.ProcessedPath, e.DiffPath)
	}
	return fmt.Sprintf("screenshot %q differs from baseline: %d of %d pixels (%s; processed: %s, diff: %s)", e.Name, e.DiffPixels, e.TotalPixels, e.Verdict, e.ProcessedPath, e.DiffPath)
}
