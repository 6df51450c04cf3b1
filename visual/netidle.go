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
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
)

// NetworkIdle counts in-flight requests from CDP network events.
type NetworkIdle struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
	now      func() time.Time
}

// NewNetworkIdle returns an idle tracker. Pass its Observe method to
// chromedp.ListenTarget.
func NewNetworkIdle() *NetworkIdle {
	return &NetworkIdle{
		inflight: make(map[network.RequestID]struct{}),
		now:      time.Now,
	}
}

// Observe records a CDP event.
func (n *NetworkIdle) Observe(ev any) {
	switch ev := ev.(type) {
	case *network.EventRequestWillBeSent:
		// Long-lived streams never finish.
		if ev.Type == network.ResourceTypeWebSocket || ev.Type == network.ResourceTypeEventSource {
			return
		}
		if ev.Request != nil && strings.HasPrefix(ev.Request.URL, "data:") {
			return
		}
		n.mu.Lock()
		n.inflight[ev.RequestID] = struct{}{}
		n.last = n.now()
		n.mu.Unlock()
	case *page.EventFrameNavigated:
		// Requests of the replaced document may never report completion.
		if ev.Frame != nil && ev.Frame.ParentID == "" {
			n.Reset()
		}
	case *network.EventLoadingFinished:
		n.done(ev.RequestID)
	case *network.EventLoadingFailed:
		n.done(ev.RequestID)
	}
}

func (n *NetworkIdle) done(id network.RequestID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.inflight[id]; !ok {
		return
	}
	delete(n.inflight, id)
	n.last = n.now()
}

// Inflight returns the number of pending requests.
func (n *NetworkIdle) Inflight() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.inflight)
}

// Reset forgets all pending requests, e.g. after a navigation aborted them
// without a LoadingFailed event.
func (n *NetworkIdle) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	clear(n.inflight)
	n.last = n.now()
}

func (n *NetworkIdle) quietSince(start time.Time, idle time.Duration) (bool, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.inflight) > 0 {
		return false, len(n.inflight)
	}
	since := n.last
	if start.After(since) {
		since = start
	}
	return n.now().Sub(since) >= idle, 0
}

// Wait blocks until no request has been in flight for idle, measured from the
// later of the call and the last network activity. It gives up after timeout.
func (n *NetworkIdle) Wait(ctx context.Context, idle, timeout time.Duration) error {
	start := n.now()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	interval := max(idle/5, 10*time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		quiet, pending := n.quietSince(start, idle)
		if quiet {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return &IdleTimeoutError{Timeout: timeout, Pending: pending}
		case <-ticker.C:
		}
	}
}
