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

package e2ehelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Logger interface allows passing *testing.T or log.Printf
type Logger interface {
	Logf(format string, args ...any)
}

// CaptureScreenshot captures a screenshot and saves it to the specified filename.
func CaptureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for screenshot: %w", err)
	}

	if err := os.WriteFile(filename, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	log.Printf("Saved screenshot to %s", filename)
	return nil
}

const noAnimationsScript = `
document.addEventListener('DOMContentLoaded', () => {
	const style = document.createElement('style');
	style.innerHTML = '*{-webkit-transition-duration:0s!important;transition-duration:0s!important;-webkit-animation-duration:0s!important;animation-duration:0s!important;caret-color:transparent!important;}';
	document.head.appendChild(style);
});`

// DisableCSSAnimations turns off transitions, animations and the text caret
// on every document loaded after it runs.
func DisableCSSAnimations() chromedp.ActionFunc {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(noAnimationsScript).Do(ctx)
		return err
	})
}

// --- Navigation ---

// Page parameters shared by every Sites Manager URL.
var defaultParams = [][2]string{
	{"idSite", "1"},
	{"period", "day"},
	{"date", "yesterday"},
	{"showaddsite", "false"},
}

func moduleURL(baseURL, action string, params [][2]string) string {
	q := []string{"module=SitesManager", "action=" + url.QueryEscape(action)}
	for _, p := range params {
		q = append(q, url.QueryEscape(p[0])+"="+url.QueryEscape(p[1]))
	}
	return strings.TrimSuffix(baseURL, "/") + "/?" + strings.Join(q, "&")
}

// IndexURL returns the Sites Manager list URL.
func IndexURL(baseURL string) string {
	return moduleURL(baseURL, "index", defaultParams)
}

// EditSiteURL returns the list URL with the deep link that opens the edit
// form of site id.
func EditSiteURL(baseURL string, id int) string {
	return fmt.Sprintf("%s#/editsiteid=%d", IndexURL(baseURL), id)
}

// GlobalSettingsURL returns the global settings URL. With bare set, it omits
// the site and period parameters.
func GlobalSettingsURL(baseURL string, bare bool) string {
	if bare {
		return moduleURL(baseURL, "globalSettings", nil)
	}
	return moduleURL(baseURL, "globalSettings", defaultParams)
}

// --- List interactions ---

// LoadNextPage clicks "next" in the first pagination widget.
func LoadNextPage() chromedp.Action {
	return chromedp.Click(`.SitesManager .paging .next`, chromedp.ByQuery)
}

// LoadPreviousPage clicks "previous" in the first pagination widget.
func LoadPreviousPage() chromedp.Action {
	return chromedp.Click(`.SitesManager .paging .prev`, chromedp.ByQuery)
}

// SearchForText appends text to the first search field, lets the input settle
// and clicks the search icon.
func SearchForText(text string) chromedp.Action {
	return chromedp.Tasks{
		chromedp.SendKeys(`.SitesManager .search input`, text, chromedp.ByQuery),
		chromedp.Sleep(100 * time.Millisecond),
		chromedp.Click(`.SitesManager .search .search_ico`, chromedp.ByQuery),
	}
}

// ClickByID clicks the element with the given id, with or without the
// leading '#'.
func ClickByID(id string) chromedp.Action {
	if !strings.HasPrefix(id, "#") {
		id = "#" + id
	}
	return chromedp.Click(id, chromedp.ByID)
}

// Click clicks the first element matching selector.
func Click(selector string) chromedp.Action {
	return chromedp.Click(selector, chromedp.ByQuery)
}

// HideHelpText waits until a .form-help element containing text is rendered
// and hides every such element. Used to mask the server clock.
func HideHelpText(text string) chromedp.Action {
	quoted, _ := json.Marshal(text)
	return chromedp.Poll(fmt.Sprintf(`((text) => {
		const els = Array.from(document.querySelectorAll('.form-help'))
			.filter(el => (el.textContent || '').includes(text));
		els.forEach(el => { el.style.display = 'none'; });
		return els.length > 0;
	})(%s)`, quoted), nil,
		chromedp.WithPollingInterval(50*time.Millisecond),
		chromedp.WithPollingTimeout(10*time.Second),
	)
}

// WaitUntilDisplayNone waits until the element is hidden (display: none) or removed.
func WaitUntilDisplayNone(selector string) chromedp.Action {
	quoted, _ := json.Marshal(selector)
	return chromedp.Poll(fmt.Sprintf(`((sel) => {
		const el = document.querySelector(sel);
		return !el || window.getComputedStyle(el).display === 'none';
	})(%s)`, quoted), nil,
		chromedp.WithPollingInterval(100*time.Millisecond),
		chromedp.WithPollingTimeout(10*time.Second),
	)
}
