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
	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/sitesmanager-ui/visual"
	"github.com/ttbt-io/sitesmanager-ui/visual/scenario"
)

// BaselinePrefix prefixes every Sites Manager baseline file.
const BaselinePrefix = "SitesManager"

// UI states of the Sites Manager screens.
const (
	StateListPage0       scenario.State = "list_page_0"
	StateListPage1       scenario.State = "list_page_1"
	StateListPage2       scenario.State = "list_page_2"
	StateSearchPage0     scenario.State = "search_page_0"
	StateSearchPage1     scenario.State = "search_page_1"
	StateSearchNoResult  scenario.State = "search_no_result"
	StateGlobalSettings  scenario.State = "global_settings"
	StateSiteEdit        scenario.State = "site_edit"
	StateExclusionDflt   scenario.State = "exclusion_default"
	StateExclusionRecom  scenario.State = "exclusion_recommended"
	StateExclusionCustom scenario.State = "exclusion_custom"
	StateExclusionAdded  scenario.State = "exclusion_custom_added"
)

const (
	// SearchTerm matches more than one page of ManySites.
	SearchTerm = "SiteTes"
	// NoResultTerm is appended to SearchTerm and matches nothing.
	NoResultTerm = "RanDoMSearChTerm"
	// EditSiteID is opened through the edit deep link.
	EditSiteID = 23

	utcHelp                = "UTC time is"
	excludedParamsSelector = ".siteManagerGlobalExcludedUrlParameters"
	addRecommendedButton   = excludedParamsSelector + " input[type=button]"
)

var globalSettingsReady = visual.MustSelector("h2:contains(Global websites settings)")

// SitesManagerSuite returns the Sites Manager screenshot checks in the order
// they must run against one browser tab.
func SitesManagerSuite(baseURL string) scenario.Pipeline {
	return scenario.Pipeline{
		Name:  BaselinePrefix,
		Start: scenario.Initial,
		Scenarios: []scenario.Scenario{
			{
				Name:        "loaded",
				Description: "should load correctly and show page 0",
				From:        scenario.Any,
				To:          StateListPage0,
				Action:      chromedp.Navigate(IndexURL(baseURL)),
			},
			{
				Name:        "page_1",
				Description: "should show page 1 when clicking next",
				From:        StateListPage0,
				To:          StateListPage1,
				Action:      LoadNextPage(),
			},
			{
				Name:        "page_2",
				Description: "should show page 2 when clicking next",
				From:        StateListPage1,
				To:          StateListPage2,
				Action:      LoadNextPage(),
			},
			{
				Name:        "page_1_again",
				Description: "should show page 1 when clicking prev",
				From:        StateListPage2,
				To:          StateListPage1,
				Action:      LoadPreviousPage(),
			},
			{
				Name:        "search",
				Description: "should search for websites and reset page to 0",
				From:        StateListPage1,
				To:          StateSearchPage0,
				Action:      SearchForText(SearchTerm),
			},
			{
				Name:        "search_page_1",
				Description: "should page within search result to page 1",
				From:        StateSearchPage0,
				To:          StateSearchPage1,
				Action:      LoadNextPage(),
			},
			{
				Name:        "search_no_result",
				Description: "should search for websites no result",
				From:        StateSearchPage1,
				To:          StateSearchNoResult,
				Action:      SearchForText(NoResultTerm),
			},
			{
				Name:        "global_settings",
				Description: "should load the global settings page",
				From:        scenario.Any,
				To:          StateGlobalSettings,
				Action: chromedp.Tasks{
					chromedp.Navigate(GlobalSettingsURL(baseURL, false)),
					HideHelpText(utcHelp),
				},
				Ready: globalSettingsReady,
			},
			{
				Name:        "site_edit_url",
				Description: "should open and edit a site directly based on url parameter",
				From:        scenario.Any,
				To:          StateSiteEdit,
				Action: chromedp.Tasks{
					chromedp.Navigate(EditSiteURL(baseURL, EditSiteID)),
					HideHelpText(utcHelp),
				},
			},
			{
				Name:        "global_url_param_exclusion_default",
				Description: "excludes common session parameters by default",
				From:        scenario.Any,
				To:          StateExclusionDflt,
				Action: chromedp.Tasks{
					chromedp.Navigate(GlobalSettingsURL(baseURL, true)),
					chromedp.WaitVisible(excludedParamsSelector, chromedp.ByQuery),
				},
				Element: excludedParamsSelector,
			},
			{
				Name:        "global_url_param_exclusion_common_exclusions",
				Description: "excludes recommended parameters if chosen",
				From:        StateExclusionDflt,
				To:          StateExclusionRecom,
				Action:      ClickByID("exclusionTypematomo_recommended_pii"),
				Element:     excludedParamsSelector,
			},
			{
				Name:        "global_url_param_exclusion_custom",
				Description: "excludes a custom list of parameters if chosen",
				From:        StateExclusionRecom,
				To:          StateExclusionCustom,
				Action:      ClickByID("exclusionTypecustom"),
				Element:     excludedParamsSelector,
			},
			{
				Name:        "global_url_param_exclusion_add_common",
				Description: "can add recommended parameters to custom list",
				From:        StateExclusionCustom,
				To:          StateExclusionAdded,
				Action:      Click(addRecommendedButton),
				Element:     excludedParamsSelector,
			},
			{
				Name:        "global_url_param_exclusion_custom_reset",
				Baseline:    "global_url_param_exclusion_custom",
				Description: "resets custom list of parameters when changing type",
				From:        StateExclusionAdded,
				To:          StateExclusionCustom,
				Action: chromedp.Tasks{
					ClickByID("exclusionTypematomo_recommended_pii"),
					ClickByID("exclusionTypecustom"),
				},
				Element: excludedParamsSelector,
			},
		},
	}
}
