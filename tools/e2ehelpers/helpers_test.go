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
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/ttbt-io/sitesmanager-ui/visual/scenario"
)

func TestURLs(t *testing.T) {
	tests := []struct {
		name, got, want string
	}{
		{"index", IndexURL("http://devtest.local:8080"),
			"http://devtest.local:8080/?module=SitesManager&action=index&idSite=1&period=day&date=yesterday&showaddsite=false"},
		{"index trailing slash", IndexURL("http://h/"),
			"http://h/?module=SitesManager&action=index&idSite=1&period=day&date=yesterday&showaddsite=false"},
		{"edit", EditSiteURL("http://h", 23),
			"http://h/?module=SitesManager&action=index&idSite=1&period=day&date=yesterday&showaddsite=false#/editsiteid=23"},
		{"global settings", GlobalSettingsURL("http://h", false),
			"http://h/?module=SitesManager&action=globalSettings&idSite=1&period=day&date=yesterday&showaddsite=false"},
		{"bare global settings", GlobalSettingsURL("http://h", true),
			"http://h/?module=SitesManager&action=globalSettings"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestSitesManagerSuiteIsValid(t *testing.T) {
	p := SitesManagerSuite("http://h")
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := len(p.Scenarios); got != 14 {
		t.Errorf("len(Scenarios) = %d, want 14", got)
	}
	for _, s := range p.Scenarios {
		if s.Action == nil {
			t.Errorf("%s has no action", s.Name)
		}
	}
}

func TestSitesManagerSuiteReusesCustomBaseline(t *testing.T) {
	p := SitesManagerSuite("http://h")
	last := p.Scenarios[len(p.Scenarios)-1]
	if last.BaselineName() != "global_url_param_exclusion_custom" {
		t.Errorf("last scenario baseline = %q", last.BaselineName())
	}
	if last.To != StateExclusionCustom {
		t.Errorf("last scenario ends in %q, want %q", last.To, StateExclusionCustom)
	}

	baselines := p.Baselines()
	if len(baselines) != 13 {
		t.Errorf("distinct baselines = %d (%v), want 13", len(baselines), baselines)
	}
}

func TestSitesManagerSuiteNavigationsStartAnywhere(t *testing.T) {
	want := map[string]bool{
		"loaded":                             true,
		"global_settings":                    true,
		"site_edit_url":                      true,
		"global_url_param_exclusion_default": true,
	}
	for _, s := range SitesManagerSuite("http://h").Scenarios {
		if got := s.From == scenario.Any; got != want[s.Name] {
			t.Errorf("%s: starts from any state = %v, want %v", s.Name, got, want[s.Name])
		}
	}
}

func TestSitesManagerSuiteDescription(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sitesmanager_suite", []byte(SitesManagerSuite("http://h").Describe()))
}
