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

package backend

import (
	"reflect"
	"testing"

	"github.com/ttbt-io/sitesmanager-ui/backend/search"
)

func TestManySitesIsIdempotent(t *testing.T) {
	ss, _ := newTestSiteStore(t)
	if err := ApplyFixture(ss, "ManySites"); err != nil {
		t.Fatalf("ApplyFixture: %v", err)
	}
	first, _, _ := ss.List(search.Query{}, 0, 100)

	// Edits made between runs are reverted.
	if _, err := ss.Save(Site{Name: "Extra", URLs: []string{"http://extra.example.com"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	gs := DefaultGlobalSettings()
	gs.ExclusionType = ExclusionRecommendedPII
	if _, err := ss.SaveGlobalSettings(gs); err != nil {
		t.Fatalf("SaveGlobalSettings: %v", err)
	}

	if err := ApplyFixture(ss, "ManySites"); err != nil {
		t.Fatalf("ApplyFixture: %v", err)
	}
	second, _, _ := ss.List(search.Query{}, 0, 100)
	if !reflect.DeepEqual(first, second) {
		t.Error("ManySites produced a different dataset on the second run")
	}
	if got := ss.GlobalSettings(); !reflect.DeepEqual(got, DefaultGlobalSettings()) {
		t.Errorf("global settings not reset: %+v", got)
	}
}

func TestManySitesData(t *testing.T) {
	ss, _ := newTestSiteStore(t)
	if err := ManySites(ss); err != nil {
		t.Fatalf("ManySites: %v", err)
	}
	if ss.Len() != ManySiteCount {
		t.Fatalf("Len = %d, want %d", ss.Len(), ManySiteCount)
	}
	// The edit form screenshot opens this site.
	s, err := ss.Get(23)
	if err != nil {
		t.Fatalf("Get(23): %v", err)
	}
	if s.Name != "SiteTest23" || s.URLs[0] != "http://site23.example.com" {
		t.Errorf("site 23 = %+v", s)
	}
	// Enough matches for the search term to page.
	_, total, _ := ss.List(search.Parse("SiteTes"), 0, 5)
	if total <= 5 {
		t.Errorf("SiteTes matches %d sites, want more than one page", total)
	}
}

func TestEmptyFixture(t *testing.T) {
	ss, _ := newTestSiteStore(t)
	if err := ApplyFixture(ss, "ManySites"); err != nil {
		t.Fatalf("ManySites: %v", err)
	}
	if err := ApplyFixture(ss, "Empty"); err != nil {
		t.Fatalf("Empty: %v", err)
	}
	if ss.Len() != 0 {
		t.Errorf("Len = %d", ss.Len())
	}
	created, err := ss.Save(Site{Name: "First", URLs: []string{"http://first.example.com"}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("ID = %d, want 1", created.ID)
	}
}

func TestApplyUnknownFixture(t *testing.T) {
	ss, _ := newTestSiteStore(t)
	if err := ApplyFixture(ss, "Bogus"); err == nil {
		t.Error("expected error")
	}
	if got := FixtureNames(); !reflect.DeepEqual(got, []string{"Empty", "ManySites"}) {
		t.Errorf("FixtureNames = %v", got)
	}
}
