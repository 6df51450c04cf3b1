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
	"fmt"
	"log"
	"sort"
	"time"
)

// Fixture seeds a SiteStore with a known dataset. Applying a fixture twice
// leaves the store in the same state.
type Fixture func(*SiteStore) error

var fixtures = map[string]Fixture{
	"ManySites": ManySites,
	"Empty":     Empty,
}

// FixtureNames lists the registered fixtures.
func FixtureNames() []string {
	names := make([]string, 0, len(fixtures))
	for n := range fixtures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ApplyFixture seeds ss with the named fixture.
func ApplyFixture(ss *SiteStore, name string) error {
	f, ok := fixtures[name]
	if !ok {
		return fmt.Errorf("unknown fixture %q (have %v)", name, FixtureNames())
	}
	if err := f(ss); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	log.Printf("Applied fixture %s: %d sites", name, ss.Len())
	return nil
}

// ManySiteCount is the number of sites seeded by ManySites.
const ManySiteCount = 47

var (
	fixtureTimezones  = []string{"UTC", "Europe/Berlin", "America/New_York", "Asia/Tokyo", "Australia/Sydney"}
	fixtureCurrencies = []string{"USD", "EUR", "JPY", "GBP"}
	fixtureEpoch      = time.Date(2013, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ManySites seeds "Demo Site" followed by SiteTest2 to SiteTest47, and resets
// the global settings.
func ManySites(ss *SiteStore) error {
	sites := make([]Site, 0, ManySiteCount)
	sites = append(sites, Site{
		ID:        1,
		Name:      "Demo Site",
		URLs:      []string{"http://piwik.net", "http://piwik.com"},
		Timezone:  "UTC",
		Currency:  "USD",
		Ecommerce: true,
		CreatedAt: fixtureEpoch.Format(time.DateOnly),
	})
	for id := 2; id <= ManySiteCount; id++ {
		s := Site{
			ID:        id,
			Name:      fmt.Sprintf("SiteTest%d", id),
			URLs:      []string{fmt.Sprintf("http://site%d.example.com", id)},
			Timezone:  fixtureTimezones[id%len(fixtureTimezones)],
			Currency:  fixtureCurrencies[id%len(fixtureCurrencies)],
			Ecommerce: id%3 == 0,
			CreatedAt: fixtureEpoch.AddDate(0, 0, 7*id).Format(time.DateOnly),
		}
		if id%5 == 0 {
			s.URLs = append(s.URLs, fmt.Sprintf("https://www.site%d.example.org", id))
		}
		if id%4 == 0 {
			s.ExcludedParameters = []string{"campaign", "ref"}
		}
		sites = append(sites, s)
	}
	if err := ss.Replace(sites); err != nil {
		return err
	}
	_, err := ss.SaveGlobalSettings(DefaultGlobalSettings())
	return err
}

// Empty removes every site and resets the global settings.
func Empty(ss *SiteStore) error {
	if err := ss.Replace(nil); err != nil {
		return err
	}
	_, err := ss.SaveGlobalSettings(DefaultGlobalSettings())
	return err
}
