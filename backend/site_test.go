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
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestGlobalSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      GlobalSettings
		wantErr error
		check   func(t *testing.T, g GlobalSettings)
	}{
		{
			name: "empty gets defaults",
			in:   GlobalSettings{},
			check: func(t *testing.T, g GlobalSettings) {
				if g.ExclusionType != ExclusionCommonSession || g.DefaultTimezone != "UTC" || g.DefaultCurrency != "USD" {
					t.Errorf("got %+v", g)
				}
			},
		},
		{
			name: "custom params trimmed and deduplicated",
			in:   GlobalSettings{ExclusionType: ExclusionCustom, CustomParameters: []string{" a ", "b", "a", "", "  "}},
			check: func(t *testing.T, g GlobalSettings) {
				if !slices.Equal(g.CustomParameters, []string{"a", "b"}) {
					t.Errorf("CustomParameters = %q", g.CustomParameters)
				}
			},
		},
		{
			name:    "unknown exclusion type",
			in:      GlobalSettings{ExclusionType: "everything"},
			wantErr: ErrInvalidExclusion,
		},
		{
			name:    "parameter too long",
			in:      GlobalSettings{CustomParameters: []string{strings.Repeat("x", maxParameterLength+1)}},
			wantErr: ErrInvalidCustomParams,
		},
		{
			name:    "bad timezone",
			in:      GlobalSettings{DefaultTimezone: "Nowhere/Land"},
			wantErr: ErrInvalidSettings,
		},
		{
			name:    "bad currency",
			in:      GlobalSettings{DefaultCurrency: "EURO"},
			wantErr: ErrInvalidSettings,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.in
			err := g.Validate()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if errors.Is(err, ErrInvalidSite) {
					t.Errorf("settings error %v reads as a site error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			tc.check(t, g)
		})
	}
}

func TestGlobalSettingsExcludedParameters(t *testing.T) {
	common := GlobalSettings{ExclusionType: ExclusionCommonSession}.ExcludedParameters()
	if !slices.Equal(common, CommonSessionParameters) {
		t.Errorf("common = %v", common)
	}

	pii := GlobalSettings{ExclusionType: ExclusionRecommendedPII}.ExcludedParameters()
	if len(pii) != len(CommonSessionParameters)+len(RecommendedParameters) {
		t.Errorf("pii has %d entries", len(pii))
	}

	custom := GlobalSettings{ExclusionType: ExclusionCustom, CustomParameters: []string{"foo"}}.ExcludedParameters()
	if custom[len(custom)-1] != "foo" {
		t.Errorf("custom = %v", custom)
	}
	// Appending must not alias the package-level list.
	if len(CommonSessionParameters) != 7 {
		t.Errorf("CommonSessionParameters was modified: %v", CommonSessionParameters)
	}
}

func TestSiteNormalize(t *testing.T) {
	var s Site
	s.normalize()
	if s.URLs == nil || s.ExcludedParameters == nil {
		t.Error("nil slices survive normalize")
	}
	if s.Timezone != "UTC" || s.Currency != "USD" {
		t.Errorf("defaults = %q %q", s.Timezone, s.Currency)
	}
}
