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

package search

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Query
	}{
		{
			input: "name:Demo",
			expected: Query{
				Filters: []Filter{
					{Key: "name", Value: "Demo", Operator: OpEqual},
				},
				FreeText: []string{},
			},
		},
		{
			input: "name:\"Demo Site\" url:\"piwik.net\"",
			expected: Query{
				Filters: []Filter{
					{Key: "name", Value: "Demo Site", Operator: OpEqual},
					{Key: "url", Value: "piwik.net", Operator: OpEqual},
				},
				FreeText: []string{},
			},
		},
		{
			input: "ecommerce:yes SiteTes",
			expected: Query{
				Filters: []Filter{
					{Key: "ecommerce", Value: "yes", Operator: OpEqual},
				},
				FreeText: []string{"SiteTes"},
			},
		},
		{
			input: "created:>=\"2025-01-01\"",
			expected: Query{
				Filters: []Filter{
					{Key: "created", Value: "2025-01-01", Operator: OpGreaterOrEqual},
				},
				FreeText: []string{},
			},
		},
		{
			input: "id:<26",
			expected: Query{
				Filters: []Filter{
					{Key: "id", Value: "26", Operator: OpLess},
				},
				FreeText: []string{},
			},
		},
		{
			input: "id:10..20",
			expected: Query{
				Filters: []Filter{
					{Key: "id", Value: "10", MaxValue: "20", Operator: OpRange},
				},
				FreeText: []string{},
			},
		},
		{
			input: "mixed query \"free text\" key:val",
			expected: Query{
				Filters:  []Filter{},
				FreeText: []string{"mixed", "query", "free text", "key:val"},
			},
		},
		{
			input: "broken:range:..",
			expected: Query{
				Filters:  []Filter{},
				FreeText: []string{"broken:range:.."},
			},
		},
		{
			input: "http://site23.example.com", // Unknown key -> FreeText
			expected: Query{
				Filters:  []Filter{},
				FreeText: []string{"http://site23.example.com"},
			},
		},
		{
			input: "URL:http://piwik.net:8080 demo",
			expected: Query{
				Filters: []Filter{
					{Key: "url", Value: "http://piwik.net:8080", Operator: OpEqual},
				},
				FreeText: []string{"demo"},
			},
		},
		{
			input: "name:\"12:00\"",
			expected: Query{
				Filters: []Filter{
					{Key: "name", Value: "12:00", Operator: OpEqual},
				},
				FreeText: []string{},
			},
		},
		{
			input: "name:",
			expected: Query{
				Filters:  []Filter{},
				FreeText: []string{"name:"},
			},
		},
	}

	for _, tt := range tests {
		got := Parse(tt.input)
		// Helper to compare slices empty vs nil
		if len(got.FreeText) == 0 && len(tt.expected.FreeText) == 0 {
			got.FreeText = []string{}
			tt.expected.FreeText = []string{}
		}
		if len(got.Filters) == 0 && len(tt.expected.Filters) == 0 {
			got.Filters = []Filter{}
			tt.expected.Filters = []Filter{}
		}

		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Parse(%q)\ngot  %#v\nwant %#v", tt.input, got, tt.expected)
		}
	}
}
