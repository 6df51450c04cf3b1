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
	"strings"
	"testing"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{in: "#content", want: Selector{CSS: "#content"}},
		{in: ".enrichedHeadline:contains(Manage Measurables)", want: Selector{CSS: ".enrichedHeadline", Contains: "Manage Measurables"}},
		{in: "h2:contains('Global websites settings')", want: Selector{CSS: "h2", Contains: "Global websites settings"}},
		{in: `h2:contains("x")`, want: Selector{CSS: "h2", Contains: "x"}},
		{in: ":contains(foo)", want: Selector{CSS: "*", Contains: "foo"}},
		{in: "  .a .b  ", want: Selector{CSS: ".a .b"}},
		{in: "", wantErr: true},
		{in: "h2:contains()", wantErr: true},
		{in: "h2:contains(x) span", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseSelector(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSelector(%q) = %+v, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSelector(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSelector(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestSelectorString(t *testing.T) {
	for _, s := range []string{"#content", "h2:contains(Global websites settings)"} {
		if got := MustSelector(s).String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestSelectorExpressionQuoting(t *testing.T) {
	expr := Contains(`a[title="x"]`, `it's "quoted"`).Expression()
	if !strings.Contains(expr, `"a[title=\"x\"]"`) {
		t.Errorf("css not JSON-quoted in %s", expr)
	}
	if !strings.Contains(expr, `"it's \"quoted\""`) {
		t.Errorf("text not JSON-quoted in %s", expr)
	}
	if !strings.Contains(CSS("#content").Expression(), `("#content", "")`) {
		t.Errorf("plain selector should pass empty text")
	}
}

func TestMustSelectorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustSelector did not panic")
		}
	}()
	MustSelector("")
}
