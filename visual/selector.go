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
	"encoding/json"
	"fmt"
	"strings"
)

// Selector is a readiness predicate: a CSS selector, optionally restricted to
// elements whose text content contains a string.
type Selector struct {
	CSS      string
	Contains string
}

// DefaultReady matches the Sites Manager page heading.
var DefaultReady = MustSelector(".enrichedHeadline:contains(Manage Measurables)")

// CSS returns a selector without a text filter.
func CSS(css string) Selector {
	return Selector{CSS: css}
}

// Contains returns a selector that matches elements selected by css whose
// text contains text.
func Contains(css, text string) Selector {
	return Selector{CSS: css, Contains: text}
}

const containsPseudo = ":contains("

// ParseSelector parses the "css:contains(text)" notation. The :contains
// filter may only appear at the end of the selector. Quotes around text are
// optional.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	i := strings.Index(s, containsPseudo)
	if i < 0 {
		if s == "" {
			return Selector{}, fmt.Errorf("empty selector")
		}
		return CSS(s), nil
	}
	if !strings.HasSuffix(s, ")") {
		return Selector{}, fmt.Errorf("selector %q: :contains() must be the last part", s)
	}
	css := strings.TrimSpace(s[:i])
	text := s[i+len(containsPseudo) : len(s)-1]
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') && text[len(text)-1] == text[0] {
		text = text[1 : len(text)-1]
	}
	if css == "" {
		css = "*"
	}
	if text == "" {
		return Selector{}, fmt.Errorf("selector %q: empty :contains() text", s)
	}
	return Contains(css, text), nil
}

// MustSelector is like ParseSelector but panics on error.
func MustSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// IsZero reports whether the selector is unset.
func (s Selector) IsZero() bool {
	return s.CSS == "" && s.Contains == ""
}

func (s Selector) String() string {
	if s.Contains == "" {
		return s.CSS
	}
	return s.CSS + containsPseudo + s.Contains + ")"
}

// Expression returns a JavaScript expression that evaluates to true once a
// matching element exists in the DOM.
func (s Selector) Expression() string {
	css, _ := json.Marshal(s.CSS)
	text, _ := json.Marshal(s.Contains)
	return fmt.Sprintf(`((css, text) => {
		for (const el of document.querySelectorAll(css)) {
			if (!text || (el.textContent || '').includes(text)) {
				return true;
			}
		}
		return false;
	})(%s, %s)`, css, text)
}
