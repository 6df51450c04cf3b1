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
	"strconv"
	"strings"
)

// IsEmpty reports whether the query has neither filters nor free text.
func (q Query) IsEmpty() bool {
	return len(q.Filters) == 0 && len(q.FreeText) == 0
}

// MatchesText reports whether every free-text term is a case-insensitive
// substring of at least one of fields.
func (q Query) MatchesText(fields ...string) bool {
	for _, term := range q.FreeText {
		term = strings.ToLower(term)
		found := false
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchString applies the filter to a text field. OpEqual is a
// case-insensitive substring match. The other operators compare
// lexicographically, which orders ISO dates correctly.
func (f Filter) MatchString(s string) bool {
	ls, lv := strings.ToLower(s), strings.ToLower(f.Value)
	switch f.Operator {
	case OpEqual:
		return strings.Contains(ls, lv)
	case OpGreater:
		return ls > lv
	case OpGreaterOrEqual:
		return ls >= lv
	case OpLess:
		return ls < lv
	case OpLessOrEqual:
		return ls <= lv
	case OpRange:
		lmax := strings.ToLower(f.MaxValue)
		return (lv == "" || ls >= lv) && (lmax == "" || ls <= lmax)
	}
	return false
}

// MatchInt applies the filter to a numeric field. A filter value that is not
// a number never matches.
func (f Filter) MatchInt(n int) bool {
	if f.Operator == OpRange {
		lo, hi := true, true
		if f.Value != "" {
			v, err := strconv.Atoi(f.Value)
			if err != nil {
				return false
			}
			lo = n >= v
		}
		if f.MaxValue != "" {
			v, err := strconv.Atoi(f.MaxValue)
			if err != nil {
				return false
			}
			hi = n <= v
		}
		return lo && hi
	}
	v, err := strconv.Atoi(f.Value)
	if err != nil {
		return false
	}
	switch f.Operator {
	case OpEqual:
		return n == v
	case OpGreater:
		return n > v
	case OpGreaterOrEqual:
		return n >= v
	case OpLess:
		return n < v
	case OpLessOrEqual:
		return n <= v
	}
	return false
}

// MatchBool applies the filter to a flag. Accepted values are yes/no,
// true/false and 1/0.
func (f Filter) MatchBool(b bool) bool {
	switch strings.ToLower(f.Value) {
	case "yes", "true", "1":
		return b
	case "no", "false", "0":
		return !b
	}
	return false
}
