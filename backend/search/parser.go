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

// Package search parses the Sites Manager search box syntax.
package search

import (
	"slices"
	"strings"
	"unicode"
)

// Operator defines the type of comparison for a filter.
type Operator string

const (
	OpEqual          Operator = "="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpRange          Operator = ".." // for id:10..20
)

// Filter represents a structured criteria derived from the query string.
type Filter struct {
	Key      string   // e.g., "name", "id", "currency"
	Value    string   // e.g., "Demo", "23", "EUR"
	MaxValue string   // Used only for OpRange
	Operator Operator // e.g., "=", ">="
}

// Query represents the parsed search query.
type Query struct {
	Filters  []Filter
	FreeText []string
}

// Keys are the filter names the search box understands. Any other
// "word:rest" token is free text, so a typed URL such as
// http://example.com is searched for as text.
var Keys = []string{"id", "name", "url", "currency", "timezone", "ecommerce", "created"}

// Comparison prefixes, longest first.
var prefixOperators = []Operator{OpGreaterOrEqual, OpLessOrEqual, OpGreater, OpLess}

// Parse parses a search query string into a structured Query object.
// It handles:
// - quoted strings (name:"Demo Site")
// - key:value pairs for the keys in Keys
// - comparison operators (id:>=10, created:<2020)
// - ranges (id:10..20)
func Parse(input string) Query {
	q := Query{
		Filters:  make([]Filter, 0),
		FreeText: make([]string, 0),
	}
	for _, token := range tokenize(input) {
		if f, ok := parseFilter(token); ok {
			q.Filters = append(q.Filters, f)
			continue
		}
		q.FreeText = append(q.FreeText, removeQuotes(token))
	}
	return q
}

// parseFilter turns "key:value" into a Filter when key is one of Keys and
// value is not empty.
func parseFilter(token string) (Filter, bool) {
	key, val, ok := strings.Cut(token, ":")
	if !ok {
		return Filter{}, false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	val = strings.TrimSpace(val)
	if val == "" || !slices.Contains(Keys, key) {
		return Filter{}, false
	}

	if lo, hi, ok := strings.Cut(val, ".."); ok {
		return Filter{Key: key, Value: lo, MaxValue: hi, Operator: OpRange}, true
	}
	op := OpEqual
	for _, p := range prefixOperators {
		if rest, ok := strings.CutPrefix(val, string(p)); ok {
			op, val = p, rest
			break
		}
	}
	return Filter{Key: key, Value: removeQuotes(val), Operator: op}, true
}

// tokenize splits the string by spaces, respecting quotes.
func tokenize(input string) []string {
	var tokens []string
	var currentToken strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, r := range input {
		switch {
		case inQuote:
			if r == quoteChar {
				inQuote = false
				currentToken.WriteRune(r)
			} else {
				currentToken.WriteRune(r)
			}
		case unicode.IsSpace(r):
			if currentToken.Len() > 0 {
				tokens = append(tokens, currentToken.String())
				currentToken.Reset()
			}
		case r == '"' || r == '\'':
			inQuote = true
			quoteChar = r
			currentToken.WriteRune(r)
		default:
			currentToken.WriteRune(r)
		}
	}
	if currentToken.Len() > 0 {
		tokens = append(tokens, currentToken.String())
	}
	return tokens
}

func removeQuotes(s string) string {
	if len(s) >= 2 {
		first := s[0]
		last := s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
