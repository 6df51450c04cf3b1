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
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"
)

// currencyRegex matches ISO 4217 codes.
var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// isValidCurrency checks if the string is a three letter currency code.
func isValidCurrency(c string) bool {
	return currencyRegex.MatchString(c)
}

// isValidTimezone checks if the string names an IANA time zone.
func isValidTimezone(tz string) bool {
	_, err := time.LoadLocation(tz)
	return err == nil
}

// validateStringLen checks if the string length is within the limit.
func validateStringLen(s string, max int, name string) error {
	if len(s) > max {
		return fmt.Errorf("%s too long (max %d chars)", name, max)
	}
	return nil
}

// cleanParameters trims, drops empties and de-duplicates query parameter
// names, keeping the first occurrence.
func cleanParameters(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(out, p) {
			continue
		}
		if err := validateStringLen(p, maxParameterLength, "parameter"); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// validateSite checks a site submitted through the API and normalizes it in
// place.
func validateSite(s *Site) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSite)
	}
	if err := validateStringLen(s.Name, maxSiteNameLength, "name"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSite, err)
	}
	if len(s.URLs) == 0 {
		return fmt.Errorf("%w: at least one URL is required", ErrInvalidSite)
	}
	urls := make([]string, len(s.URLs))
	for i, u := range s.URLs {
		u = strings.TrimSpace(u)
		if err := validateStringLen(u, maxURLLength, "url"); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSite, err)
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("%w: bad URL %q", ErrInvalidSite, u)
		}
		urls[i] = u
	}
	s.URLs = urls
	params, err := cleanParameters(s.ExcludedParameters)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSite, err)
	}
	s.ExcludedParameters = params
	s.normalize()
	if !isValidTimezone(s.Timezone) {
		return fmt.Errorf("%w: timezone %q", ErrInvalidSite, s.Timezone)
	}
	s.Currency = strings.ToUpper(s.Currency)
	if !isValidCurrency(s.Currency) {
		return fmt.Errorf("%w: currency %q", ErrInvalidSite, s.Currency)
	}
	return nil
}

// Validate checks and normalizes the settings in place.
func (g *GlobalSettings) Validate() error {
	switch g.ExclusionType {
	case "":
		g.ExclusionType = defaultExclusionType
	case ExclusionCommonSession, ExclusionRecommendedPII, ExclusionCustom:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidExclusion, g.ExclusionType)
	}
	params, err := cleanParameters(g.CustomParameters)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCustomParams, err)
	}
	g.CustomParameters = params
	if g.DefaultTimezone == "" {
		g.DefaultTimezone = DefaultTimezone
	}
	if !isValidTimezone(g.DefaultTimezone) {
		return fmt.Errorf("%w: timezone %q", ErrInvalidSettings, g.DefaultTimezone)
	}
	if g.DefaultCurrency == "" {
		g.DefaultCurrency = DefaultCurrency
	}
	g.DefaultCurrency = strings.ToUpper(g.DefaultCurrency)
	if !isValidCurrency(g.DefaultCurrency) {
		return fmt.Errorf("%w: currency %q", ErrInvalidSettings, g.DefaultCurrency)
	}
	return nil
}
