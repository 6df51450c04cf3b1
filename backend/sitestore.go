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
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/ttbt-io/sitesmanager-ui/backend/search"
)

const (
	sitesFile          = "sites.json"
	globalSettingsFile = "global_settings.json"
)

type sitesDocument struct {
	NextID int    `json:"nextId"`
	Sites  []Site `json:"sites"`
}

// SiteStore keeps all sites in memory and persists every change through
// storage.
type SiteStore struct {
	storage *storage.Storage

	mu       sync.RWMutex
	sites    []Site // sorted by ID
	nextID   int
	settings GlobalSettings
}

// NewSiteStore loads the sites and global settings saved in s, if any.
func NewSiteStore(s *storage.Storage) (*SiteStore, error) {
	ss := &SiteStore{
		storage:  s,
		nextID:   1,
		settings: DefaultGlobalSettings(),
	}

	var doc sitesDocument
	if err := s.ReadDataFile(sitesFile, &doc); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("ReadDataFile(%s): %w", sitesFile, err)
		}
	} else {
		for i := range doc.Sites {
			doc.Sites[i].normalize()
		}
		sort.Slice(doc.Sites, func(i, j int) bool { return doc.Sites[i].ID < doc.Sites[j].ID })
		ss.sites = doc.Sites
		ss.nextID = max(doc.NextID, 1)
		if n := len(ss.sites); n > 0 && ss.sites[n-1].ID >= ss.nextID {
			ss.nextID = ss.sites[n-1].ID + 1
		}
	}

	var gs GlobalSettings
	if err := s.ReadDataFile(globalSettingsFile, &gs); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("ReadDataFile(%s): %w", globalSettingsFile, err)
		}
	} else {
		if err := gs.Validate(); err != nil {
			return nil, fmt.Errorf("stored global settings: %w", err)
		}
		ss.settings = gs
	}
	return ss, nil
}

// writeSites persists a candidate site list. The caller holds mu and only
// installs sites and nextID after the write succeeds.
func (ss *SiteStore) writeSites(sites []Site, nextID int) error {
	doc := sitesDocument{NextID: nextID, Sites: sites}
	if err := ss.storage.SaveDataFile(sitesFile, doc); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

// Len returns the number of sites.
func (ss *SiteStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sites)
}

// Get returns the site with the given ID.
func (ss *SiteStore) Get(id int) (Site, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	i, ok := slices.BinarySearchFunc(ss.sites, id, func(s Site, id int) int { return s.ID - id })
	if !ok {
		return Site{}, fmt.Errorf("%w: %d", ErrSiteNotFound, id)
	}
	return cloneSite(ss.sites[i]), nil
}

// List returns the page of sites matching q, the number of matches and the
// effective offset. The offset is clamped to the last page.
func (ss *SiteStore) List(q search.Query, offset, limit int) ([]Site, int, int) {
	limit = max(limit, 1)
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var matches []Site
	all := q.IsEmpty()
	for _, s := range ss.sites {
		if all || matchesSite(q, s) {
			matches = append(matches, s)
		}
	}
	total := len(matches)
	offset = clampOffset(offset, limit, total)

	page := make([]Site, 0, limit)
	for i := offset; i < total && i < offset+limit; i++ {
		page = append(page, cloneSite(matches[i]))
	}
	return page, total, offset
}

// clampOffset moves an offset past the end back to the start of the last
// page.
func clampOffset(offset, limit, total int) int {
	if offset < 0 || total == 0 {
		return 0
	}
	if offset >= total {
		offset = (total - 1) / limit * limit
	}
	return offset
}

// Save creates the site if its ID is zero and replaces it otherwise.
func (ss *SiteStore) Save(s Site) (Site, error) {
	if err := validateSite(&s); err != nil {
		return Site{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	nextID := ss.nextID
	if s.ID == 0 {
		s.ID = nextID
		if s.CreatedAt == "" {
			s.CreatedAt = time.Now().UTC().Format(time.DateOnly)
		}
	}
	sites := slices.Clone(ss.sites)
	i, ok := slices.BinarySearchFunc(sites, s.ID, func(e Site, id int) int { return e.ID - id })
	if ok {
		if s.CreatedAt == "" {
			s.CreatedAt = sites[i].CreatedAt
		}
		sites[i] = cloneSite(s)
	} else {
		sites = slices.Insert(sites, i, cloneSite(s))
	}
	if s.ID >= nextID {
		nextID = s.ID + 1
	}
	if err := ss.writeSites(sites, nextID); err != nil {
		return Site{}, err
	}
	ss.sites, ss.nextID = sites, nextID
	return cloneSite(s), nil
}

// Replace swaps the whole site list. IDs must be unique and positive.
func (ss *SiteStore) Replace(sites []Site) error {
	next := make([]Site, 0, len(sites))
	seen := make(map[int]bool, len(sites))
	for _, s := range sites {
		if s.ID <= 0 || seen[s.ID] {
			return fmt.Errorf("%w: bad or duplicate id %d", ErrInvalidSite, s.ID)
		}
		seen[s.ID] = true
		if err := validateSite(&s); err != nil {
			return err
		}
		next = append(next, cloneSite(s))
	}
	sort.Slice(next, func(i, j int) bool { return next[i].ID < next[j].ID })
	nextID := 1
	if n := len(next); n > 0 {
		nextID = next[n-1].ID + 1
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if err := ss.writeSites(next, nextID); err != nil {
		return err
	}
	ss.sites, ss.nextID = next, nextID
	return nil
}

// GlobalSettings returns a copy of the global settings.
func (ss *SiteStore) GlobalSettings() GlobalSettings {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	gs := ss.settings
	gs.CustomParameters = slices.Clone(gs.CustomParameters)
	return gs
}

// SaveGlobalSettings validates and stores gs.
func (ss *SiteStore) SaveGlobalSettings(gs GlobalSettings) (GlobalSettings, error) {
	if err := gs.Validate(); err != nil {
		return GlobalSettings{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if err := ss.storage.SaveDataFile(globalSettingsFile, gs); err != nil {
		return GlobalSettings{}, fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	ss.settings = gs
	return gs, nil
}

func cloneSite(s Site) Site {
	s.URLs = slices.Clone(s.URLs)
	s.ExcludedParameters = slices.Clone(s.ExcludedParameters)
	s.normalize()
	return s
}

// matchesSite applies a parsed search query. Free text matches the name or
// any URL.
func matchesSite(q search.Query, s Site) bool {
	if !q.MatchesText(append([]string{s.Name}, s.URLs...)...) {
		return false
	}
	for _, f := range q.Filters {
		var ok bool
		switch f.Key {
		case "id":
			ok = f.MatchInt(s.ID)
		case "name":
			ok = f.MatchString(s.Name)
		case "url":
			ok = slices.ContainsFunc(s.URLs, f.MatchString)
		case "currency":
			ok = strings.EqualFold(s.Currency, f.Value)
		case "timezone":
			ok = f.MatchString(s.Timezone)
		case "ecommerce":
			ok = f.MatchBool(s.Ecommerce)
		case "created":
			ok = f.MatchString(s.CreatedAt)
		}
		if !ok {
			return false
		}
	}
	return true
}
