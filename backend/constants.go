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

// Defaults for new sites and fresh installations.
const (
	DefaultTimezone = "UTC"
	DefaultCurrency = "USD"
)

// Global URL parameter exclusion types
const (
	ExclusionCommonSession  = "common_session_parameters"
	ExclusionRecommendedPII = "matomo_recommended_pii"
	ExclusionCustom         = "custom"
	defaultExclusionType    = ExclusionCommonSession
)

// Input limits
const (
	maxSiteNameLength  = 90
	maxURLLength       = 2048
	maxParameterLength = 100
)

// API pagination
const (
	defaultPageSize = 5
	maxPageSize     = 100
	maxBodySize     = 1 << 20
)
