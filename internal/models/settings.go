package models

import "time"

// SearchSettings is the singleton configuration of the search pipeline.
// It is written by the admin surface; the agent only reads it.
type SearchSettings struct {
	SearchText            string   `json:"search_text"`
	AreaIDs               []string `json:"area_ids"`
	SalaryFrom            *int     `json:"salary_from,omitempty"`
	Experience            string   `json:"experience"`
	Schedule              string   `json:"schedule"`
	Employment            string   `json:"employment"`
	OnlyWithSalary        bool     `json:"only_with_salary"`
	AutoTagsEnabled       bool     `json:"auto_tags_enabled"`
	MinAIScore            int      `json:"min_ai_score"`
	AutoApplyEnabled      bool     `json:"auto_apply_enabled"`
	SearchIntervalMinutes int      `json:"search_interval_minutes"`
}

// TagTypeQuery marks tags used as search queries.
const TagTypeQuery = "query"

// SearchTag is a persisted counter-bearing search query.
type SearchTag struct {
	ID           int64  `json:"id"`
	TagType      string `json:"tag_type"`
	Value        string `json:"value"`
	IsActive     bool   `json:"is_active"`
	SearchCount  int    `json:"search_count"`
	FoundCount   int    `json:"found_count"`
	AppliedCount int    `json:"applied_count"`
}

// OAuthTokenPair is one stored token pair. Pairs are append-only;
// only the most recently created one is authoritative.
type OAuthTokenPair struct {
	ID           int64     `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
