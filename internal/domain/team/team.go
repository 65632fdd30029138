package team

import "encoding/json"

// Ranking is one OpenDota team-rating row.
type Ranking struct {
	TeamID        int64    `json:"team_id"`
	Rating        *float64 `json:"rating"`
	Wins          *int64   `json:"wins"`
	Losses        *int64   `json:"losses"`
	LastMatchTime *int64   `json:"last_match_time"`
	Name          *string  `json:"name"`
	Tag           *string  `json:"tag"`
	LogoURL       *string  `json:"logo_url"`
}

// Info is the normalized team profile.
type Info struct {
	ID           *int64   `json:"id"`
	Name         *string  `json:"name"`
	Tag          *string  `json:"tag"`
	LogoURL      *string  `json:"logo_url"`
	Rating       *float64 `json:"rating"`
	Wins         *int64   `json:"wins"`
	Losses       *int64   `json:"losses"`
	TrackedUntil *string  `json:"tracked_until"`
}

// RecentMatch is one row of a team's recent match history.
type RecentMatch struct {
	MatchID          int64           `json:"match_id"`
	StartTime        *int64          `json:"start_time"`
	RadiantWin       *bool           `json:"radiant_win"`
	Radiant          *bool           `json:"radiant"`
	OpposingTeamID   *int64          `json:"opposing_team_id"`
	OpposingTeamName *string         `json:"opposing_team_name"`
	Score            *int64          `json:"score"`
	Raw              json.RawMessage `json:"raw,omitempty"`
}

// Profile is the team detail response: profile plus recent history.
type Profile struct {
	Team          Info          `json:"team"`
	RecentMatches []RecentMatch `json:"recent_matches"`
}

// Snapshot is the best-effort variant: raw provider payloads, nulls on
// failure, with a fetch timestamp.
type Snapshot struct {
	Team          json.RawMessage   `json:"team"`
	RecentMatches []json.RawMessage `json:"recentMatches"`
	FetchedAt     int64             `json:"fetchedAt"`
}
