package opendota

import (
	"encoding/json"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/nikdesigns/esports-track/internal/domain/hero"
	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/domain/team"
)

type proMatchPayload struct {
	MatchID        *int64  `json:"match_id"`
	MatchSeqNum    *int64  `json:"match_seq_num"`
	StartTime      *int64  `json:"start_time"`
	Duration       *int64  `json:"duration"`
	RadiantName    *string `json:"radiant_name"`
	RadiantTeamTag *string `json:"radiant_team_tag"`
	RadiantTeamNm  *string `json:"radiant_team_name"`
	RadiantTeamID  *int64  `json:"radiant_team_id"`
	RadiantLogo    *string `json:"radiant_logo"`
	RadiantScore   *int    `json:"radiant_score"`
	DireName       *string `json:"dire_name"`
	DireTeamTag    *string `json:"dire_team_tag"`
	DireTeamNm     *string `json:"dire_team_name"`
	DireTeamID     *int64  `json:"dire_team_id"`
	DireLogo       *string `json:"dire_logo"`
	DireScore      *int    `json:"dire_score"`
	LeagueName     *string `json:"league_name"`
	LeagueImage    *string `json:"league_image"`
}

// NormalizeProMatch maps one pro-match row onto the canonical shape. The
// feed is positional: Radiant is opponent 0, Dire is opponent 1.
func NormalizeProMatch(raw json.RawMessage, now time.Time) match.Summary {
	var p proMatchPayload
	_ = sonic.Unmarshal(raw, &p)

	radiant := sideOpponent(p.RadiantTeamID, p.RadiantLogo, p.RadiantTeamTag, "Radiant", p.RadiantName, p.RadiantTeamTag, p.RadiantTeamNm)
	dire := sideOpponent(p.DireTeamID, p.DireLogo, p.DireTeamTag, "Dire", p.DireName, p.DireTeamTag, p.DireTeamNm)

	out := match.Summary{
		Opponents: []match.OpponentSlot{{Opponent: radiant}, {Opponent: dire}},
		Videogame: match.Videogame{Slug: match.VideogameSlug},
		League:    match.League{Name: p.LeagueName, ImageURL: p.LeagueImage},
		Raw:       raw,
	}

	switch {
	case p.MatchID != nil:
		out.ID = *p.MatchID
	case p.MatchSeqNum != nil:
		out.ID = *p.MatchSeqNum
	}

	if p.StartTime != nil {
		start := time.Unix(*p.StartTime, 0).UTC()
		out.ScheduledAt = &start
		out.BeginAt = &start
	}

	out.Status = match.InferStatus(match.StatusHints{
		ScheduledAt:   out.ScheduledAt,
		StartTimeUnix: p.StartTime,
		Duration:      p.Duration,
	}, now)

	out.Score = [2]*int{p.RadiantScore, p.DireScore}

	name := *radiant.Name + " vs " + *dire.Name
	out.Name = &name
	return out
}

// sideOpponent resolves one side's fields, first non-nil name wins with a
// positional placeholder at the end.
func sideOpponent(id *int64, logo, tag *string, placeholder string, names ...*string) match.Opponent {
	out := match.Opponent{ID: id, Acronym: tag, ImageURL: logo}
	for _, candidate := range names {
		if candidate != nil && *candidate != "" {
			out.Name = candidate
			return out
		}
	}
	out.Name = &placeholder
	return out
}

type heroStatPayload struct {
	ID            *int64  `json:"id"`
	Name          *string `json:"name"`
	LocalizedName *string `json:"localized_name"`
	Pick          *int64  `json:"pick"`
	TotalPick     *int64  `json:"total_pick"`
	NumPick       *int64  `json:"num_pick"`
	Games         *int64  `json:"games"`
	Win           *int64  `json:"win"`
	TotalWin      *int64  `json:"total_win"`
	Wins          *int64  `json:"wins"`
	ProPick       *int64  `json:"pro_pick"`
	ProPickCount  *int64  `json:"pro_pick_count"`
	ProPickCamel  *int64  `json:"proPick"`
	ProWin        *int64  `json:"pro_win"`
	ProWinCount   *int64  `json:"pro_win_count"`
	ProWinCamel   *int64  `json:"proWin"`
}

// NormalizeHeroStat maps one heroStats row, coalescing the feed's several
// spellings of pick and win counts.
func NormalizeHeroStat(raw json.RawMessage) hero.Stat {
	var p heroStatPayload
	_ = sonic.Unmarshal(raw, &p)

	pick := coalesceCount(p.Pick, p.TotalPick, p.NumPick, p.Games)
	win := coalesceCount(p.Win, p.TotalWin, p.Wins)

	name := p.Name
	if name == nil {
		name = p.LocalizedName
	}

	return hero.Stat{
		ID:            p.ID,
		Name:          name,
		LocalizedName: p.LocalizedName,
		Pick:          pick,
		Win:           win,
		PickRateRaw:   pick,
		WinRate:       hero.WinRate(win, pick),
		ProPick:       coalesceCount(p.ProPick, p.ProPickCount, p.ProPickCamel),
		ProWin:        coalesceCount(p.ProWin, p.ProWinCount, p.ProWinCamel),
	}
}

func coalesceCount(values ...*int64) int64 {
	for _, value := range values {
		if value != nil {
			return *value
		}
	}
	return 0
}

type teamInfoPayload struct {
	TeamID       *int64   `json:"team_id"`
	TeamIDAlt    *int64   `json:"teamId"`
	Name         *string  `json:"name"`
	Tag          *string  `json:"tag"`
	LogoURL      *string  `json:"logo_url"`
	Logo         *string  `json:"logo"`
	Rating       *float64 `json:"rating"`
	Wins         *int64   `json:"wins"`
	Losses       *int64   `json:"losses"`
	TrackedUntil *string  `json:"tracked_until"`
}

// NormalizeTeamInfo maps a raw team profile onto the normalized shape.
func NormalizeTeamInfo(raw json.RawMessage) team.Info {
	var p teamInfoPayload
	_ = sonic.Unmarshal(raw, &p)

	out := team.Info{
		Tag:          p.Tag,
		Rating:       p.Rating,
		Wins:         p.Wins,
		Losses:       p.Losses,
		TrackedUntil: p.TrackedUntil,
	}
	if p.TeamID != nil {
		out.ID = p.TeamID
	} else {
		out.ID = p.TeamIDAlt
	}
	if p.Name != nil {
		out.Name = p.Name
	} else {
		out.Name = p.Tag
	}
	if p.LogoURL != nil {
		out.LogoURL = p.LogoURL
	} else {
		out.LogoURL = p.Logo
	}
	return out
}

type teamMatchPayload struct {
	MatchID          *int64  `json:"match_id"`
	StartTime        *int64  `json:"start_time"`
	RadiantWin       *bool   `json:"radiant_win"`
	Radiant          *bool   `json:"radiant"`
	OpposingTeamID   *int64  `json:"opposing_team_id"`
	OpposingTeamName *string `json:"opposing_team_name"`
	Score            *int64  `json:"score"`
}

// NormalizeRecentMatch maps one team match-history row, keeping the raw
// payload for fields the shape does not carry.
func NormalizeRecentMatch(raw json.RawMessage) team.RecentMatch {
	var p teamMatchPayload
	_ = sonic.Unmarshal(raw, &p)

	out := team.RecentMatch{
		StartTime:        p.StartTime,
		RadiantWin:       p.RadiantWin,
		Radiant:          p.Radiant,
		OpposingTeamID:   p.OpposingTeamID,
		OpposingTeamName: p.OpposingTeamName,
		Score:            p.Score,
		Raw:              raw,
	}
	if p.MatchID != nil {
		out.MatchID = *p.MatchID
	}
	return out
}
