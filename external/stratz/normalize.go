package stratz

import (
	"encoding/json"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/nikdesigns/esports-track/internal/domain/match"
)

type teamPayload struct {
	ID          *int64  `json:"id"`
	TeamID      *int64  `json:"teamId"`
	Name        *string `json:"name"`
	Acronym     *string `json:"acronym"`
	DisplayName *string `json:"displayName"`
	LogoURL     *string `json:"logoUrl"`
	ImageURL    *string `json:"imageUrl"`
}

type nodePayload struct {
	ID      *int64  `json:"id"`
	MatchID *int64  `json:"matchId"`
	Name    *string `json:"name"`
	League  *struct {
		Name     *string `json:"name"`
		ImageURL *string `json:"imageUrl"`
	} `json:"league"`
	Tournament *struct {
		Name *string `json:"name"`
	} `json:"tournament"`
	Teams         []teamPayload   `json:"teams"`
	TeamA         *teamPayload    `json:"teamA"`
	TeamB         *teamPayload    `json:"teamB"`
	ScheduledAt   *string         `json:"scheduledAt"`
	StartAt       *string         `json:"startAt"`
	BeginAt       *string         `json:"beginAt"`
	StartedAt     *string         `json:"startedAt"`
	Duration      *int64          `json:"duration"`
	MatchDuration *int64          `json:"matchDuration"`
	StartTimeUnix *int64          `json:"start_time_unix"`
	ScoreA        *int            `json:"scoreA"`
	ScoreB        *int            `json:"scoreB"`
	RadiantScore  *int            `json:"radiantScore"`
	DireScore     *int            `json:"direScore"`
	Score         []*int          `json:"score"`
	Draft         json.RawMessage `json:"draft"`
	Picks         json.RawMessage `json:"picks"`
	PicksBans     json.RawMessage `json:"picksBans"`
	Maps          json.RawMessage `json:"maps"`
	Games         json.RawMessage `json:"games"`
	MapResults    json.RawMessage `json:"mapResults"`
}

// NormalizeMatch maps one GraphQL node onto the canonical shape. The feed
// carries no usable status field, so status is always inferred.
func NormalizeMatch(raw json.RawMessage, now time.Time) match.Summary {
	var p nodePayload
	_ = sonic.Unmarshal(raw, &p)

	out := match.Summary{
		Videogame: match.Videogame{Slug: match.VideogameSlug},
		Raw:       raw,
	}

	switch {
	case p.ID != nil:
		out.ID = *p.ID
	case p.MatchID != nil:
		out.ID = *p.MatchID
	}

	switch {
	case len(p.Teams) > 0:
		for i := 0; i < len(p.Teams) && i < 2; i++ {
			out.Opponents = append(out.Opponents, match.OpponentSlot{Opponent: mapTeam(&p.Teams[i])})
		}
	case p.TeamA != nil || p.TeamB != nil:
		out.Opponents = []match.OpponentSlot{
			{Opponent: mapTeam(p.TeamA)},
			{Opponent: mapTeam(p.TeamB)},
		}
	}

	out.ScheduledAt = coalesceTime(p.ScheduledAt, p.StartAt)
	out.BeginAt = coalesceTime(p.BeginAt, p.StartedAt, p.StartAt)

	duration := p.Duration
	if duration == nil {
		duration = p.MatchDuration
	}
	out.Status = match.InferStatus(match.StatusHints{
		ScheduledAt:   out.ScheduledAt,
		StartTimeUnix: p.StartTimeUnix,
		Duration:      duration,
		BeginAt:       out.BeginAt,
	}, now)

	out.Score[0] = coalesceInt(p.ScoreA, p.RadiantScore, scoreAt(p.Score, 0))
	out.Score[1] = coalesceInt(p.ScoreB, p.DireScore, scoreAt(p.Score, 1))

	out.Picks = coalesceRaw(p.Draft, p.Picks, p.PicksBans)
	out.Maps = coalesceRaw(p.Maps, p.Games, p.MapResults)

	out.Name = p.Name
	if out.Name == nil {
		out.Name = derivedName(out.Opponents)
	}

	league := match.League{}
	if p.League != nil {
		league.Name = p.League.Name
		league.ImageURL = p.League.ImageURL
	}
	if league.Name == nil && p.Tournament != nil {
		league.Name = p.Tournament.Name
	}
	out.League = league

	return out
}

func mapTeam(t *teamPayload) match.Opponent {
	if t == nil {
		return match.Opponent{}
	}
	out := match.Opponent{Acronym: t.Acronym}
	if t.ID != nil {
		out.ID = t.ID
	} else {
		out.ID = t.TeamID
	}
	switch {
	case t.Name != nil:
		out.Name = t.Name
	case t.Acronym != nil:
		out.Name = t.Acronym
	default:
		out.Name = t.DisplayName
	}
	if t.LogoURL != nil {
		out.ImageURL = t.LogoURL
	} else {
		out.ImageURL = t.ImageURL
	}
	return out
}

// derivedName always labels both sides, substituting placeholders so the
// feed's frequently nameless nodes still render.
func derivedName(opponents []match.OpponentSlot) *string {
	left, right := "Team A", "Team B"
	if len(opponents) > 0 && opponents[0].Opponent.Name != nil {
		left = *opponents[0].Opponent.Name
	}
	if len(opponents) > 1 && opponents[1].Opponent.Name != nil {
		right = *opponents[1].Opponent.Name
	}
	name := left + " vs " + right
	return &name
}

func coalesceTime(values ...*string) *time.Time {
	for _, value := range values {
		if value == nil {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339, *value); err == nil {
			return &parsed
		}
	}
	return nil
}

func coalesceInt(values ...*int) *int {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}

func coalesceRaw(values ...json.RawMessage) json.RawMessage {
	for _, value := range values {
		if len(value) > 0 && string(value) != "null" {
			return value
		}
	}
	return nil
}

func scoreAt(score []*int, idx int) *int {
	if idx < len(score) {
		return score[idx]
	}
	return nil
}
