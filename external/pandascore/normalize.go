package pandascore

import (
	"encoding/json"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/nikdesigns/esports-track/internal/domain/match"
)

type opponentPayload struct {
	ID       *int64  `json:"id"`
	Name     *string `json:"name"`
	Acronym  *string `json:"acronym"`
	ImageURL *string `json:"image_url"`
}

type matchPayload struct {
	ID          *int64  `json:"id"`
	MatchID     *int64  `json:"match_id"`
	Name        *string `json:"name"`
	ScheduledAt *string `json:"scheduled_at"`
	BeginAt     *string `json:"begin_at"`
	Status      *string `json:"status"`
	Opponents   []struct {
		Opponent opponentPayload `json:"opponent"`
	} `json:"opponents"`
	Results []struct {
		TeamID *int64 `json:"team_id"`
		Score  *int   `json:"score"`
	} `json:"results"`
	Score     []*int `json:"score"`
	Videogame *struct {
		Slug *string `json:"slug"`
	} `json:"videogame"`
	VideogameSlug *string `json:"videogame_slug"`
	League        *struct {
		Name     *string `json:"name"`
		ImageURL *string `json:"image_url"`
	} `json:"league"`
}

// NormalizeMatch maps one provider match object onto the canonical shape.
// Pure and total: malformed input degrades field by field, never panics.
func NormalizeMatch(raw json.RawMessage, now time.Time) match.Summary {
	var p matchPayload
	_ = sonic.Unmarshal(raw, &p)

	out := match.Summary{
		ScheduledAt: parseTime(p.ScheduledAt),
		BeginAt:     parseTime(p.BeginAt),
		Videogame:   match.Videogame{Slug: match.VideogameSlug},
		Raw:         raw,
	}

	switch {
	case p.ID != nil:
		out.ID = *p.ID
	case p.MatchID != nil:
		out.ID = *p.MatchID
	}

	// scheduled_at falls back to begin_at so upcoming sorting has a key
	if out.ScheduledAt == nil {
		out.ScheduledAt = out.BeginAt
	}

	out.Opponents = make([]match.OpponentSlot, 0, len(p.Opponents))
	for _, slot := range p.Opponents {
		out.Opponents = append(out.Opponents, match.OpponentSlot{Opponent: match.Opponent{
			ID:       slot.Opponent.ID,
			Name:     slot.Opponent.Name,
			Acronym:  slot.Opponent.Acronym,
			ImageURL: slot.Opponent.ImageURL,
		}})
	}

	out.Name = p.Name
	if out.Name == nil {
		out.Name = match.DeriveName(out.Opponents)
	}

	if p.Status != nil && match.Status(*p.Status).IsValid() {
		out.Status = match.Status(*p.Status)
	} else {
		out.Status = match.InferStatus(match.StatusHints{
			ScheduledAt: out.ScheduledAt,
			BeginAt:     out.BeginAt,
		}, now)
	}

	out.Score = projectScore(p, out.Opponents)

	if p.Videogame != nil && p.Videogame.Slug != nil {
		out.Videogame.Slug = *p.Videogame.Slug
	} else if p.VideogameSlug != nil {
		out.Videogame.Slug = *p.VideogameSlug
	}

	if p.League != nil {
		out.League = match.League{Name: p.League.Name, ImageURL: p.League.ImageURL}
	}
	return out
}

// projectScore aligns provider scores to opponent positions. Results rows
// carry a team_id; when it matches an opponent, the score lands at that
// opponent's index regardless of row order.
func projectScore(p matchPayload, opponents []match.OpponentSlot) [2]*int {
	var score [2]*int

	if len(p.Results) > 0 {
		for i, result := range p.Results {
			idx := -1
			if result.TeamID != nil {
				for j, slot := range opponents {
					if j >= 2 {
						break
					}
					if slot.Opponent.ID != nil && *slot.Opponent.ID == *result.TeamID {
						idx = j
						break
					}
				}
			}
			if idx == -1 && i < 2 && score[i] == nil {
				idx = i
			}
			if idx >= 0 && idx < 2 {
				score[idx] = result.Score
			}
		}
		return score
	}

	for i := 0; i < len(p.Score) && i < 2; i++ {
		score[i] = p.Score[i]
	}
	return score
}

func parseTime(value *string) *time.Time {
	if value == nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil
	}
	return &parsed
}
