package match

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusFinished   Status = "finished"
)

// IsValid reports whether s is one of the canonical statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusRunning, StatusFinished:
		return true
	default:
		return false
	}
}

// VideogameSlug is the only title this deployment serves.
const VideogameSlug = "dota2"

// Opponent is one side of a match, with every field nullable because no
// provider guarantees any of them.
type Opponent struct {
	ID       *int64  `json:"id"`
	Name     *string `json:"name"`
	Acronym  *string `json:"acronym"`
	ImageURL *string `json:"image_url"`
}

// OpponentSlot wraps an Opponent, preserving the upstream envelope shape
// consumers already parse.
type OpponentSlot struct {
	Opponent Opponent `json:"opponent"`
}

type League struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"image_url"`
}

type Videogame struct {
	Slug string `json:"slug"`
}

// Summary is the canonical match entity every provider normalizes into.
// Score[i] always corresponds to Opponents[i].
type Summary struct {
	ID          int64           `json:"id"`
	Name        *string         `json:"name"`
	ScheduledAt *time.Time      `json:"scheduled_at"`
	BeginAt     *time.Time      `json:"begin_at"`
	Status      Status          `json:"status"`
	Opponents   []OpponentSlot  `json:"opponents"`
	Score       [2]*int         `json:"score"`
	Picks       json.RawMessage `json:"picks,omitempty"`
	Maps        json.RawMessage `json:"maps,omitempty"`
	Videogame   Videogame       `json:"videogame"`
	League      League          `json:"league"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// DeriveName builds a "A vs B" label from the first two opponents. Returns
// nil when either side has no name.
func DeriveName(opponents []OpponentSlot) *string {
	if len(opponents) < 2 {
		return nil
	}
	left, right := opponents[0].Opponent.Name, opponents[1].Opponent.Name
	if left == nil || right == nil {
		return nil
	}
	name := fmt.Sprintf("%s vs %s", *left, *right)
	return &name
}

// Dedupe drops matches whose ID was already seen. Concatenation order is
// the priority order, so first occurrence wins. Matches without an ID are
// kept as-is.
func Dedupe(in []Summary) []Summary {
	seen := make(map[int64]struct{}, len(in))
	out := make([]Summary, 0, len(in))
	for _, m := range in {
		if m.ID != 0 {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
		}
		out = append(out, m)
	}
	return out
}

// FilterStatus keeps only matches with exactly the given status.
func FilterStatus(in []Summary, status Status) []Summary {
	out := make([]Summary, 0, len(in))
	for _, m := range in {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

// Paginate slices a merged list; page is 1-based.
func Paginate(in []Summary, page, perPage int) []Summary {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return []Summary{}
	}
	start := (page - 1) * perPage
	if start >= len(in) {
		return []Summary{}
	}
	end := start + perPage
	if end > len(in) {
		end = len(in)
	}
	return in[start:end]
}
