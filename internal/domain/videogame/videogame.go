package videogame

import "sort"

// Game is a title known to the commercial provider.
type Game struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SortByName orders games alphabetically for display.
func SortByName(in []Game) {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Name < in[j].Name
	})
}
