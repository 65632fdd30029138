package hero

import (
	"math"
	"sort"
)

// Meta is the hero catalogue entry served by the heroes endpoint. Img and
// Icon are the provider-relative paths; the Full variants are absolute.
type Meta struct {
	ID            int64   `json:"id"`
	Name          *string `json:"name"`
	LocalizedName *string `json:"localized_name"`
	Img           *string `json:"img"`
	Icon          *string `json:"icon"`
	ImgFull       *string `json:"img_full"`
	IconFull      *string `json:"icon_full"`
}

// Stat is one hero's pick/win aggregate joined with catalogue imagery.
type Stat struct {
	ID            *int64  `json:"id"`
	Name          *string `json:"name"`
	LocalizedName *string `json:"localized_name"`
	ImgFull       *string `json:"img_full"`
	IconFull      *string `json:"icon_full"`
	Pick          int64   `json:"pick"`
	Win           int64   `json:"win"`
	PickRateRaw   int64   `json:"pick_rate_raw"`
	WinRate       float64 `json:"win_rate"`
	ProPick       int64   `json:"pro_pick"`
	ProWin        int64   `json:"pro_win"`
}

// WinRate returns win/pick as a percentage in [0,100] rounded to two
// decimals. Zero picks yield zero, never NaN.
func WinRate(win, pick int64) float64 {
	if pick <= 0 {
		return 0
	}
	return math.Round(float64(win)/float64(pick)*100*100) / 100
}

// SortByPickDesc orders stats by popularity, most picked first.
func SortByPickDesc(in []Stat) {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Pick > in[j].Pick
	})
}
