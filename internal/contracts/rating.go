package contracts

import "time"

// RSRatingRecord is the per-symbol Relative-Strength rating for one date.
// Created once per (symbol, date); a re-run overwrites the whole date partition.
// ⭐ SSOT: RS 레이팅 산출물
type RSRatingRecord struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`

	// Per-horizon cross-sectional ranks (1-99)
	RS1M  int `json:"rs_1m"`
	RS3M  int `json:"rs_3m"`
	RS6M  int `json:"rs_6m"`
	RS9M  int `json:"rs_9m"`
	RS12M int `json:"rs_12m"`

	// Weighted composite of the horizon ranks (1-99, fractional)
	RSScore float64 `json:"rs_score"`

	// Cross-sectional percentile of RSScore before/after the penalty
	RSRatingRaw int     `json:"rs_rating_raw"` // [1,99]
	Penalty     float64 `json:"penalty"`       // (0,1], multiplicative
	RSRating    int     `json:"rs_rating"`     // round(raw*penalty) clamped to [1,99]
}

// RatingSet holds all RS ratings for one date
type RatingSet struct {
	Date    time.Time                  `json:"date"`
	Ratings map[string]*RSRatingRecord `json:"ratings"` // key: symbol
}

// Get returns the rating for a symbol
func (s *RatingSet) Get(symbol string) (*RSRatingRecord, bool) {
	r, ok := s.Ratings[symbol]
	return r, ok
}

// Count returns the number of rated symbols
func (s *RatingSet) Count() int {
	return len(s.Ratings)
}
