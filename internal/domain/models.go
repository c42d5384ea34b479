// Package domain defines the core leaderboard models shared by the
// repository, service, and HTTP layers, together with the ranking rules that
// turn a raw submission into a sortable board entry.
package domain

// Submission is a score report as received from a client, before any
// normalization. Matched and TimeMs are kept as float64 because clients send
// arbitrary JSON numbers; they are floored and clamped by Normalize.
type Submission struct {
	Username string
	Matched  float64
	TimeMs   float64
}

// Score is a normalized submission ready to be compared against the board.
//
// Fields:
//   - Username: canonical username (see NormalizeUsername).
//   - Matched: matched-pairs count in [0, MaxMatched].
//   - ElapsedMs: elapsed time in milliseconds in [0, MaxElapsedMs].
//   - Composite: the board score, see Composite.
//   - UpdatedAt: epoch milliseconds stamped when the score is written.
type Score struct {
	Username  string
	Matched   int
	ElapsedMs int64
	Composite int64
	UpdatedAt int64
}

// Entry is the display record of one player on a leaderboard page. It is
// resolved from the per-player detail hash.
type Entry struct {
	Username  string `json:"username"  example:"bob"`
	Score     int    `json:"score"     example:"5"`
	ElapsedMs int64  `json:"elapsedMs" example:"12000"`
	UpdatedAt int64  `json:"updatedAt" example:"1760870400000"`
}

// Page is a window of the ranked board.
//
// Rank is the 1-based position of the player requested via rankFor, or nil
// when no player was requested or the player has no entry.
type Page struct {
	Items []Entry `json:"items"`
	Start int     `json:"start" example:"0"`
	Count int     `json:"count" example:"50"`
	Total int64   `json:"total" example:"120"`
	Rank  *int64  `json:"rank"  example:"1"`
}
