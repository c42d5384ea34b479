package domain

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MaxMatched is the number of pairs on the board; a perfect game.
	MaxMatched = 8
	// MaxElapsedMs caps the elapsed time at one hour.
	MaxElapsedMs = 3_600_000
	// MatchedWeight separates matched-pair tiers in the composite key. It must
	// stay above MaxElapsedMs so that time only ever breaks ties.
	MatchedWeight = 1_000_000_000
)

// NormalizeUsername returns the canonical board identity for raw: lower-cased,
// one leading '@' stripped, surrounding whitespace trimmed.
//
// Only a single '@' is removed, so "@@bob" canonicalizes to "@bob".
func NormalizeUsername(raw string) string {
	// cases.Caser is stateful; build one per call.
	s := strings.TrimSpace(cases.Lower(language.Und).String(raw))
	s = strings.TrimPrefix(s, "@")
	return strings.TrimSpace(s)
}

// ClampMatched floors v and clamps it to [0, MaxMatched].
func ClampMatched(v float64) int {
	return int(clampFloor(v, MaxMatched))
}

// ClampElapsed floors v and clamps it to [0, MaxElapsedMs].
func ClampElapsed(v float64) int64 {
	return int64(clampFloor(v, MaxElapsedMs))
}

func clampFloor(v, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(hi, math.Floor(v)))
}

// Composite collapses (matched, elapsedMs) into one descending-sortable key:
// more matched pairs always win, and among equal counts the faster time wins.
func Composite(matched int, elapsedMs int64) int64 {
	return int64(matched)*MatchedWeight - elapsedMs
}

// Normalize canonicalizes a submission into a Score. UpdatedAt is left zero;
// the caller stamps it when the score is accepted.
func Normalize(sub Submission) Score {
	m := ClampMatched(sub.Matched)
	t := ClampElapsed(sub.TimeMs)
	return Score{
		Username:  NormalizeUsername(sub.Username),
		Matched:   m,
		ElapsedMs: t,
		Composite: Composite(m, t),
	}
}
