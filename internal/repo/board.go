// Package repo implements the persistence layer for the leaderboard, backed
// by Redis. This file provides the board operations: the atomic conditional
// score write, the ranked page read, and detail resolution.
//
// Functions follow the "thin repository" approach: ranking rules (clamping,
// composite keys) live in domain and services; the repository only persists
// and queries.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/lamu-leaderboard/internal/domain"
)

// submitScript compares and sets in one server-side step so that concurrent
// submissions for the same username can never overwrite a better score.
//
//	KEYS[1] board zset, KEYS[2] detail hash
//	ARGV    username, composite, matched, elapsedMs, updatedAt
//
// Returns 1 when the entry was written, 0 when the stored key was as good.
const submitScript = `
local cur = redis.call('ZSCORE', KEYS[1], ARGV[1])
if cur and tonumber(cur) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
redis.call('HSET', KEYS[2], 'username', ARGV[1], 'score', ARGV[3], 'elapsedMs', ARGV[4], 'updatedAt', ARGV[5])
return 1
`

// SubmitIfBetter writes sc to the board and its detail record when the
// username has no entry yet or sc.Composite is strictly greater than the
// stored key. Both writes happen atomically or not at all.
func (s *Store) SubmitIfBetter(ctx context.Context, sc domain.Score) (updated bool, err error) {
	if !s.ready() {
		return false, ErrNotConfigured
	}
	defer observe("submit", time.Now(), &err)

	n, err := s.submit.Run(ctx, s.rdb,
		[]string{s.boardKey(), s.detailKey(sc.Username)},
		sc.Username, sc.Composite, sc.Matched, sc.ElapsedMs, sc.UpdatedAt,
	).Int()
	if err != nil {
		return false, fmt.Errorf("submit score: %w", err)
	}
	return n == 1, nil
}

// BestScore returns the stored composite key for username, or ErrNotFound.
func (s *Store) BestScore(ctx context.Context, username string) (score int64, err error) {
	if !s.ready() {
		return 0, ErrNotConfigured
	}
	defer observe("best_score", time.Now(), &err)

	f, err := s.rdb.ZScore(ctx, s.boardKey(), username).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// RankedPage is the raw result of a board window query.
type RankedPage struct {
	Members []string // usernames, best first
	Total   int64    // board size
	Rank    *int64   // 1-based rank of the requested user, nil when absent
}

// Page returns up to count members starting at rank offset start (0 = best),
// the board size, and, when rankFor is non-empty, that user's 1-based rank.
// All three reads go out in a single pipelined round-trip.
func (s *Store) Page(ctx context.Context, start, count int, rankFor string) (page RankedPage, err error) {
	if !s.ready() {
		return RankedPage{}, ErrNotConfigured
	}
	defer observe("page", time.Now(), &err)

	board := s.boardKey()
	pipe := s.rdb.Pipeline()
	card := pipe.ZCard(ctx, board)
	rng := pipe.ZRevRange(ctx, board, int64(start), int64(start+count-1))
	var rank *redis.IntCmd
	if rankFor != "" {
		rank = pipe.ZRevRank(ctx, board, rankFor)
	}
	// A missing rankFor member surfaces as redis.Nil; commands are checked below.
	if _, err = pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return RankedPage{}, fmt.Errorf("read board: %w", err)
	}

	if page.Total, err = card.Result(); err != nil {
		return RankedPage{}, fmt.Errorf("count board: %w", err)
	}
	if page.Members, err = rng.Result(); err != nil {
		return RankedPage{}, fmt.Errorf("range board: %w", err)
	}
	if rank != nil {
		r, rerr := rank.Result()
		switch {
		case errors.Is(rerr, redis.Nil):
		case rerr != nil:
			return RankedPage{}, fmt.Errorf("rank %q: %w", rankFor, rerr)
		default:
			r++
			page.Rank = &r
		}
	}
	return page, nil
}

// Details resolves the display record of each member with one pipelined
// HMGET per member. The result has the same length and order as members.
// Missing records fall back to the member name with zeroed numbers.
func (s *Store) Details(ctx context.Context, members []string) (items []domain.Entry, err error) {
	if !s.ready() {
		return nil, ErrNotConfigured
	}
	if len(members) == 0 {
		return []domain.Entry{}, nil
	}
	defer observe("details", time.Now(), &err)

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.SliceCmd, len(members))
	for i, u := range members {
		cmds[i] = pipe.HMGet(ctx, s.detailKey(u), "username", "score", "elapsedMs", "updatedAt")
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read details: %w", err)
	}

	items = make([]domain.Entry, len(members))
	for i, u := range members {
		vals := cmds[i].Val()
		e := domain.Entry{Username: u}
		if name := field(vals, 0); name != "" {
			e.Username = name
		}
		e.Score = int(parseInt(field(vals, 1)))
		e.ElapsedMs = parseInt(field(vals, 2))
		e.UpdatedAt = parseInt(field(vals, 3))
		items[i] = e
	}
	return items, nil
}

// field returns vals[i] as a string, or "" when absent or nil.
func field(vals []interface{}, i int) string {
	if i >= len(vals) {
		return ""
	}
	s, _ := vals[i].(string)
	return s
}

// parseInt reads a base-10 integer, tolerating values written as floats.
// Unparseable input yields 0.
func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
