// Package services – LeaderboardService
//
// This file implements the LeaderboardService, which reads a window of the
// ranked board, resolves each entry's display details, and optionally looks
// up one player's rank.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/lamu-leaderboard/internal/domain"
	"github.com/tbourn/lamu-leaderboard/internal/repo"
)

// Page size bounds.
const (
	DefaultPageCount = 50
	MaxPageCount     = 200
)

// LeaderboardRepo defines the repository contract required by LeaderboardService.
type LeaderboardRepo interface {
	// Page returns board members from rank offset start, the board size, and
	// the 1-based rank of rankFor when it is non-empty and present.
	Page(ctx context.Context, start, count int, rankFor string) (repo.RankedPage, error)
	// Details resolves display records for members, preserving order.
	Details(ctx context.Context, members []string) ([]domain.Entry, error)
}

// PageQuery selects a leaderboard window.
type PageQuery struct {
	Start   int
	Count   int
	RankFor string
}

// LeaderboardService serves ranked board pages.
type LeaderboardService struct {
	Repo LeaderboardRepo
}

// NewLeaderboardService constructs a LeaderboardService backed by r.
func NewLeaderboardService(r LeaderboardRepo) *LeaderboardService {
	return &LeaderboardService{Repo: r}
}

// ClampQuery bounds start to >= 0 and count to [1, MaxPageCount], and
// canonicalizes RankFor like a submitted username.
func ClampQuery(q PageQuery) PageQuery {
	if q.Start < 0 {
		q.Start = 0
	}
	if q.Count < 1 {
		q.Count = 1
	}
	if q.Count > MaxPageCount {
		q.Count = MaxPageCount
	}
	q.RankFor = domain.NormalizeUsername(q.RankFor)
	return q
}

// Page returns the requested window. Items follow board order exactly; the
// echoed Start and Count are the clamped values actually used.
func (s *LeaderboardService) Page(ctx context.Context, q PageQuery) (domain.Page, error) {
	q = ClampQuery(q)

	tr := otel.Tracer("services/LeaderboardService")
	ctx, span := tr.Start(ctx, "Page",
		trace.WithAttributes(
			attribute.Int("page.start", q.Start),
			attribute.Int("page.count", q.Count),
			attribute.Bool("page.rank_requested", q.RankFor != ""),
		),
	)
	defer span.End()

	if s.Repo == nil {
		return domain.Page{}, ErrStoreUnavailable
	}

	rp, err := s.Repo.Page(ctx, q.Start, q.Count, q.RankFor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page")
		return domain.Page{}, err
	}
	items, err := s.Repo.Details(ctx, rp.Members)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "details")
		return domain.Page{}, err
	}
	if items == nil {
		items = []domain.Entry{}
	}

	span.SetAttributes(attribute.Int64("page.total", rp.Total), attribute.Int("page.items", len(items)))
	return domain.Page{
		Items: items,
		Start: q.Start,
		Count: q.Count,
		Total: rp.Total,
		Rank:  rp.Rank,
	}, nil
}
