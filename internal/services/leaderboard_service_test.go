package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/lamu-leaderboard/internal/domain"
	"github.com/tbourn/lamu-leaderboard/internal/repo"
)

type fakeBoardRepo struct {
	start, count int
	rankFor      string
	page         repo.RankedPage
	pageErr      error

	members    []string
	details    []domain.Entry
	detailsErr error
}

func (r *fakeBoardRepo) Page(ctx context.Context, start, count int, rankFor string) (repo.RankedPage, error) {
	r.start, r.count, r.rankFor = start, count, rankFor
	return r.page, r.pageErr
}

func (r *fakeBoardRepo) Details(ctx context.Context, members []string) ([]domain.Entry, error) {
	r.members = members
	return r.details, r.detailsErr
}

func TestClampQuery(t *testing.T) {
	cases := []struct {
		in, want PageQuery
	}{
		{PageQuery{Start: -3, Count: 0}, PageQuery{Start: 0, Count: 1}},
		{PageQuery{Start: 10, Count: 500}, PageQuery{Start: 10, Count: MaxPageCount}},
		{PageQuery{Start: 0, Count: 50, RankFor: "@Bob "}, PageQuery{Start: 0, Count: 50, RankFor: "bob"}},
		{PageQuery{Start: 0, Count: 200, RankFor: "@"}, PageQuery{Start: 0, Count: 200, RankFor: ""}},
	}
	for _, tc := range cases {
		if got := ClampQuery(tc.in); got != tc.want {
			t.Fatalf("ClampQuery(%+v) = %+v; want %+v", tc.in, got, tc.want)
		}
	}
}

func TestPage_PassesClampedQuery_AndAssembles(t *testing.T) {
	rank := int64(3)
	r := &fakeBoardRepo{
		page:    repo.RankedPage{Members: []string{"a", "b"}, Total: 9, Rank: &rank},
		details: []domain.Entry{{Username: "a", Score: 8}, {Username: "b", Score: 7}},
	}
	svc := NewLeaderboardService(r)

	p, err := svc.Page(context.Background(), PageQuery{Start: -1, Count: 999, RankFor: "@C"})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if r.start != 0 || r.count != MaxPageCount || r.rankFor != "c" {
		t.Fatalf("repo args: start=%d count=%d rankFor=%q", r.start, r.count, r.rankFor)
	}
	if len(r.members) != 2 || r.members[0] != "a" {
		t.Fatalf("details called with %v", r.members)
	}
	if p.Start != 0 || p.Count != MaxPageCount || p.Total != 9 || p.Rank == nil || *p.Rank != 3 || len(p.Items) != 2 {
		t.Fatalf("unexpected page: %+v", p)
	}
}

func TestPage_EmptyItemsNeverNil(t *testing.T) {
	svc := NewLeaderboardService(&fakeBoardRepo{})
	p, err := svc.Page(context.Background(), PageQuery{Count: 10})
	if err != nil {
		t.Fatal(err)
	}
	if p.Items == nil || p.Rank != nil {
		t.Fatalf("expected empty non-nil items and nil rank: %+v", p)
	}
}

func TestPage_Errors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := NewLeaderboardService(&fakeBoardRepo{pageErr: boom}).Page(context.Background(), PageQuery{Count: 1}); !errors.Is(err, boom) {
		t.Fatalf("page error not propagated: %v", err)
	}
	if _, err := NewLeaderboardService(&fakeBoardRepo{detailsErr: boom}).Page(context.Background(), PageQuery{Count: 1}); !errors.Is(err, boom) {
		t.Fatalf("details error not propagated: %v", err)
	}
	if _, err := (&LeaderboardService{}).Page(context.Background(), PageQuery{Count: 1}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("nil repo: %v", err)
	}
}

func TestPage_StoreBacked_RankAfterSubmit(t *testing.T) {
	store := newStore(t)
	scores := NewScoreService(store)
	board := NewLeaderboardService(store)
	ctx := context.Background()

	p, err := board.Page(ctx, PageQuery{Count: 50, RankFor: "bob"})
	if err != nil || p.Rank != nil || p.Total != 0 {
		t.Fatalf("before submit: %+v %v", p, err)
	}

	if _, err := scores.Submit(ctx, domain.Submission{Username: "bob", Matched: 5, TimeMs: 12000}); err != nil {
		t.Fatal(err)
	}
	if _, err := scores.Submit(ctx, domain.Submission{Username: "carol", Matched: 4, TimeMs: 100}); err != nil {
		t.Fatal(err)
	}

	p, err = board.Page(ctx, PageQuery{Count: 50, RankFor: "@Bob"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Rank == nil || *p.Rank != 1 || p.Total != 2 {
		t.Fatalf("after submit: %+v", p)
	}
	if p.Items[0].Username != "bob" || p.Items[0].Score != 5 || p.Items[0].ElapsedMs != 12000 || p.Items[1].Username != "carol" {
		t.Fatalf("items: %+v", p.Items)
	}
}
