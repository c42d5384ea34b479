// Package services – ScoreService
//
// This file implements the ScoreService, which accepts a player's game
// result, normalizes it, and records it on the board only when it beats the
// player's stored best. The compare-and-write step is delegated to the
// repository, which performs it atomically.
package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/lamu-leaderboard/internal/domain"
)

// ScoreRepo defines the repository contract required by ScoreService.
type ScoreRepo interface {
	// SubmitIfBetter atomically writes the board entry and detail record when
	// sc improves on the stored composite key, reporting whether it did.
	SubmitIfBetter(ctx context.Context, sc domain.Score) (bool, error)
}

// ScoreService records game results.
type ScoreService struct {
	// Repo is the ranking store. A nil Repo makes every call fail with
	// ErrStoreUnavailable.
	Repo ScoreRepo
	// Now stamps accepted scores; defaults to time.Now.
	Now func() time.Time
}

// NewScoreService constructs a ScoreService backed by r.
func NewScoreService(r ScoreRepo) *ScoreService {
	return &ScoreService{Repo: r, Now: time.Now}
}

// Submit validates and normalizes sub and records it if it is the player's
// new best. Out-of-range matched/time values are clamped, not rejected.
func (s *ScoreService) Submit(ctx context.Context, sub domain.Submission) (bool, error) {
	tr := otel.Tracer("services/ScoreService")
	ctx, span := tr.Start(ctx, "Submit")
	defer span.End()

	if err := validate(sub); err != nil {
		submissions.WithLabelValues(outcomeInvalid).Inc()
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	if s.Repo == nil {
		submissions.WithLabelValues(outcomeError).Inc()
		return false, ErrStoreUnavailable
	}

	sc := domain.Normalize(sub)
	sc.UpdatedAt = s.now().UnixMilli()
	span.SetAttributes(
		attribute.String("user.name", sc.Username),
		attribute.Int("score.matched", sc.Matched),
		attribute.Int64("score.elapsed_ms", sc.ElapsedMs),
		attribute.Int64("score.composite", sc.Composite),
	)

	updated, err := s.Repo.SubmitIfBetter(ctx, sc)
	if err != nil {
		submissions.WithLabelValues(outcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "store")
		return false, err
	}

	span.AddEvent("submitted", trace.WithAttributes(attribute.Bool("updated", updated)))
	if updated {
		submissions.WithLabelValues(outcomeUpdated).Inc()
	} else {
		submissions.WithLabelValues(outcomeUnchanged).Inc()
	}
	return updated, nil
}

func (s *ScoreService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// validate rejects submissions without a usable username or with
// non-finite numbers.
func validate(sub domain.Submission) error {
	if strings.TrimSpace(sub.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidPayload)
	}
	if domain.NormalizeUsername(sub.Username) == "" {
		return fmt.Errorf("%w: username is empty after normalization", ErrInvalidPayload)
	}
	if !finite(sub.Matched) || !finite(sub.TimeMs) {
		return fmt.Errorf("%w: matched and timeMs must be numbers", ErrInvalidPayload)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
