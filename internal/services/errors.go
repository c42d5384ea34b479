// Package services defines the business logic for score submission and
// leaderboard reads. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrInvalidPayload is returned when a submission is missing its username
	// or carries non-numeric matched/time values. It is wrapped with detail.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrStoreUnavailable is returned when no ranking store has been wired.
	ErrStoreUnavailable = errors.New("ranking store unavailable")
)
