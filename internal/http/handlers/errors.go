// Package handlers defines the error codes returned in ErrorResponse.Code.
//
// Codes are lowercase snake_case. Clients branch on the code; the message is
// for humans.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeInvalidPayload    = "invalid_payload"
	ErrCodeStoreUnavailable  = "store_unavailable"
	ErrCodeSubmitFailed      = "submit_failed"
	ErrCodeLeaderboardFailed = "leaderboard_failed"
)

// msgInvalidPayload is the message sent for every rejected submission body.
const msgInvalidPayload = "Invalid payload"
