// Score submission HTTP handler.
//
//   - POST /submit-score   (record a game result if it is the player's best)
//
// Idempotency:
// When the client sends an Idempotency-Key and a recorded outcome exists for
// (client scope, key), that outcome is returned with
// `Idempotency-Replayed: true` and the store is not touched.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lamu-leaderboard/internal/domain"
	"github.com/tbourn/lamu-leaderboard/internal/http/middleware"
	"github.com/tbourn/lamu-leaderboard/internal/repo"
	"github.com/tbourn/lamu-leaderboard/internal/services"
)

//
// DTOs
//

// SubmitScoreRequest is the JSON payload of a finished game. All three
// fields are required; matched and timeMs must be JSON numbers.
type SubmitScoreRequest struct {
	Username *string  `json:"username" example:"@Alice"`
	Matched  *float64 `json:"matched" example:"5"`
	TimeMs   *float64 `json:"timeMs" example:"12000"`
}

// SubmitScoreResponse reports whether the board changed.
type SubmitScoreResponse struct {
	Updated bool `json:"updated" example:"true"`
}

func (r SubmitScoreRequest) submission() (domain.Submission, bool) {
	if r.Username == nil || r.Matched == nil || r.TimeMs == nil {
		return domain.Submission{}, false
	}
	return domain.Submission{Username: *r.Username, Matched: *r.Matched, TimeMs: *r.TimeMs}, true
}

// SubmitScore godoc
// @ID          submitScore
// @Summary     Submit a game result
// @Description Normalizes the username, clamps matched to 0..8 and timeMs to 0..3600000,
// @Description and records the result only if it beats the player's stored best.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Leaderboard
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                        false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.SubmitScoreRequest  true   "Game result"
//
// @Success     200  {object}  handlers.SubmitScoreResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     405  {object}  handlers.ErrorResponse  "Method not allowed"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Store failure"
// @Router      /submit-score [post]
func (h *Handlers) SubmitScore(c *gin.Context) {
	ctx := c.Request.Context()

	var req SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidPayload, msgInvalidPayload)
		return
	}
	sub, complete := req.submission()
	if !complete {
		fail(c, http.StatusBadRequest, ErrCodeInvalidPayload, msgInvalidPayload)
		return
	}

	scope := middleware.ClientScope(c)
	idemKey, _ := middleware.GetIdempotencyKey(c)

	// Replay path.
	if idemKey != "" && h.idem != nil {
		if rec, err := h.idem.GetIdempotency(ctx, scope, idemKey, time.Now().UTC()); err == nil && rec != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, SubmitScoreResponse{Updated: rec.Updated})
			return
		}
	}

	updated, err := h.scores.Submit(ctx, sub)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPayload) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidPayload, msgInvalidPayload)
			return
		}
		storeFailure(c, ErrCodeSubmitFailed, err)
		return
	}

	// Store path, best effort.
	if idemKey != "" && h.idem != nil {
		if _, err := h.idem.CreateIdempotency(ctx, scope, idemKey, updated, http.StatusOK, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusOK, SubmitScoreResponse{Updated: updated})
}
