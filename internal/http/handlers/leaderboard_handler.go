// Leaderboard HTTP handlers.
//
// This file declares the service contracts consumed by the HTTP layer, the
// Handlers wiring, and the read endpoint:
//   - GET /leaderboard   (ranked page, optional rank lookup)
//
// Leaderboard responses are never cacheable; the no-cache header set is
// written before any other work so error responses carry it too.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lamu-leaderboard/internal/domain"
	"github.com/tbourn/lamu-leaderboard/internal/http/middleware"
	"github.com/tbourn/lamu-leaderboard/internal/repo"
	"github.com/tbourn/lamu-leaderboard/internal/services"
	"github.com/tbourn/lamu-leaderboard/internal/utils"
)

//
// Service contracts (context-aware)
//

// ScoreService records game results.
//
// Implementations must be safe for concurrent use and honor ctx.
type ScoreService interface {
	// Submit records sub if it beats the player's best and reports whether it did.
	Submit(ctx context.Context, sub domain.Submission) (bool, error)
}

// LeaderboardService serves ranked pages.
//
// Implementations must be safe for concurrent use and honor ctx.
type LeaderboardService interface {
	// Page returns the clamped window described by q.
	Page(ctx context.Context, q services.PageQuery) (domain.Page, error)
}

// IdempotencyStore persists submission outcomes for safe client retries.
type IdempotencyStore interface {
	GetIdempotency(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, scope, key string, updated bool, status int, ttl time.Duration) (*domain.Idempotency, error)
}

//
// Handler wiring
//

// Handlers groups the leaderboard endpoints.
type Handlers struct {
	scores  ScoreService
	board   LeaderboardService
	idem    IdempotencyStore
	idemTTL time.Duration
}

// New constructs Handlers. idem may be nil, which disables replay; a
// non-positive idemTTL defaults to 24h.
func New(scores ScoreService, board LeaderboardService, idem IdempotencyStore, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{scores: scores, board: board, idem: idem, idemTTL: idemTTL}
}

// pageQuery reads start/count/rankFor. Values without a leading integer fall
// back to the defaults; the service clamps the rest.
func pageQuery(c *gin.Context) services.PageQuery {
	return services.PageQuery{
		Start:   utils.IntPrefixDefault(c.Query("start"), 0),
		Count:   utils.IntPrefixDefault(c.Query("count"), services.DefaultPageCount),
		RankFor: c.Query("rankFor"),
	}
}

// storeFailure maps a store-side error to the 500 envelope. Missing
// configuration is reported with its own code so operators can tell it apart
// from an outage.
func storeFailure(c *gin.Context, fallbackCode string, err error) {
	code := fallbackCode
	if errors.Is(err, repo.ErrNotConfigured) || errors.Is(err, services.ErrStoreUnavailable) {
		code = ErrCodeStoreUnavailable
	}
	fail(c, http.StatusInternalServerError, code, err.Error())
}

// GetLeaderboard godoc
// @ID          getLeaderboard
// @Summary     Read the leaderboard
// @Description Returns a window of the board ordered best first (more pairs matched, then less time).
// @Description When rankFor is given, also returns that player's 1-based rank (null when absent).
// @Tags        Leaderboard
// @Produce     json
//
// @Param       start    query  int     false  "Zero-based rank offset"   minimum(0) default(0)
// @Param       count    query  int     false  "Page size"                minimum(1) maximum(200) default(50)
// @Param       rankFor  query  string  false  "Username to rank"         example(@Alice)
//
// @Success     200  {object}  domain.Page
// @Failure     405  {object}  handlers.ErrorResponse  "Method not allowed"
// @Failure     500  {object}  handlers.ErrorResponse  "Store failure"
// @Header      200  {string}  Cache-Control  "no-store, no-cache, must-revalidate, max-age=0"
// @Router      /leaderboard [get]
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	middleware.SetNoStore(c.Writer.Header())

	page, err := h.board.Page(c.Request.Context(), pageQuery(c))
	if err != nil {
		storeFailure(c, ErrCodeLeaderboardFailed, err)
		return
	}
	ok(c, http.StatusOK, page)
}
