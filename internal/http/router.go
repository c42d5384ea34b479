// Package httpapi wires the HTTP transport (Gin) to the leaderboard services,
// middleware, and route handlers. It owns the middleware order, the
// fallbacks, and the operational endpoints (/health, /metrics, /swagger).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/lamu-leaderboard/internal/config"
	"github.com/tbourn/lamu-leaderboard/internal/docs"
	"github.com/tbourn/lamu-leaderboard/internal/http/handlers"
	"github.com/tbourn/lamu-leaderboard/internal/http/middleware"
	"github.com/tbourn/lamu-leaderboard/internal/repo"
	"github.com/tbourn/lamu-leaderboard/internal/services"
)

const (
	// maxBodyBytes caps request bodies; a submission is a few dozen bytes.
	maxBodyBytes = 64 << 10
	// healthTimeout bounds the store ping behind /health.
	healthTimeout = 2 * time.Second
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey, "X-Request-ID"}
	corsExpose  = []string{"X-Request-ID", "Content-Length", "Retry-After", "Idempotency-Replayed"}
)

// RegisterRoutes attaches middleware and endpoints to r. store may be nil
// (REDIS_URL unset): the server still starts and store-backed requests fail
// with 500.
//
// Middleware order matters:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger
//  4. Recovery
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before the limiter so replays bypass it)
//  8. Rate limiter
//  9. CORS, security and no-cache headers
//  10. Gzip
func RegisterRoutes(r *gin.Engine, store *repo.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
		MaskQuery:   []string{"rankFor"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			rec, err := store.GetIdempotency(ctx, scope, key, now)
			return err == nil && rec != nil, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.Rate.RPS, cfg.Rate.Burst, middleware.KeyByClient())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	// No-cache everywhere, including 404/405 fallbacks.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "Method Not Allowed")
	})

	r.GET("/health", healthHandler(store))

	if cfg.API.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = basePathOrRoot(cfg.API.BasePath)
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(
		services.NewScoreService(store),
		services.NewLeaderboardService(store),
		store,
		cfg.API.IdempotencyTTL,
	)

	api := groupWithPrefix(r, cfg.API.BasePath)
	{
		api.GET("/leaderboard", h.GetLeaderboard)
		api.POST("/submit-score", h.SubmitScore)
	}
}

// healthHandler reports liveness plus store reachability. A missing or
// unreachable store yields 503 so orchestrators can hold traffic back.
func healthHandler(store *repo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health: store ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok"})
	}
}

// corsMiddleware returns the CORS chain. Without an allowlist every origin is
// accepted and ACAO: * is forced even when no Origin header is sent; with one,
// allowed origins are echoed back with Vary: Origin.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	if len(origins) == 0 {
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     corsMethods,
				AllowHeaders:     corsHeaders,
				ExposeHeaders:    corsExpose,
				AllowCredentials: false,
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody caps request bodies at maxBytes; oversized reads fail and the
// submit handler answers 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	return r.Group(basePathOrRoot(prefix))
}

func basePathOrRoot(prefix string) string {
	if prefix == "" || prefix == "/" {
		return "/"
	}
	return prefix
}
