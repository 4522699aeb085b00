package handler

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storyboard-server/internal/middleware"
)

// RouterOptions configures the engine around the Handler.
type RouterOptions struct {
	AllowedOrigins []string
	// UploadDir is served at /uploads when set.
	UploadDir string
	// AuthLimiter guards /auth; see NewAuthRateLimiter.
	AuthLimiter gin.HandlerFunc
	// Metrics registers the gin prometheus middleware and /metrics. It uses
	// the default registry and so may be enabled once per process.
	Metrics bool
}

// NewRouter builds the gin engine with logging, recovery, CORS, health,
// optional metrics and the API routes.
func NewRouter(h *Handler, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = true
	// Image ids are URL-escaped URIs that contain slashes.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(middleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	h.RegisterRoutes(router, opts.AuthLimiter)

	if opts.Metrics {
		p := ginprometheus.NewPrometheus("gin")
		p.Use(router)
	}
	return router
}

// NewAuthRateLimiter limits requests per client IP. A nil redisClient keeps
// counters in memory.
func NewAuthRateLimiter(redisClient *redis.Client, limit uint, window time.Duration) gin.HandlerFunc {
	var store ratelimit.Store
	if redisClient != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: redisClient,
			Rate:        window,
			Limit:       limit,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  window,
			Limit: limit,
		})
	}
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
