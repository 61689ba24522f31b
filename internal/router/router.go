package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/handler"
	"github.com/stemsi/paxcalc-backend/internal/middleware"
	"github.com/stemsi/paxcalc-backend/internal/response"
	"github.com/stemsi/paxcalc-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Pax        *handler.PaxHandler
	Calculator *handler.CalculatorHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

const (
	// indexCacheSeconds is how long clients may cache index documents.
	indexCacheSeconds = 300
	// calculateBodyLimit caps calculator payloads, which are a handful of
	// short fields.
	calculateBodyLimit = 16 << 10
)

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID, middleware.HeaderClientID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, middleware.HeaderClientID, "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())

	// Spreadsheets are already zip-compressed; event streams must not be buffered.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Skipper: func(c *gin.Context) bool {
			path := c.FullPath()
			return strings.HasSuffix(path, "/export") || strings.HasSuffix(path, "/system/metrics")
		},
	}))

	router.GET("/health", middleware.NoStore(), handlers.System.Health)

	// ─── 1. Index Catalog (Public) ─────────────────────────────────────
	indices := router.Group("/api/v1/indices")
	{
		indices.GET("", handlers.Pax.ListIndices)
		indices.POST("/validate", handlers.Pax.ValidateIndex)

		index := indices.Group("/:year/:type", middleware.CacheControl(indexCacheSeconds))
		index.GET("", handlers.Pax.GetIndex)
		index.GET("/classes", handlers.Pax.ListClasses)
		index.GET("/export", handlers.Pax.ExportConversion)
	}

	// ─── 2. Calculator (Client ID) ─────────────────────────────────────
	calculate := router.Group("/api/v1/calculate")
	calculate.Use(middleware.BodyLimit(calculateBodyLimit), middleware.ClientID(), middleware.NoStore())
	{
		calculate.POST("", handlers.Calculator.Calculate)
		calculate.GET("/last", handlers.Calculator.LastUsed)
	}

	// ─── 3. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", loginLimiter.Middleware(), handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/indices", handlers.Pax.ImportIndex)
		adminAPI.DELETE("/indices/:year/:type", handlers.Pax.DeleteIndex)
		adminAPI.GET("/calculations", handlers.Calculator.RecentCalculations)
		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	// ─── 5. WebSocket Group (Client ID) ────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.ClientID())
	{
		ws.GET("/calculate", handlers.WS.CalculateStream)
	}

	return router
}
