package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/handler"
	"github.com/examsentry/integrity-backend/internal/middleware"
	"github.com/examsentry/integrity-backend/internal/response"
	"github.com/examsentry/integrity-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Access     *handler.AccessHandler
	Session    *handler.SessionHandler
	Monitoring *handler.MonitoringHandler
	ProctorWS  *handler.ProctorWSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokenService *service.TokenService,
	handlers *Handlers,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Client-IP"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.OK(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Ingestion endpoints tolerate bursty clients but not runaway loops.
	ingestLimiter := middleware.NewRateLimiter(120, time.Minute)

	// ─── 1. Exam Client Group (Client Token) ───────────────────────────
	clientAPI := router.Group("/api/v1")
	clientAPI.Use(middleware.RequireClientToken(tokenService))
	{
		clientAPI.GET("/access/:slug", handlers.Access.Validate)
		clientAPI.POST("/access/:slug/start", handlers.Access.StartSession)
		clientAPI.GET("/exams/:exam_id/execution-type", handlers.Access.ExecutionType)

		clientAPI.POST("/exams/:exam_id/session/heartbeat", handlers.Session.Heartbeat)
		clientAPI.POST("/exams/:exam_id/session/release", handlers.Session.Release)

		monitoring := clientAPI.Group("/monitoring")
		monitoring.Use(ingestLimiter.Middleware())
		{
			monitoring.POST("/log-event", handlers.Monitoring.LogEvent)
			monitoring.POST("/strict-mode-violation", handlers.Monitoring.StrictModeViolation)
		}
	}

	// ─── 2. Proctor Group (Proctor Token) ──────────────────────────────
	proctorAPI := router.Group("/api/v1")
	proctorAPI.Use(middleware.RequireProctorToken(tokenService))
	{
		proctorAPI.GET("/monitoring/metrics/:submission_id", handlers.Monitoring.Metrics)
	}

	// ─── 3. WebSocket Group (Proctor Token via ?token=) ────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireProctorToken(tokenService))
	{
		ws.GET("/proctor/submissions/:submission_id/stream", handlers.ProctorWS.SubmissionStream)
	}

	return router
}
