package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scenart/agency-api/internal/config"
	domainRepo "github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/internal/presentation/http/handler"
	"github.com/scenart/agency-api/internal/presentation/http/middleware"
	"github.com/scenart/agency-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	Batch      *handler.BatchHandler
	Performer  *handler.PerformerHandler
	Receipt    *handler.ReceiptHandler
	Signature  *handler.SignatureHandler
	Remittance *handler.RemittanceHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// Public signature routes, authorized by the bearer token in the URL.
	// Rate limited per client IP since there is no session to key on.
	signLimiter := middleware.NewIPRateLimiter(middleware.DefaultRateLimiterConfig())
	sign := router.Group("/sign")
	sign.Use(signLimiter.Middleware())
	{
		sign.GET("/:token", h.Signature.Review)
		sign.POST("/:token", h.Signature.Sign)
		sign.POST("/:token/attachment", h.Signature.UploadAttachment)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	// Profile
	protected.GET("/profile", h.Auth.Profile)

	// Payment batches. Generation replays safely under an idempotency key.
	batches := protected.Group("/batches")
	{
		batches.POST("", idempotency, h.Batch.Generate)
		batches.GET("", h.Batch.List)
		batches.GET("/:id", h.Batch.Get)
	}

	// Performer directory, read-only. Surfaces who the next run would skip.
	performers := protected.Group("/performers")
	{
		performers.GET("", h.Performer.List)
		performers.GET("/:id", h.Performer.Get)
	}

	// Receipts
	receipts := protected.Group("/receipts")
	{
		receipts.GET("", h.Receipt.List)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.GET("/:id/document", h.Receipt.Document)
		receipts.POST("/:id/remind", h.Receipt.Remind)
		receipts.POST("/:id/cancel", h.Receipt.Cancel)
		receipts.POST("/expire", h.Receipt.Expire)
	}

	// Remittances move money; creating or settling one is admin-only.
	remittances := protected.Group("/remittances")
	{
		remittances.POST("", middleware.RequireRole("admin"), idempotency, h.Remittance.Create)
		remittances.GET("", h.Remittance.List)
		remittances.GET("/:id", h.Remittance.Get)
		remittances.GET("/:id/file", h.Remittance.File)
		remittances.POST("/:id/pay", middleware.RequireRole("admin"), h.Remittance.MarkPaid)
	}
}
