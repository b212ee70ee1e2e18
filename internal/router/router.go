package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wanderwise/wanderwise-backend/config"
	"github.com/wanderwise/wanderwise-backend/internal/app/controller"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/middleware"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
)

type Router struct {
	authController        *controller.AuthController
	reviewController      *controller.ReviewController
	adminReviewController *controller.AdminReviewController
	adminAuditController  *controller.AdminAuditController
	wsController          *controller.WSController
	authMiddleware        *middleware.AuthMiddleware
	users                 middleware.ActiveUserLookup
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	reviewController *controller.ReviewController,
	adminReviewController *controller.AdminReviewController,
	adminAuditController *controller.AdminAuditController,
	wsController *controller.WSController,
	authMiddleware *middleware.AuthMiddleware,
	users middleware.ActiveUserLookup,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		reviewController:      reviewController,
		adminReviewController: adminReviewController,
		adminAuditController:  adminAuditController,
		wsController:          wsController,
		authMiddleware:        authMiddleware,
		users:                 users,
		config:                cfg,
	}
}

// reviewableRoutes are the nested listing prefixes per reviewable type.
var reviewableRoutes = map[string]model.ReviewableType{
	"/destinations":   model.ReviewableDestination,
	"/activities":     model.ReviewableActivity,
	"/accommodations": model.ReviewableAccommodation,
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	if err := controller.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "WanderWise API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.authMiddleware
	limits := r.config.RateLimit

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authLimit := middleware.RateLimit("auth", limits.AuthLimit, limits.Window)
			authGroup.POST("/register", authLimit, r.authController.Register)
			authGroup.POST("/login", authLimit, r.authController.Login)
			authGroup.POST("/refresh", authLimit, r.authController.Refresh)
			authGroup.POST("/logout", auth.Authenticate(), r.authController.Logout)
			authGroup.GET("/me", auth.Authenticate(), r.authController.GetMe)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("", auth.OptionalAuthenticate(), r.reviewController.List)
			reviews.POST("", auth.Authenticate(), r.reviewController.Create)
			reviews.GET("/mine", auth.Authenticate(), r.reviewController.Mine)
			reviews.PUT("/:id", auth.Authenticate(), r.reviewController.Update)
			reviews.POST("/:id/vote",
				auth.Authenticate(),
				middleware.RateLimit("vote", limits.VoteLimit, limits.Window),
				r.reviewController.Vote,
			)
			reviews.GET("/:id/votes", auth.OptionalAuthenticate(), r.reviewController.Votes)
			reviews.GET("/:id/replies", r.reviewController.Replies)
			reviews.POST("/:id/replies",
				auth.Authenticate(),
				middleware.RateLimit("reply", limits.ReplyLimit, limits.Window),
				r.reviewController.AddReply,
			)
		}

		for prefix, rt := range reviewableRoutes {
			nested := api.Group(prefix + "/:id/reviews")
			nested.GET("", auth.OptionalAuthenticate(), r.reviewController.ListFor(rt))
			nested.POST("", auth.Authenticate(), r.reviewController.CreateFor(rt))
		}

		api.GET("/ws", auth.Authenticate(), r.wsController.Connect)

		admin := api.Group("/admin",
			auth.Authenticate(),
			auth.RequireRole(model.RoleAdmin),
			auth.RequireActiveAdmin(r.users),
		)
		{
			admin.GET("/reviews", r.adminReviewController.List)
			admin.POST("/reviews/bulk", r.adminReviewController.Bulk)
			admin.POST("/reviews/:reviewId/publish", r.adminReviewController.Publish)
			admin.POST("/reviews/:reviewId/reject", r.adminReviewController.Reject)

			admin.GET("/audit-logs", r.adminAuditController.List)
			admin.GET("/audit-logs/export", r.adminAuditController.Export)
			admin.GET("/audit-logs/:id", r.adminAuditController.Get)

			admin.GET("/ws", r.wsController.Connect)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AddAllowHeaders("Authorization", middleware.RequestIDHeader)
	cfg.AddExposeHeaders("Content-Disposition", middleware.RequestIDHeader, "Retry-After", "X-Export-Rows")
	cfg.AllowCredentials = true
	cfg.MaxAge = 12 * time.Hour

	for _, o := range allowedOrigins {
		if o == "*" {
			cfg.AllowCredentials = false
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(cfg)
}
