package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"newswire/config"
	"newswire/controllers"
	"newswire/middleware"
	"newswire/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userController := controllers.NewUserController(db)
	newsController := controllers.NewNewsController(db)
	commentController := controllers.NewCommentController(db)

	api := r.Group("/api")

	userGroup := api.Group("/user")
	userGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	userGroup.POST("/register", userController.Register)
	userGroup.POST("/token", userController.Token)
	userGroup.POST("/logout", middleware.AuthRequired(), userController.Logout)
	userGroup.GET("/me", middleware.AuthRequired(), userController.Me)
	userGroup.PATCH("/me", middleware.AuthRequired(), userController.UpdateMe)

	newsGroup := api.Group("/news")
	newsGroup.Use(middleware.AuthRequired())
	newsGroup.GET("", newsController.ListNews)
	newsGroup.POST("", newsController.CreateNews)
	newsGroup.GET("/:id", newsController.GetNews)
	newsGroup.PUT("/:id", newsController.UpdateNews)
	newsGroup.PATCH("/:id", newsController.PatchNews)
	newsGroup.DELETE("/:id", newsController.DeleteNews)
	// GET kept for compatibility with existing clients; POST is the
	// preferred verb for the mutation.
	newsGroup.GET("/:id/upvote", newsController.Upvote)
	newsGroup.POST("/:id/upvote", newsController.Upvote)

	newsGroup.GET("/:id/comment", commentController.ListComments)
	newsGroup.POST("/:id/comment", commentController.CreateComment)
	newsGroup.GET("/:id/comment/:commentId", commentController.GetComment)
	newsGroup.PUT("/:id/comment/:commentId", commentController.UpdateComment)
	newsGroup.PATCH("/:id/comment/:commentId", commentController.PatchComment)
	newsGroup.DELETE("/:id/comment/:commentId", commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
