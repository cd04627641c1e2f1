package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"goblog/auth"
	"goblog/config"
	"goblog/controllers"
	"goblog/database"
	"goblog/media"
	"goblog/repositories"
	"goblog/services"
)

// RequestLogger logs every request after it completes.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		startTime := time.Now()

		ctx.Next()

		latency := time.Since(startTime)
		logger.Info("Request",
			zap.String("client_ip", ctx.ClientIP()),
			zap.String("method", ctx.Request.Method),
			zap.Int("status_code", ctx.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("errors", ctx.Errors.ByType(gin.ErrorTypePrivate).String()),
		)
	}
}

func main() {
	config.InitConfig()

	var logger *zap.Logger
	switch config.AppConfig.LogLevel {
	case "debug":
		logger, _ = zap.NewDevelopment()
	default:
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	db := database.InitDB()

	userRepo := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)

	accountService := services.NewAccountService(userRepo)
	postService := services.NewPostService(postRepo)

	sessions := auth.NewSessionManager(
		[]byte(config.AppConfig.SessionSecret),
		[]byte(config.AppConfig.RememberSecret),
		accountService,
	)
	pictures := media.NewPictureStore(config.AppConfig.PicturesDir)

	userController := controllers.NewUserController(accountService, sessions, pictures, logger)
	postController := controllers.NewPostController(postService, accountService, sessions, logger)

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(sessions.CurrentUser())

	r.LoadHTMLGlob(config.AppConfig.TemplatesGlob)
	r.Static("/static/pictures", config.AppConfig.PicturesDir)

	// --- Public routes ---
	r.GET("/", postController.Home)
	r.GET("/register", userController.Register)
	r.POST("/register", userController.Register)
	r.GET("/login", userController.Login)
	r.POST("/login", userController.Login)
	r.GET("/logout", userController.Logout)
	r.GET("/posts/:username", postController.UserPosts)

	// --- Routes requiring authentication ---
	authed := r.Group("/", sessions.RequireLogin())
	{
		authed.GET("/account", userController.Account)
		authed.POST("/account", userController.Account)
		authed.GET("/change-password", userController.ChangePassword)
		authed.POST("/change-password", userController.ChangePassword)
		authed.GET("/create-post", postController.CreatePost)
		authed.POST("/create-post", postController.CreatePost)
		// GET /post/:id, GET,POST /post/update/:id, GET,POST /post/delete/:id
		authed.Any("/post/*path", postController.Dispatch)
	}

	addr := fmt.Sprintf(":%d", config.AppConfig.HTTPPort)
	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
