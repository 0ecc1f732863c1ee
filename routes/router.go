package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sugarstop/sugarstop/config"
	"github.com/sugarstop/sugarstop/controllers"
	"github.com/sugarstop/sugarstop/middleware"
	"github.com/sugarstop/sugarstop/services"
	"github.com/sugarstop/sugarstop/utils"
)

// Deps carries the wired services the controllers run on. main builds them
// once and hands them over here.
type Deps struct {
	DB         *gorm.DB
	Tracker    *services.Tracker
	Motivation *services.MotivationService
	States     *services.StateService
	Tasks      *services.TaskService
	Recipes    *services.RecipeService
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(d Deps) *gin.Engine {
	// Load config and set Gin mode from configuration
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
	// Replace default console logger with file-based zap logger
	ginLogPath := cfg.GinPath
	// Use application log level as reference
	gl, err := utils.NewRollingFileLogger(ginLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

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

	authController := controllers.NewAuthController(d.DB)
	checkInController := controllers.NewCheckInController(d.Tracker, d.Motivation, d.States)
	challengeController := controllers.NewChallengeController(d.Tracker, d.Tasks)
	recipeController := controllers.NewRecipeController(d.Recipes)
	noteController := controllers.NewNoteController(d.DB)
	stateController := controllers.NewStateController(d.States)
	statsController := controllers.NewStatsController(d.DB)
	configController := controllers.NewConfigController()

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/telegram", authController.TelegramLogin)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public community stats endpoint
	api.GET("/stats/community", statsController.GetCommunityStats)
	// Public product settings
	api.GET("/config/product", configController.GetProduct)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware(), middleware.ActivityRecorder(d.DB))

	protected.POST("/checkins", checkInController.Create)
	protected.POST("/checkins/note", checkInController.AddNote)
	protected.GET("/checkins/history", checkInController.History)
	protected.GET("/stats", checkInController.Stats)
	protected.GET("/motivation", middleware.AIQuotaMiddleware(), checkInController.Motivation)

	protected.POST("/challenges", challengeController.Enroll)
	protected.GET("/challenges/current", challengeController.Status)
	protected.DELETE("/challenges/current", challengeController.Abandon)
	protected.GET("/challenges/task", challengeController.CurrentTask)
	protected.POST("/challenges/task/complete", challengeController.CompleteTask)

	protected.POST("/recipes/generate", middleware.AIQuotaMiddleware(), recipeController.Suggest)
	protected.GET("/recipes/snacks", recipeController.Snacks)
	protected.GET("/recipes", recipeController.History)

	protected.POST("/notes", noteController.Create)
	protected.GET("/notes", noteController.List)

	protected.GET("/state", stateController.Get)
	protected.PUT("/state", stateController.Set)
	protected.DELETE("/state", stateController.Clear)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
