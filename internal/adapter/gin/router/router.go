package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"highscore-user-service/api/swagger"
	"highscore-user-service/internal/adapter/gin/handler"
	"highscore-user-service/internal/adapter/gin/middleware"
	"highscore-user-service/pkg/logger"
)

// SpecPath is where the OpenAPI document is served.
const SpecPath = "/docs/user.swagger.json"

// Options carries everything the router needs besides the handlers.
type Options struct {
	CORS        middleware.CORSConfig
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	Logger      *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, healthHandler *handler.HealthHandler, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Logger(opts.Logger))
	router.Use(middleware.Recovery(opts.Logger))
	router.Use(middleware.CORS(opts.CORS))

	router.GET("/health", healthHandler.Health)

	router.GET(SpecPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", swagger.UserSpec)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(SpecPath))))

	api := router.Group("")
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware())
	}
	{
		api.POST("/register", userHandler.Register)
		api.POST("/login", userHandler.Login)
		api.PUT("/update-score/:user_id", userHandler.UpdateScore)
		api.DELETE("/delete-user/:user_id", userHandler.DeleteUser)
		api.GET("/users/:user_id", userHandler.GetUser)
	}

	return router
}
