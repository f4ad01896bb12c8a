package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"highscore-user-service/cmd/api/di"
	"highscore-user-service/internal/adapter/gin/middleware"
	ginrouter "highscore-user-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, addr string) *http.Server {
	router := ginrouter.SetupRouter(c.UserHandler, c.HealthHandler, ginrouter.Options{
		CORS: middleware.CORSConfig{
			AllowedOrigins: c.Config.CORS.AllowedOrigins,
			AllowAll:       c.Config.CORS.AllowAll,
		},
		RateLimiter: c.RateLimiter,
		Logger:      c.Logger,
	})

	c.Logger.Info("Gin REST API configured",
		zap.String("address", addr),
		zap.String("swagger", "http://localhost"+addr+"/swagger/index.html"),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
