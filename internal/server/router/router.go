package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/server/handlers"
	"github.com/mamadbah2/shiftdesk/internal/server/middleware"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.ShiftHandler, jwtManager *middleware.JWTManager, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.RequireAuth(jwtManager, logger))
	handler.Register(api)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}
