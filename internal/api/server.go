// Package api is the thin HTTP transport: it parses requests, hands them to
// the services and maps outcomes back to status codes. No authorization
// decisions happen here.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colibie/events-app-api/internal/config"
	"github.com/colibie/events-app-api/internal/service"
)

func NewRouter(logger *zap.SugaredLogger, cfg config.Config, userSvc *service.UserService, eventSvc *service.EventService) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	users := &userHandler{svc: userSvc}
	events := &eventHandler{svc: eventSvc}

	authed := router.Group("/", AuthRequired([]byte(cfg.JWTSecret)))
	{
		authed.GET("/users", users.list)
		authed.POST("/users", users.create)
		authed.GET("/users/:id", users.get)
		authed.PUT("/users/:id", users.update)
		authed.DELETE("/users/:id", users.delete)

		authed.GET("/events", events.list)
		authed.POST("/events", events.create)
		authed.GET("/events/lookup", events.lookup)
		authed.GET("/events/:id", events.get)
		authed.PUT("/events/:id", events.update)
		authed.DELETE("/events/:id", events.delete)
	}

	return router
}

// RunServer serves the API until ctx is done, then shuts down gracefully.
func RunServer(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup, cfg config.Config,
	userSvc *service.UserService, eventSvc *service.EventService) {

	router := NewRouter(logger, cfg, userSvc, eventSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	logger.Infow("listening for HTTP requests", "port", cfg.HTTPPort)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("failed to serve", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("failed to shut down http server", "error", err)
		}
	}()
}

func requestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
