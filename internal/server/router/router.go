package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/server/handlers"
)

// Handlers groups the HTTP adapters. Webhook and Metrics may be nil.
type Handlers struct {
	Inventory *handlers.InventoryHandler
	Auth      *handlers.AuthHandler
	Webhook   *handlers.WebhookHandler
	Metrics   http.Handler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}
	r.POST("/auth/register", h.Auth.Register)

	api := r.Group("/api", h.Auth.RequireBasicAuth())
	{
		inv := h.Inventory
		api.GET("/bins", inv.ListBins)
		api.POST("/bins", inv.CreateBin)
		api.GET("/bins/:id", inv.GetBin)
		api.GET("/bins/:id/items", inv.ListItems)
		api.POST("/bins/:id/items", inv.AddItem)
		api.DELETE("/bins/:id/items/:name", inv.RemoveItem)
		api.POST("/bins/:id/withdraw", inv.Withdraw)
		api.PATCH("/bins/:id/conditions", inv.UpdateConditions)
		api.GET("/bins/:id/safety", inv.BinSafety)
		api.POST("/bins/:id/sweep", inv.Sweep)
		api.GET("/bins/:id/warnings", inv.Warnings)
		api.GET("/safety", inv.AllSafety)
		api.GET("/safety/violations", inv.Violations)
		api.GET("/safety/summary", inv.SafetySummary)
		api.GET("/recommendations/:name", inv.Recommend)
		api.POST("/reports/daily", inv.DailyReport)
		api.GET("/reports/latest", inv.LatestReport)
		if h.Webhook != nil {
			api.POST("/send-message", h.Webhook.SendMessage)
		}
	}

	logger.Info("router initialized")
	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user := c.GetString(handlers.UsernameKey); user != "" {
			fields = append(fields, zap.String("user", user))
		}
		logger.Info("request completed", fields...)
	}
}
