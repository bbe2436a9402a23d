package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/gopherpos/internal/metrics"
	"github.com/polkiloo/gopherpos/internal/server/http/handlers"
	"github.com/polkiloo/gopherpos/internal/server/http/middleware"
)

// Params are the router dependencies resolved by fx.
type Params struct {
	fx.In

	Facade  handlers.POSFacade
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	checkoutHandler := handlers.NewCheckoutHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	engine.GET("/healthz", healthHandler.Ready)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")
	api.POST("/checkout", middleware.Operator(), checkoutHandler.Checkout)
	api.GET("/orders/:number", orderHandler.Get)

	return engine
}
