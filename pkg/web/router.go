package web

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/internal/config"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/web/views/health"
	"github.com/nexussign/supply/pkg/web/views/hold"
	"github.com/nexussign/supply/pkg/web/views/purchase"
	"github.com/nexussign/supply/pkg/web/views/receipt"
	"github.com/nexussign/supply/pkg/web/views/requirement"
	"github.com/nexussign/supply/pkg/web/views/ws"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter installs the API on g. The returned func drains background work and must run
// after the http server stops.
func NewRouter(ctx context.Context, g *gin.Engine) context.CancelFunc {
	installMiddleware(g)
	return installURL(ctx, g)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	g.Use(cors.Default())
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
}

func installURL(ctx context.Context, g *gin.Engine) context.CancelFunc {
	api := g.Group("/api")
	v1 := api.Group("/v1")

	{
		h := requirement.NewHandle()
		r := v1.Group("/requirements")
		r.GET("", h.List)
		r.POST("", h.Create)
		r.GET("/:id", h.Get)
		r.PATCH("/:id", h.Update)
	}

	{
		h := hold.NewHandle()
		r := v1.Group("/holds")
		r.POST("", h.Place)
		r.PUT("", h.Edit)
		r.GET("/:requirement_id", h.Current)
		r.DELETE("/:requirement_id", h.Release)
		r.GET("/:requirement_id/candidates", h.Candidates)
		v1.POST("/stock/check", h.CheckStock)
	}

	{
		h := receipt.NewHandle()
		r := v1.Group("/receipts")
		r.GET("/other-holds", h.OtherHolds)
		r.POST("/receive", h.Receive)
	}

	purchaseHandle := purchase.NewHandle()
	{
		r := v1.Group("/purchase")
		r.GET("/drafts", purchaseHandle.Drafts)
		r.GET("/unassigned", purchaseHandle.Unassigned)
		r.POST("/submit", purchaseHandle.Submit)
	}

	{
		h := health.NewHandle(health.Postgres(), health.Redis(),
			health.Check{Name: "email_dispatch", Run: purchaseHandle.Ready})
		api.GET("/health", h.Health)
		api.GET("/health/live", h.Live)
		api.GET("/health/ready", h.Ready)
	}

	wsHandle := ws.NewHandle(ctx)
	v1.GET("/ws/requirements", wsHandle.Requirements)

	return func() {
		if err := wsHandle.Close(ctx); err != nil {
			logger.Errorf(ctx, "close requirement ws err: %+v", err)
		}
		if err := purchaseHandle.Close(ctx); err != nil {
			logger.Errorf(ctx, "close purchase dispatch err: %+v", err)
		}
	}
}
