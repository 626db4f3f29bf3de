// Package router wires the gin engine, the middleware stack and the route table.
package router

import (
	"github.com/erp/branchcore/internal/infrastructure/auth"
	"github.com/erp/branchcore/internal/interfaces/http/handler"
	"github.com/erp/branchcore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Handlers bundles the route handlers the router registers
type Handlers struct {
	System   *handler.SystemHandler
	Branch   *handler.BranchHandler
	Ledger   *handler.LedgerHandler
	Contract *handler.ContractHandler
	Order    *handler.OrderHandler
	Stats    *handler.StatsHandler
}

// Config holds router dependencies
type Config struct {
	ServiceName string
	JWTService  *auth.JWTService
	Logger      *zap.Logger
	Handlers    Handlers
}

// New builds the gin engine with the full middleware stack and route table
func New(cfg Config) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.Recovery())
	engine.Use(otelgin.Middleware(cfg.ServiceName))
	engine.Use(middleware.RequestID(cfg.Logger))
	engine.Use(middleware.RequestLogger())

	// Probes stay outside authentication
	engine.GET("/health", cfg.Handlers.System.Health)
	engine.GET("/ready", cfg.Handlers.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: cfg.JWTService,
		Logger:     cfg.Logger,
	}))

	branches := api.Group("/branches")
	{
		branches.POST("", cfg.Handlers.Branch.Create)
		branches.GET("", cfg.Handlers.Branch.List)
		branches.GET("/:id", cfg.Handlers.Branch.Get)
		branches.PUT("/:id", cfg.Handlers.Branch.Update)
		branches.DELETE("/:id", cfg.Handlers.Branch.Delete)
	}

	movements := api.Group("/movements")
	{
		movements.POST("", cfg.Handlers.Ledger.Record)
		movements.GET("", cfg.Handlers.Ledger.List)
		movements.GET("/balance", cfg.Handlers.Ledger.Balance)
		movements.GET("/:id", cfg.Handlers.Ledger.Get)
		movements.POST("/:id/reverse", cfg.Handlers.Ledger.Reverse)
	}

	contracts := api.Group("/contracts")
	{
		contracts.POST("", cfg.Handlers.Contract.Create)
		contracts.GET("", cfg.Handlers.Contract.List)
		contracts.GET("/:id", cfg.Handlers.Contract.Get)
		contracts.POST("/:id/transition", cfg.Handlers.Contract.Transition)
		contracts.GET("/:id/transitions", cfg.Handlers.Contract.Transitions)
		contracts.GET("/:id/history", cfg.Handlers.Contract.History)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", cfg.Handlers.Order.Create)
		orders.GET("", cfg.Handlers.Order.List)
		orders.GET("/:id", cfg.Handlers.Order.Get)
		orders.POST("/:id/items", cfg.Handlers.Order.AddItem)
		orders.POST("/:id/discount", cfg.Handlers.Order.ApplyDiscount)
		orders.POST("/:id/transition", cfg.Handlers.Order.Transition)
		orders.GET("/:id/history", cfg.Handlers.Order.History)
	}

	stats := api.Group("/stats")
	{
		stats.GET("/contracts", cfg.Handlers.Stats.Contracts)
		stats.GET("/orders", cfg.Handlers.Stats.Orders)
		stats.GET("/movements", cfg.Handlers.Stats.Movements)
	}

	return engine
}
