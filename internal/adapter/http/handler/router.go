package handler

import (
	"vendorledger/internal/adapter/http/middleware"
	"vendorledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Ledger         ports.LedgerService
	Sync           ports.SyncService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
	Mode           string // gin mode: debug, release, test
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (verifies the snapshot store and the remote connection)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/v1")

	vendorHandler := NewVendorHandler(deps.Ledger)
	vendors := v1.Group("/vendors")
	{
		vendors.GET("", vendorHandler.List)
		vendors.POST("", vendorHandler.Create)
		vendors.GET("/:id", vendorHandler.Get)
		vendors.PATCH("/:id", vendorHandler.Patch)
		vendors.DELETE("/:id", vendorHandler.Delete)
	}

	walletHandler := NewWalletHandler(deps.Ledger)
	wallets := v1.Group("/wallets")
	{
		wallets.GET("", walletHandler.List)
		wallets.POST("", walletHandler.Create)
		wallets.GET("/:id", walletHandler.Get)
		wallets.PATCH("/:id", walletHandler.Patch)
		wallets.DELETE("/:id", walletHandler.Delete)
	}

	expenseHandler := NewExpenseHandler(deps.Ledger)
	expenses := v1.Group("/expenses")
	{
		expenses.GET("", expenseHandler.List)
		expenses.POST("", expenseHandler.Create)
		expenses.GET("/:id", expenseHandler.Get)
		expenses.PATCH("/:id", expenseHandler.Patch)
		expenses.DELETE("/:id", expenseHandler.Delete)
	}

	paymentHandler := NewPaymentHandler(deps.Ledger)
	payments := v1.Group("/payments")
	{
		payments.GET("", paymentHandler.List)
		payments.POST("", paymentHandler.Create)
		payments.GET("/:id", paymentHandler.Get)
		payments.DELETE("/:id", paymentHandler.Delete)
	}

	depositHandler := NewDepositHandler(deps.Ledger)
	deposits := v1.Group("/deposits")
	{
		deposits.GET("", depositHandler.List)
		deposits.GET("/:id", depositHandler.Get)
		deposits.DELETE("/:id", depositHandler.Delete)
	}

	syncHandler := NewSyncHandler(deps.Sync)
	sync := v1.Group("/sync")
	{
		sync.GET("/status", syncHandler.Status)
		sync.GET("/diff", syncHandler.Diff)
		sync.POST("/settings", syncHandler.UpdateSettings)
		sync.POST("/force", syncHandler.Force)
		sync.POST("/pull", syncHandler.Pull)
	}

	return r
}
