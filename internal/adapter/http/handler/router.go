package handler

import (
	"crypto-payments/internal/adapter/http/middleware"
	"crypto-payments/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	InvoiceSvc     ports.InvoiceService
	Reconciler     ports.PaymentReconciler
	Wallets        ports.WalletProvisioner
	TransferSvc    ports.TransferService
	RateSvc        ports.RateService
	TokenSvc       ports.TokenService
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	invoiceHandler := NewInvoiceHandler(deps.InvoiceSvc, deps.Reconciler)
	invoices := v1.Group("/invoices", rl("invoices"))
	{
		invoices.POST("/fiat", invoiceHandler.CreateFiat)
		invoices.POST("/crypto", invoiceHandler.CreateCrypto)
		invoices.GET("/:id", invoiceHandler.Check)
		invoices.GET("/:id/status", invoiceHandler.Status)
	}

	walletHandler := NewWalletHandler(deps.Wallets)
	users := v1.Group("/users/:user_id")
	{
		users.GET("/invoices", rl("invoices"), invoiceHandler.ListByUser)
		users.PUT("/wallets/:network", rl("wallets"), walletHandler.GetOrCreate)
	}

	transferHandler := NewTransferHandler(deps.TransferSvc)
	v1.POST("/transfers", rl("transfers"), transferHandler.Transfer)

	rateHandler := NewRateHandler(deps.RateSvc)
	rates := v1.Group("/rates", rl("rates"))
	{
		rates.GET("/:fiat/:crypto", rateHandler.Get)
		rates.PUT("", rateHandler.Upsert)
	}

	return r
}
